// Package render converts Markdown to HTML with goldmark.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns Markdown source into an HTML fragment.
type Renderer interface {
	Render(markdown []byte) ([]byte, error)
}

// Options selects the goldmark configuration.
type Options struct {
	// Extended enables tables, strikethrough, footnotes, definition lists,
	// autolinks, task lists and {#id .class} attribute blocks on top of
	// CommonMark.
	Extended bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// Safe suppresses raw HTML in the source.
	Safe bool
}

// Goldmark implements Renderer. The engine is built once and is safe for
// concurrent use.
type Goldmark struct {
	opts   Options
	engine goldmark.Markdown
}

var _ Renderer = (*Goldmark)(nil)

// NewGoldmark builds a renderer for opts.
func NewGoldmark(opts Options) *Goldmark {
	return &Goldmark{opts: opts, engine: newEngine(opts)}
}

// Options returns the configuration the renderer was built with.
func (g *Goldmark) Options() Options {
	return g.opts
}

// Render converts markdown to HTML.
func (g *Goldmark) Render(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("render: convert: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderString renders markdownText with default options, extended or not.
func RenderString(markdownText string, extended bool) (string, error) {
	out, err := NewGoldmark(Options{Extended: extended}).Render([]byte(markdownText))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func newEngine(opts Options) goldmark.Markdown {
	var parserOptions []parser.Option
	var rendererOptions []renderer.Option
	var exts []goldmark.Extender

	if opts.Extended {
		exts = append(exts,
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		)
		parserOptions = append(parserOptions, parser.WithAttribute())
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}
