// Package converter implements the batch Markdown-to-HTML conversion of a
// manuscript directory into a book directory.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/layout"
	"github.com/starford/quire/internal/manuscript"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/storage"
)

// PageFunc is called after each output file is written.
type PageFunc func(models.Page) error

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithPageFunc registers a hook run after every written page. A hook error
// aborts the run like a write failure would.
func WithPageFunc(fn PageFunc) Option {
	return func(c *Converter) {
		c.onPage = fn
	}
}

// Converter renders every file of src into dst. A nil template writes the
// rendered HTML as-is.
type Converter struct {
	src      storage.Provider
	dst      storage.Provider
	renderer render.Renderer
	tpl      *layout.Template
	logger   *slog.Logger
	onPage   PageFunc
}

// Result summarizes a completed run.
type Result struct {
	Pages   []models.Page
	Skipped []string // directories
}

// New creates a Converter.
func New(src, dst storage.Provider, r render.Renderer, tpl *layout.Template, opts ...Option) *Converter {
	c := &Converter{
		src:      src,
		dst:      dst,
		renderer: r,
		tpl:      tpl,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Templated reports whether output is wrapped in a template.
func (c *Converter) Templated() bool {
	return c.tpl != nil
}

// Run converts every file entry of the source directory. It stops at the
// first failure; pages written before it stay on disk.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	entries, err := c.src.List()
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}

	res := &Result{}
	for _, e := range entries {
		if !e.IsFile() {
			res.Skipped = append(res.Skipped, e.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("converter: %w", err)
		}

		page, err := c.convert(e.Name)
		if err != nil {
			return res, fmt.Errorf("converter: %s: %w", e.Name, err)
		}
		res.Pages = append(res.Pages, page)

		c.logger.Debug("converter: wrote page",
			slog.String("source", page.Source),
			slog.String("output", page.Output),
			slog.String("checksum", checksum.Short(page.Checksum)))

		if c.onPage != nil {
			if err := c.onPage(page); err != nil {
				return res, fmt.Errorf("converter: %s: page hook: %w", e.Name, err)
			}
		}
	}
	return res, nil
}

func (c *Converter) convert(name string) (models.Page, error) {
	content, err := c.src.Read(name)
	if err != nil {
		return models.Page{}, err
	}

	out := OutputName(name)
	html, err := c.renderer.Render(content)
	if err != nil {
		return models.Page{}, err
	}
	if c.tpl != nil {
		html = c.tpl.Apply(html)
	}
	if err := c.dst.Write(out, html); err != nil {
		return models.Page{}, err
	}

	return models.Page{
		Source:   name,
		Output:   out,
		Title:    manuscript.Title(content),
		Checksum: checksum.Sum(html),
		Bytes:    len(html),
	}, nil
}

// OutputName replaces everything after the last "." in name with "html".
// A name without a dot gets ".html" appended.
func OutputName(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name + ".html"
	}
	return name[:i+1] + "html"
}
