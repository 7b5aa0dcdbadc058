// Package layout wraps rendered pages in an HTML shell at a placeholder token.
package layout

import (
	"bytes"
	"fmt"
	"os"
)

// DefaultPlaceholder marks where rendered content goes.
const DefaultPlaceholder = "###CONTENT###"

// Template is an HTML shell loaded once per run. It is immutable and passed
// by value to whatever needs it.
type Template struct {
	text        []byte
	placeholder []byte
}

// New wraps text as a template. An empty placeholder selects DefaultPlaceholder.
func New(text, placeholder string) *Template {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Template{text: []byte(text), placeholder: []byte(placeholder)}
}

// Load reads the template file at path.
func Load(path, placeholder string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: read template %s: %w", path, err)
	}
	return New(string(data), placeholder), nil
}

// Placeholder returns the substitution token.
func (t *Template) Placeholder() string {
	return string(t.placeholder)
}

// Occurrences counts the placeholder tokens in the template.
func (t *Template) Occurrences() int {
	return bytes.Count(t.text, t.placeholder)
}

// HasPlaceholder reports whether Apply will insert anything.
func (t *Template) HasPlaceholder() bool {
	return t.Occurrences() > 0
}

// Apply replaces every placeholder occurrence with content. Without a
// placeholder the template text is returned unchanged.
func (t *Template) Apply(content []byte) []byte {
	return bytes.ReplaceAll(t.text, t.placeholder, content)
}
