package injector

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/cinject/cli/internal/discovery"
)

// SnippetData is what a snippet template can reference
type SnippetData struct {
	Name   string
	File   string
	Base   string
	Kind   string
	Line   uint
	Column uint
	Offset uint
}

// Snippet is the text inserted into every definition body. It is a
// text/template, so "{{.Name}}" expands to the function name.
type Snippet struct {
	source string
	tmpl   *template.Template
}

// NewSnippet parses source. delims optionally overrides the template
// delimiters as a [left, right] pair, useful when the snippet itself
// contains "{{".
func NewSnippet(source string, delims ...string) (*Snippet, error) {
	tmpl := template.New("snippet").Option("missingkey=error")
	switch len(delims) {
	case 0:
	case 2:
		tmpl = tmpl.Delims(delims[0], delims[1])
	default:
		return nil, fmt.Errorf("snippet delimiters must be a pair, got %d values", len(delims))
	}

	parsed, err := tmpl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snippet: %w", err)
	}
	return &Snippet{source: source, tmpl: parsed}, nil
}

// Source returns the unrendered snippet
func (s *Snippet) Source() string { return s.source }

// Render expands the snippet for one definition site
func (s *Snippet) Render(site discovery.DefinitionSite) (string, error) {
	data := SnippetData{
		Name:   site.Name,
		File:   site.File,
		Base:   filepath.Base(site.File),
		Kind:   string(site.Kind),
		Line:   site.Line,
		Column: site.Column,
		Offset: site.Offset,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("snippet template execution failed: %w", err)
	}
	return buf.String(), nil
}
