package discovery

import (
	"errors"
	"fmt"

	"github.com/cinject/cli/internal/ast"
)

// ErrUnorderedSites is returned when the sites of a file are not in strictly
// increasing offset order
var ErrUnorderedSites = errors.New("definition sites are not in increasing offset order")

// DefinitionSite is the location of one function or method definition
type DefinitionSite struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Line   uint     `json:"line"`
	Column uint     `json:"column"`
	Offset uint     `json:"offset"`
	Kind   ast.Kind `json:"kind"`
}

// String formats the site the way the report prints it
func (s DefinitionSite) String() string {
	return fmt.Sprintf("%s @ %s:%d:%d:%d", s.Name, s.File, s.Line, s.Column, s.Offset)
}

// SourceFileGroup holds the sites of one file in discovery order
type SourceFileGroup struct {
	Path  string           `json:"path"`
	Sites []DefinitionSite `json:"sites"`
}

// Validate checks that every site belongs to the group and that offsets
// strictly increase
func (g SourceFileGroup) Validate() error {
	for i, s := range g.Sites {
		if s.File != g.Path {
			return fmt.Errorf("site %s does not belong to %s", s, g.Path)
		}
		if i > 0 && s.Offset <= g.Sites[i-1].Offset {
			return fmt.Errorf("%w: %s after %s", ErrUnorderedSites, s, g.Sites[i-1])
		}
	}
	return nil
}

// MissingLocationError reports a definition whose position the parser could
// not resolve
type MissingLocationError struct {
	Name string
	Kind ast.Kind
}

func (e *MissingLocationError) Error() string {
	return fmt.Sprintf("definition %q (%s) has no source location", e.Name, e.Kind)
}
