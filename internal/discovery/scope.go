package discovery

import (
	"path/filepath"
	"sort"

	"github.com/cinject/cli/internal/ast"
)

// TargetSet is the set of files being instrumented, keyed by absolute path
type TargetSet map[string]struct{}

// NewTargetSet normalizes paths to absolute, cleaned form
func NewTargetSet(paths ...string) TargetSet {
	set := make(TargetSet, len(paths))
	for _, p := range paths {
		set[NormalizePath(p)] = struct{}{}
	}
	return set
}

// Contains reports whether path is one of the targets
func (s TargetSet) Contains(path string) bool {
	_, ok := s[NormalizePath(path)]
	return ok
}

// Paths returns the targets in lexical order
func (s TargetSet) Paths() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NormalizePath returns the absolute, cleaned form of path. If the absolute
// path cannot be determined the cleaned path is returned.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// InScope reports whether e belongs to the instrumented files. With
// followIncludes every entity is in scope. Otherwise the declaring file, taken
// from the location before macro expansion, must be a target.
func InScope(e ast.Entity, targets TargetSet, followIncludes bool) bool {
	if followIncludes {
		return true
	}
	loc, ok := e.RawLocation()
	if !ok || loc.File == "" {
		return false
	}
	return targets.Contains(loc.File)
}
