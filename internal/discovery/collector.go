package discovery

import "github.com/cinject/cli/internal/ast"

// Collector walks a translation unit and gathers definition sites
type Collector struct {
	Targets        TargetSet
	FollowIncludes bool
}

// NewCollector creates a collector restricted to targets unless followIncludes
func NewCollector(targets TargetSet, followIncludes bool) *Collector {
	return &Collector{Targets: targets, FollowIncludes: followIncludes}
}

// Collect returns the definition sites below root in the order the parser
// exposes them. Definitions without a location are reported in the error
// slice and skipped; the returned sites remain usable.
func (c *Collector) Collect(root ast.Entity) ([]DefinitionSite, []error) {
	var (
		sites []DefinitionSite
		errs  []error
	)
	c.walk(root, &sites, &errs)
	return sites, errs
}

func (c *Collector) walk(parent ast.Entity, sites *[]DefinitionSite, errs *[]error) {
	for _, child := range parent.Children() {
		if !InScope(child, c.Targets, c.FollowIncludes) {
			continue
		}

		switch Classify(child) {
		case Definition:
			loc, ok := child.ExpansionLocation()
			if !ok {
				*errs = append(*errs, &MissingLocationError{Name: child.Name(), Kind: child.Kind()})
				continue
			}
			*sites = append(*sites, DefinitionSite{
				Name:   child.Name(),
				File:   NormalizePath(loc.File),
				Line:   loc.Line,
				Column: loc.Column,
				Offset: loc.Offset,
				Kind:   child.Kind(),
			})
		case Container:
			c.walk(child, sites, errs)
		}
	}
}
