package discovery

import "sort"

type siteKey struct {
	file   string
	offset uint
}

// Group concatenates the sites of several translation units and groups them
// by file. Files keep the order in which they were first seen and sites keep
// their relative order. A template instantiated from several translation
// units, or a header reached through more than one of them, yields the same
// (file, offset) more than once; only the first occurrence is kept.
//
// A header parsed by a C unit and by a C++ unit may yield different sites, so
// each file's merged sites are put back in increasing offset order.
func Group(units ...[]DefinitionSite) []SourceFileGroup {
	var groups []SourceFileGroup
	index := make(map[string]int)
	seen := make(map[siteKey]struct{})

	for _, sites := range units {
		for _, s := range sites {
			key := siteKey{file: s.File, offset: s.Offset}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			i, ok := index[s.File]
			if !ok {
				i = len(groups)
				index[s.File] = i
				groups = append(groups, SourceFileGroup{Path: s.File})
			}
			groups[i].Sites = append(groups[i].Sites, s)
		}
	}

	for _, g := range groups {
		sites := g.Sites
		sort.SliceStable(sites, func(a, b int) bool { return sites[a].Offset < sites[b].Offset })
	}
	return groups
}

// Count returns the total number of sites across groups
func Count(groups []SourceFileGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Sites)
	}
	return n
}
