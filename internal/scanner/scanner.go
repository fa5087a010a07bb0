// Package scanner enumerates the C and C++ files of a directory tree.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions scanned when none are configured
var DefaultExtensions = []string{".c", ".cc", ".cpp", ".h", ".hpp"}

// Options configures a scan
type Options struct {
	// Extensions to accept, with or without the leading dot; empty uses DefaultExtensions
	Extensions []string
	// Skip drops every path containing one of these substrings
	Skip []string
}

// Scan walks root and returns the matching files, sorted
func Scan(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to scan %s: not a directory", root)
	}

	exts := normalizeExtensions(opts.Extensions)
	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if Skipped(path, opts.Skip) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Filter drops the paths containing a skip substring, keeping order
func Filter(paths []string, skip []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !Skipped(p, skip) {
			out = append(out, p)
		}
	}
	return out
}

// Skipped reports whether path contains any of the skip substrings
func Skipped(path string, skip []string) bool {
	for _, s := range skip {
		if s != "" && strings.Contains(path, s) {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	out := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out[e] = true
	}
	return out
}

// shouldSkipDir drops hidden directories such as .git. Vendored trees are
// scanned unless excluded with Options.Skip.
func shouldSkipDir(name string) bool {
	return strings.HasPrefix(name, ".")
}
