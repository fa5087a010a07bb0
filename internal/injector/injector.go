package injector

import (
	"context"

	"github.com/cinject/cli/internal/discovery"
)

// BackupSuffix is appended to a file name when a backup is requested
const BackupSuffix = ".bak"

// Options configures an Injector
type Options struct {
	// FileSystem defaults to OSFileSystem
	FileSystem FileSystem
	// Backup writes <path>.bak with the original content before the first write
	Backup bool
	// Diff fills FileResult.Diff
	Diff bool
}

// FileResult reports what happened to one file
type FileResult struct {
	Path       string
	Insertions []Insertion
	Failures   []*SiteError
	// Err is set when processing of the file stopped early
	Err  error
	Diff string
}

// Injector inserts a snippet into every definition of a file group
type Injector struct {
	snippet *Snippet
	fs      FileSystem
	backup  bool
	diff    bool
}

// New creates an injector for snippet
func New(snippet *Snippet, opts Options) *Injector {
	fs := opts.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	return &Injector{
		snippet: snippet,
		fs:      fs,
		backup:  opts.Backup,
		diff:    opts.Diff,
	}
}

// Preview computes the insertions Apply would make without writing anything
func (in *Injector) Preview(group discovery.SourceFileGroup) FileResult {
	res := FileResult{Path: group.Path}

	text, err := in.fs.ReadFile(group.Path)
	if err != nil {
		res.Err = &IOError{Op: "read", Path: group.Path, Err: err}
		return res
	}

	plan, err := BuildPlan(group, text, in.snippet)
	if err != nil {
		res.Err = err
		return res
	}
	res.Insertions = plan.Insertions
	res.Failures = plan.Failures
	if in.diff {
		res.Diff = UnifiedDiff(group.Path, plan.Original, plan.Text)
	}
	return res
}

// Apply inserts the snippet into every site of group, writing the whole file
// after each insertion. A read or write error stops the file; insertions
// written before it stay on disk.
func (in *Injector) Apply(ctx context.Context, group discovery.SourceFileGroup) FileResult {
	res := FileResult{Path: group.Path}

	if err := group.Validate(); err != nil {
		res.Err = err
		return res
	}

	original, err := in.fs.ReadFile(group.Path)
	if err != nil {
		res.Err = &IOError{Op: "read", Path: group.Path, Err: err}
		return res
	}

	f := newFold(in.snippet, original)
	onDisk := original
	backedUp := false
	for _, site := range group.Sites {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}

		ins, err := f.step(site)
		if err != nil {
			res.Failures = append(res.Failures, &SiteError{Site: site, Err: err})
			continue
		}

		if in.backup && !backedUp {
			if err := in.fs.WriteFile(group.Path+BackupSuffix, original); err != nil {
				res.Err = &IOError{Op: "back up", Path: group.Path, Err: err}
				break
			}
			backedUp = true
		}
		if err := in.fs.WriteFile(group.Path, f.text); err != nil {
			res.Err = &IOError{Op: "write", Path: group.Path, Err: err}
			break
		}
		onDisk = f.text
		res.Insertions = append(res.Insertions, ins)
	}

	if in.diff && len(res.Insertions) > 0 {
		res.Diff = UnifiedDiff(group.Path, original, onDisk)
	}
	return res
}
