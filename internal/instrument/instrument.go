// Package instrument runs a complete discovery and injection pass over a set
// of C and C++ files.
package instrument

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cinject/cli/internal/discovery"
	"github.com/cinject/cli/internal/injector"
	"github.com/cinject/cli/internal/logger"
	"github.com/cinject/cli/internal/parser"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures a run
type Options struct {
	// Files are the translation units to parse; they also form the target set
	Files   []string
	Snippet *injector.Snippet

	// Inject writes the changes; otherwise the run only reports
	Inject bool
	// Quiet suppresses the per-definition report lines
	Quiet bool
	// Diff prints a unified diff per changed file
	Diff bool
	// FollowIncludes collects definitions from headers outside Files
	FollowIncludes bool
	IncludePaths   []string
	Strict         bool
	Backup         bool
	// Jobs bounds parallel parsing and writing; 0 means one per CPU
	Jobs int

	FileSystem  injector.FileSystem
	Logger      logger.Logger
	Diagnostics logrus.FieldLogger
	// Progress wraps the parse phase, e.g. with a spinner
	Progress ProgressFunc
}

// ProgressFunc runs action while showing title to the user
type ProgressFunc func(ctx context.Context, title string, action func(ctx context.Context) error) error

// Run parses every file, collects the definitions in scope and either
// reports them or injects the snippet into each one. Per-file and
// per-definition failures are counted in the summary; the returned error is
// reserved for problems that prevent the run from starting.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Snippet == nil {
		return nil, fmt.Errorf("no snippet configured")
	}
	out := opts.Logger
	if out == nil {
		out = logger.NewStdoutLogger()
	}
	diag := opts.Diagnostics
	if diag == nil {
		diag = logger.Discard()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	session, err := parser.NewSession(parser.Options{
		IncludePaths: opts.IncludePaths,
		Strict:       opts.Strict,
		Logger:       diag,
	})
	if err != nil {
		return nil, err
	}
	// entities borrow from the session's trees until injection is over
	defer session.Close()

	summary := &Summary{Files: len(opts.Files)}
	out.Logf("Found %d files\n", len(opts.Files))

	var units []unit
	parse := func(ctx context.Context) error {
		units = parseAll(ctx, session, opts.Files, jobs, diag)
		return ctx.Err()
	}
	if opts.Progress != nil {
		err = opts.Progress(ctx, fmt.Sprintf("Parsing %d files", len(opts.Files)), parse)
	} else {
		err = parse(ctx)
	}
	if err != nil {
		return nil, err
	}

	groups := collect(units, opts, summary, diag)
	summary.Groups = groups
	summary.Functions = discovery.Count(groups)

	out.Logf("Parsed %d translation units\n", summary.TranslationUnits)
	if !opts.Quiet {
		for _, g := range groups {
			for _, s := range g.Sites {
				out.Logf("function: %s\n", s)
			}
		}
	}
	out.Logf("Found %d functions\n", summary.Functions)

	in := injector.New(opts.Snippet, injector.Options{
		FileSystem: opts.FileSystem,
		Backup:     opts.Backup,
		Diff:       opts.Diff,
	})
	summary.Results = process(ctx, in, groups, opts.Inject, jobs)

	for _, res := range summary.Results {
		summary.add(res)
		logResult(diag, res)
		if res.Diff != "" {
			out.Log(res.Diff)
		}
	}

	if opts.Inject {
		out.Logf("Injected %d snippets into %d files\n", summary.Injected, summary.ChangedFiles)
	} else {
		out.Logf("Planned %d insertions (dry run)\n", summary.Injected)
	}
	if n := summary.Failures(); n > 0 {
		out.Logf("Failures: %d parse, %d location, %d insertion, %d file\n",
			summary.ParseFailures, summary.MissingLocations, summary.FailedInsertions, summary.FailedFiles)
	}
	return summary, ctx.Err()
}

// unit is the parse outcome of one input file, kept in input order
type unit struct {
	path string
	tu   *parser.TranslationUnit
	err  error
}

// parseAll parses the files concurrently. Each translation unit owns its
// trees, so no tree is touched by more than one goroutine.
func parseAll(ctx context.Context, session *parser.Session, files []string, jobs int, diag logrus.FieldLogger) []unit {
	units := make([]unit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		units[i].path = path
		if gctx.Err() != nil {
			units[i].err = gctx.Err()
			continue
		}
		g.Go(func() error {
			tu, err := session.Parse(gctx, path)
			units[i].tu = tu
			units[i].err = err
			if err == nil {
				diag.WithFields(logrus.Fields{"file": path, "language": tu.Language(), "headers": len(tu.Headers())}).Debug("parsed translation unit")
			}
			return nil
		})
	}
	_ = g.Wait()
	return units
}

// collect walks the units in input order so that the result does not depend
// on scheduling
func collect(units []unit, opts Options, summary *Summary, diag logrus.FieldLogger) []discovery.SourceFileGroup {
	collector := discovery.NewCollector(discovery.NewTargetSet(opts.Files...), opts.FollowIncludes)

	var all [][]discovery.DefinitionSite
	for _, u := range units {
		if u.err != nil {
			summary.ParseFailures++
			diag.WithError(u.err).WithField("file", u.path).Warn("skipping translation unit")
			continue
		}
		summary.TranslationUnits++

		sites, errs := collector.Collect(u.tu.Root())
		for _, err := range errs {
			summary.MissingLocations++
			diag.WithError(err).WithField("file", u.path).Warn("definition without location")
		}
		all = append(all, sites)
	}
	return discovery.Group(all...)
}

// process previews or applies every group. Files are independent and run in
// parallel; the sites of one file are applied in order by the injector.
func process(ctx context.Context, in *injector.Injector, groups []discovery.SourceFileGroup, apply bool, jobs int) []injector.FileResult {
	results := make([]injector.FileResult, len(groups))
	g := new(errgroup.Group)
	g.SetLimit(jobs)

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			results[i] = injector.FileResult{Path: group.Path, Err: err}
			continue
		}
		g.Go(func() error {
			if apply {
				results[i] = in.Apply(ctx, group)
			} else {
				results[i] = in.Preview(group)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func logResult(diag logrus.FieldLogger, res injector.FileResult) {
	for _, f := range res.Failures {
		diag.WithFields(logrus.Fields{
			"file":     res.Path,
			"function": f.Site.Name,
			"offset":   f.Site.Offset,
		}).WithError(f.Err).Warn("snippet not inserted")
	}
	if res.Err != nil {
		diag.WithError(res.Err).WithField("file", res.Path).Warn("file not fully processed")
	}
	if len(res.Insertions) > 0 {
		diag.WithFields(logrus.Fields{"file": res.Path, "insertions": len(res.Insertions)}).Debug("processed file")
	}
}
