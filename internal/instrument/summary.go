package instrument

import (
	"fmt"
	"strings"

	"github.com/cinject/cli/internal/discovery"
	"github.com/cinject/cli/internal/injector"
)

// Summary counts what a run did. Success and failure counts are kept apart.
type Summary struct {
	Files            int
	TranslationUnits int
	Functions        int
	// Injected counts insertions made, or planned in a dry run
	Injected     int
	ChangedFiles int

	ParseFailures    int
	MissingLocations int
	FailedInsertions int
	FailedFiles      int

	Groups  []discovery.SourceFileGroup
	Results []injector.FileResult
}

func (s *Summary) add(res injector.FileResult) {
	s.Injected += len(res.Insertions)
	if len(res.Insertions) > 0 {
		s.ChangedFiles++
	}
	s.FailedInsertions += len(res.Failures)
	if res.Err != nil {
		s.FailedFiles++
	}
}

// Failures returns the total number of failures of any kind
func (s *Summary) Failures() int {
	return s.ParseFailures + s.MissingLocations + s.FailedInsertions + s.FailedFiles
}

// Err returns a *FailureError when anything failed, nil otherwise
func (s *Summary) Err() error {
	if s.Failures() == 0 {
		return nil
	}
	return &FailureError{
		ParseFailures:    s.ParseFailures,
		MissingLocations: s.MissingLocations,
		FailedInsertions: s.FailedInsertions,
		FailedFiles:      s.FailedFiles,
	}
}

// FailureError reports that a run completed with failures
type FailureError struct {
	ParseFailures    int
	MissingLocations int
	FailedInsertions int
	FailedFiles      int
}

func (e *FailureError) Error() string {
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(e.ParseFailures, "translation units failed to parse")
	add(e.MissingLocations, "definitions without location")
	add(e.FailedInsertions, "insertions failed")
	add(e.FailedFiles, "files failed")
	return "run completed with failures: " + strings.Join(parts, ", ")
}
