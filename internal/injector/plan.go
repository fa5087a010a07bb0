package injector

import (
	"fmt"

	"github.com/cinject/cli/internal/discovery"
)

// Insertion is one applied or planned snippet
type Insertion struct {
	Site discovery.DefinitionSite `json:"site"`
	// Offset is where Text starts in the text as mutated so far
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// SiteError is a failure local to one definition
type SiteError struct {
	Site discovery.DefinitionSite
	Err  error
}

func (e *SiteError) Error() string { return fmt.Sprintf("%s: %v", e.Site, e.Err) }
func (e *SiteError) Unwrap() error { return e.Err }

// Plan is the outcome of folding every site of one file over its text
type Plan struct {
	Path       string
	Original   []byte
	Text       []byte
	Insertions []Insertion
	Failures   []*SiteError
}

// fold carries the mutated text and the drift accumulated by earlier
// insertions. Site offsets refer to the original text, so each one is
// shifted by the drift before the brace scan.
type fold struct {
	snippet *Snippet
	text    []byte
	drift   int
}

func newFold(snippet *Snippet, text []byte) *fold {
	return &fold{snippet: snippet, text: text}
}

func (f *fold) step(site discovery.DefinitionSite) (Insertion, error) {
	at, err := LocateInsertionPoint(f.text, int(site.Offset)+f.drift)
	if err != nil {
		return Insertion{}, err
	}
	rendered, err := f.snippet.Render(site)
	if err != nil {
		return Insertion{}, err
	}

	f.text = insertAt(f.text, at, rendered)
	f.drift += len(rendered)
	return Insertion{Site: site, Offset: at, Text: rendered}, nil
}

func insertAt(text []byte, at int, s string) []byte {
	out := make([]byte, 0, len(text)+len(s))
	out = append(out, text[:at]...)
	out = append(out, s...)
	out = append(out, text[at:]...)
	return out
}

// BuildPlan computes every insertion for group against text without touching
// the disk. Sites whose brace cannot be found are recorded as failures and
// contribute no drift. The group must be ordered by increasing offset.
func BuildPlan(group discovery.SourceFileGroup, text []byte, snippet *Snippet) (*Plan, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{Path: group.Path, Original: text}
	f := newFold(snippet, text)
	for _, site := range group.Sites {
		ins, err := f.step(site)
		if err != nil {
			plan.Failures = append(plan.Failures, &SiteError{Site: site, Err: err})
			continue
		}
		plan.Insertions = append(plan.Insertions, ins)
	}
	plan.Text = f.text
	return plan, nil
}
