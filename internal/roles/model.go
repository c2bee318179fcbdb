package roles

import (
	"context"
	"unicode/utf8"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/cascade"
)

// Display caps applied by Present.
const (
	MaxSummaryRunes = 800
	MaxFacts        = 4
	MaxSkills       = 15
)

// Tier identifiers, in resolution order.
const (
	TierLocal  = "local"
	TierRemote = "remote"
	TierStatic = "static"
)

// RoleContent is the canonical shape of a role page.
type RoleContent struct {
	Role       string   `json:"role"`
	Summary    string   `json:"summary"`
	Facts      []string `json:"facts"`
	Skills     []string `json:"skills"`
	PDFURL     string   `json:"pdfUrl,omitempty"`
	ImageQuery string   `json:"imageQuery,omitempty"`
	// ImageRef is the locally hosted or record-supplied image tried first.
	ImageRef string `json:"imageRef,omitempty"`
	// ImageURL is the reference to display after fallback.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Present returns a copy trimmed to the display caps.
func (r RoleContent) Present() RoleContent {
	out := r
	out.Summary = truncateRunes(r.Summary, MaxSummaryRunes)
	out.Facts = capList(r.Facts, MaxFacts)
	out.Skills = capList(r.Skills, MaxSkills)
	return out
}

// Provenance explains which tier produced a RoleContent.
type Provenance struct {
	Source   string            `json:"source"`
	Attempts []cascade.Attempt `json:"attempts"`
}

// Record is a loosely typed role document as stored by a source.
type Record = map[string]any

// Source is one tier of the resolver.
type Source interface {
	Name() string
	Lookup(ctx context.Context, slug string) (Record, error)
}

// Entry is one role in a browsable catalog.
type Entry struct {
	Slug string `json:"slug"`
	Role string `json:"role"`
}

// Lister is implemented by sources that can enumerate their roles.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}

func capList(in []string, n int) []string {
	if len(in) <= n {
		return append([]string{}, in...)
	}
	return append([]string{}, in[:n]...)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
