package provider

import (
	"context"
	"fmt"
	"strings"

	"substation/internal/language"
	"substation/internal/library"
)

// MediaQuery carries the item attributes a provider searches with.
type MediaQuery struct {
	Title string
	Year  int
	Path  string
	Kind  library.Kind
}

// Candidate is one subtitle a provider offers for a query.
type Candidate struct {
	Provider        string
	Language        string
	HearingImpaired bool
	Forced          bool
	ID              string
	Release         string
}

// Matches reports whether the candidate satisfies a want: the language code
// must name the same language and the (HearingImpaired, Forced) pair must
// be equal exactly.
func (c Candidate) Matches(want language.Want) bool {
	if !language.Equal(c.Language, want.Code) {
		return false
	}
	return c.HearingImpaired == want.HearingImpaired && c.Forced == want.Forced
}

// Describe renders a short human-readable label for logs and history rows.
func (c Candidate) Describe() string {
	label := c.Release
	if strings.TrimSpace(label) == "" {
		label = c.ID
	}
	return fmt.Sprintf("%s (%s)", label, c.Language)
}

// Artifact is a downloaded subtitle payload together with the candidate it
// came from. Content may be empty for job-based providers that write the
// subtitle out-of-band.
type Artifact struct {
	Content   []byte
	Candidate Candidate
}

// Provider searches for and fetches subtitles from one upstream source.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Search(ctx context.Context, query MediaQuery, want language.Want) ([]Candidate, error)
	Fetch(ctx context.Context, candidate Candidate) (*Artifact, error)
}
