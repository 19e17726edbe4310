package library

import (
	"strings"
	"time"
)

// Kind identifies the media type of a library item.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

var allKinds = []Kind{KindMovie, KindEpisode}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range allKinds {
		if normalized == kind {
			return kind, true
		}
	}
	return "", false
}

// History action tokens written by the acquisition pipeline.
const (
	ActionDownloaded = "downloaded"
	ActionFailed     = "failed"
	ActionUpgraded   = "upgraded"
)

// Item represents a library media item persisted in SQLite.
type Item struct {
	ID               int64
	Title            string
	Year             int
	Kind             Kind
	Path             string
	Monitored        bool
	MissingSubtitles string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WantsSubtitles reports whether the stored missing-languages state is
// non-empty. The string is parsed properly by the language resolver; this
// is only a coarse filter for scans.
func (i Item) WantsSubtitles() bool {
	trimmed := strings.TrimSpace(i.MissingSubtitles)
	return trimmed != "" && trimmed != "[]"
}

// SubtitleRecord links an item to a subtitle acquired on its behalf.
type SubtitleRecord struct {
	ID              int64
	ItemID          int64
	Language        string
	HearingImpaired bool
	Forced          bool
	Provider        string
	FilePath        string
	AcquiredAt      time.Time
}

// HistoryEntry is one append-only audit row.
type HistoryEntry struct {
	ID        int64
	ItemID    int64
	Action    string
	Provider  string
	Language  string
	Message   string
	CreatedAt time.Time
}

// ProviderThrottle records a provider ban window that survives restarts.
type ProviderThrottle struct {
	Provider string
	Until    time.Time
	Reason   string
}

// Expired reports whether the ban window has passed at the given instant.
func (p ProviderThrottle) Expired(now time.Time) bool {
	return !p.Until.After(now)
}

// Summary aggregates library counts for diagnostic output.
type Summary struct {
	Items     int
	Monitored int
	Wanted    int
	Subtitles int
}
