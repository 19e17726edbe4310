package acquire_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"substation/internal/acquire"
	"substation/internal/language"
	"substation/internal/library"
	"substation/internal/notifications"
	"substation/internal/pathmap"
	"substation/internal/progress"
	"substation/internal/provider"
	"substation/internal/services"
	"substation/internal/testsupport"
)

type stubProvider struct {
	name     string
	searchFn func(ctx context.Context, query provider.MediaQuery, want language.Want) ([]provider.Candidate, error)
	fetchFn  func(ctx context.Context, candidate provider.Candidate) (*provider.Artifact, error)
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Search(ctx context.Context, query provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, query, want)
}

func (s stubProvider) Fetch(ctx context.Context, candidate provider.Candidate) (*provider.Artifact, error) {
	if s.fetchFn == nil {
		return nil, errors.New("no fetch configured")
	}
	return s.fetchFn(ctx, candidate)
}

// directProvider offers an exact candidate for the given language tags and
// serves fixed content for it.
func directProvider(name string, content []byte, tags ...string) stubProvider {
	offered := make(map[string]bool, len(tags))
	for _, tag := range tags {
		offered[tag] = true
	}
	return stubProvider{
		name: name,
		searchFn: func(_ context.Context, _ provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
			if !offered[want.Tag()] {
				return nil, nil
			}
			return []provider.Candidate{{
				Provider:        name,
				Language:        want.Code,
				HearingImpaired: want.HearingImpaired,
				Forced:          want.Forced,
				ID:              "cand-" + want.Tag(),
				Release:         "Stub.Release.1080p",
			}}, nil
		},
		fetchFn: func(_ context.Context, candidate provider.Candidate) (*provider.Artifact, error) {
			return &provider.Artifact{Content: content, Candidate: candidate}, nil
		},
	}
}

type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
	hidden []string
}

func (r *recordingReporter) Publish(event progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingReporter) Hide(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hidden = append(r.hidden, id)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fixture struct {
	store    *library.Store
	orch     *acquire.Orchestrator
	reporter *recordingReporter
	notifier *recordingNotifier
	registry *provider.Registry
	mediaDir string
}

func newFixture(t *testing.T, providers ...provider.Provider) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	registry, err := provider.NewRegistry(nil, store, providers...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	reporter := &recordingReporter{}
	notifier := &recordingNotifier{}
	orch := acquire.NewWithDependencies(cfg, store, registry, nil, pathmap.New(), reporter, notifier)

	return &fixture{
		store:    store,
		orch:     orch,
		reporter: reporter,
		notifier: notifier,
		registry: registry,
		mediaDir: t.TempDir(),
	}
}

func (f *fixture) addMovieWithMedia(t *testing.T, title, missing string) *library.Item {
	t.Helper()
	mediaPath := testsupport.WriteMediaFile(t, f.mediaDir, title+".mkv")
	return testsupport.AddMovie(t, f.store, title, mediaPath, missing)
}

func TestAcquireUnknownItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Acquire(context.Background(), 9999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want not-found sentinel", err)
	}
	if len(f.reporter.events) != 0 {
		t.Fatalf("unknown item must not emit progress, got %v", f.reporter.events)
	}
}

func TestAcquireUnreachableMediaPath(t *testing.T) {
	f := newFixture(t, directProvider("direct", []byte("payload"), "en"))
	item := testsupport.AddMovie(t, f.store, "Gone", filepath.Join(f.mediaDir, "missing.mkv"), "['en']")

	_, err := f.orch.Acquire(context.Background(), item.ID)
	if !errors.Is(err, services.ErrPathUnavailable) {
		t.Fatalf("err = %v, want path-unavailable sentinel", err)
	}
	if len(f.reporter.events) != 0 || len(f.reporter.hidden) != 0 {
		t.Fatal("path check must run before any progress event")
	}

	history, histErr := f.store.HistoryForItem(context.Background(), item.ID, 10)
	if histErr != nil {
		t.Fatalf("HistoryForItem: %v", histErr)
	}
	if len(history) != 1 || history[0].Action != library.ActionFailed {
		t.Fatalf("history = %+v, want one failed row", history)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != notifications.EventError {
		t.Fatalf("notifications = %v, want one error event", f.notifier.events)
	}
}

func TestAcquireNoMissingLanguages(t *testing.T) {
	f := newFixture(t, directProvider("direct", []byte("payload"), "en"))
	item := f.addMovieWithMedia(t, "Complete", "[]")

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %v, want none", results)
	}
	if len(f.reporter.events) != 1 {
		t.Fatalf("events = %v, want single zero-count start", f.reporter.events)
	}
	if f.reporter.events[0].Count != 0 {
		t.Fatalf("count = %d, want 0", f.reporter.events[0].Count)
	}
	if len(f.reporter.hidden) != 1 {
		t.Fatal("run must still end its progress entry")
	}
}

func TestAcquireEndToEnd(t *testing.T) {
	direct := directProvider("direct", []byte("1\n00:00:01,000 --> 00:00:02,000\nhi\n"), "en")
	jobBased := directProvider("jobs", nil, "es:hi")

	f := newFixture(t, direct, jobBased)
	item := f.addMovieWithMedia(t, "Heat", "['en','es:hi']")

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2", results)
	}
	if results[0].Provider != "direct" || results[0].Want.Tag() != "en" {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].Provider != "jobs" || results[1].Want.Tag() != "es:hi" {
		t.Fatalf("second result = %+v", results[1])
	}

	// The direct artifact lands on disk; the job-based one is written
	// out-of-band, so only its path is reported.
	if _, statErr := os.Stat(results[0].Path); statErr != nil {
		t.Fatalf("direct subtitle missing on disk: %v", statErr)
	}
	wantSuffix := ".es.hi.srt"
	if filepath.Ext(results[0].Path) != ".srt" || !endsWith(results[1].Path, wantSuffix) {
		t.Fatalf("paths = %q, %q", results[0].Path, results[1].Path)
	}
	if _, statErr := os.Stat(results[1].Path); !os.IsNotExist(statErr) {
		t.Fatalf("job-based subtitle should not be written by the run: %v", statErr)
	}

	subtitles, subErr := f.store.SubtitlesForItem(context.Background(), item.ID)
	if subErr != nil {
		t.Fatalf("SubtitlesForItem: %v", subErr)
	}
	if len(subtitles) != 2 {
		t.Fatalf("subtitle rows = %d, want 2", len(subtitles))
	}

	history, histErr := f.store.HistoryForItem(context.Background(), item.ID, 10)
	if histErr != nil {
		t.Fatalf("HistoryForItem: %v", histErr)
	}
	if len(history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(history))
	}
	for _, entry := range history {
		if entry.Action != library.ActionDownloaded {
			t.Fatalf("history action = %q, want %q", entry.Action, library.ActionDownloaded)
		}
	}

	updated, getErr := f.store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	if updated.WantsSubtitles() {
		t.Fatalf("missing state not cleared: %q", updated.MissingSubtitles)
	}

	if len(f.notifier.events) != 2 {
		t.Fatalf("notifications = %v, want two acquired events", f.notifier.events)
	}

	// Progress: start with the item title, one tick per want, then hidden.
	if len(f.reporter.events) != 3 {
		t.Fatalf("progress events = %+v, want 3", f.reporter.events)
	}
	if f.reporter.events[0].Name != "Heat" || f.reporter.events[0].Count != 2 {
		t.Fatalf("start event = %+v", f.reporter.events[0])
	}
	if f.reporter.events[1].Value != 0 || f.reporter.events[2].Value != 1 {
		t.Fatalf("tick values = %d, %d", f.reporter.events[1].Value, f.reporter.events[2].Value)
	}
	if len(f.reporter.hidden) != 1 || f.reporter.hidden[0] != f.reporter.events[0].ID {
		t.Fatalf("hidden = %v", f.reporter.hidden)
	}
}

func TestAcquireKeepsResultsWhenRegistryExhausts(t *testing.T) {
	calls := 0
	throttling := stubProvider{
		name: "flaky",
		searchFn: func(_ context.Context, _ provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
			calls++
			if want.Tag() == "en" {
				return []provider.Candidate{{
					Provider: "flaky",
					Language: "en",
					ID:       "cand-en",
				}}, nil
			}
			return nil, &provider.ThrottledError{Provider: "flaky", RetryAfter: time.Hour, Reason: "quota"}
		},
		fetchFn: func(_ context.Context, candidate provider.Candidate) (*provider.Artifact, error) {
			return &provider.Artifact{Content: []byte("payload"), Candidate: candidate}, nil
		},
	}

	f := newFixture(t, throttling)
	item := f.addMovieWithMedia(t, "Ronin", "['en','es','pt']")

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 1 || results[0].Want.Tag() != "en" {
		t.Fatalf("results = %+v, want the en result kept", results)
	}
	// en searched, es throttled the provider; pt never consulted.
	if calls != 2 {
		t.Fatalf("search calls = %d, want 2", calls)
	}
	if active := f.registry.Active(time.Now()); len(active) != 0 {
		t.Fatalf("active = %d providers, want none", len(active))
	}
	if len(f.reporter.hidden) != 1 {
		t.Fatal("run must end its progress entry after exhaustion")
	}

	updated, getErr := f.store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	wants := language.ParseMissing(updated.MissingSubtitles)
	if len(wants) != 2 || wants[0].Tag() != "es" || wants[1].Tag() != "pt" {
		t.Fatalf("missing state = %q, want es and pt remaining", updated.MissingSubtitles)
	}
}

func TestAcquireFallsThroughOnProviderErrors(t *testing.T) {
	failing := stubProvider{
		name: "broken",
		searchFn: func(context.Context, provider.MediaQuery, language.Want) ([]provider.Candidate, error) {
			return nil, errors.New("upstream 500")
		},
	}
	working := directProvider("backup", []byte("payload"), "en")

	f := newFixture(t, failing, working)
	item := f.addMovieWithMedia(t, "Fallback", "['en']")

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 1 || results[0].Provider != "backup" {
		t.Fatalf("results = %+v, want backup to serve", results)
	}
	// A plain search error must not throttle the provider.
	if active := f.registry.Active(time.Now()); len(active) != 2 {
		t.Fatalf("active = %d providers, want 2", len(active))
	}
}

func TestAcquireRejectsMismatchedFlags(t *testing.T) {
	wrongFlags := stubProvider{
		name: "wrongflags",
		searchFn: func(_ context.Context, _ provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
			// Right language, wrong HI flag.
			return []provider.Candidate{{
				Provider: "wrongflags",
				Language: want.Code,
				ID:       "cand",
			}}, nil
		},
		fetchFn: func(context.Context, provider.Candidate) (*provider.Artifact, error) {
			return nil, errors.New("fetch should never run for a mismatched candidate")
		},
	}

	f := newFixture(t, wrongFlags)
	item := f.addMovieWithMedia(t, "Strict", "['es:hi']")

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}

	subtitles, subErr := f.store.SubtitlesForItem(context.Background(), item.ID)
	if subErr != nil {
		t.Fatalf("SubtitlesForItem: %v", subErr)
	}
	if len(subtitles) != 0 {
		t.Fatal("no subtitle rows expected without a success")
	}
	history, histErr := f.store.HistoryForItem(context.Background(), item.ID, 10)
	if histErr != nil {
		t.Fatalf("HistoryForItem: %v", histErr)
	}
	if len(history) != 0 {
		t.Fatalf("history = %+v, want none without a success", history)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("notifications = %v, want none without a success", f.notifier.events)
	}
}

func TestAcquireMaterializationFailureIsNonFatal(t *testing.T) {
	direct := directProvider("direct", []byte("payload"), "en", "es")

	f := newFixture(t, direct)
	item := f.addMovieWithMedia(t, "Blocked", "['en','es']")

	// Occupy the en subtitle path with a directory so the write fails.
	mediaPath := item.Path
	blocked := acquire.SubtitlePath(mediaPath, language.Want{Code: "en"})
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	results, err := f.orch.Acquire(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(results) != 1 || results[0].Want.Tag() != "es" {
		t.Fatalf("results = %+v, want only es", results)
	}

	updated, getErr := f.store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	wants := language.ParseMissing(updated.MissingSubtitles)
	if len(wants) != 1 || wants[0].Tag() != "en" {
		t.Fatalf("missing state = %q, want en still missing", updated.MissingSubtitles)
	}
}

func TestAcquireHonorsCancelledContext(t *testing.T) {
	f := newFixture(t, directProvider("direct", []byte("payload"), "en"))
	item := f.addMovieWithMedia(t, "Cancelled", "['en']")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := f.orch.Acquire(ctx, item.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}
}

func endsWith(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
