package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"substation/internal/language"
	"substation/internal/provider"
	"substation/internal/services"
	"substation/internal/testsupport"
)

type stubProvider struct {
	name string
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Search(context.Context, provider.MediaQuery, language.Want) ([]provider.Candidate, error) {
	return nil, nil
}

func (s stubProvider) Fetch(context.Context, provider.Candidate) (*provider.Artifact, error) {
	return nil, nil
}

func TestActivePreservesRegistrationOrder(t *testing.T) {
	registry, err := provider.NewRegistry(nil, nil, stubProvider{name: "first"}, stubProvider{name: "second"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	active := registry.Active(time.Now())
	if len(active) != 2 {
		t.Fatalf("expected 2 active providers, got %d", len(active))
	}
	if active[0].Name() != "first" || active[1].Name() != "second" {
		t.Fatalf("expected registration order, got %s,%s", active[0].Name(), active[1].Name())
	}
}

func TestThrottleExcludesProviderUntilExpiry(t *testing.T) {
	registry, err := provider.NewRegistry(nil, nil, stubProvider{name: "first"}, stubProvider{name: "second"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	registry.Throttle(context.Background(), "first", 10*time.Minute, "HTTP 429")

	active := registry.Active(time.Now())
	if len(active) != 1 || active[0].Name() != "second" {
		t.Fatalf("expected only second active, got %d providers", len(active))
	}

	statuses := registry.Status(time.Now())
	if !statuses[0].Throttled || statuses[0].Reason != "HTTP 429" {
		t.Fatalf("expected first reported throttled, got %#v", statuses[0])
	}
	if statuses[1].Throttled {
		t.Fatalf("expected second reported active, got %#v", statuses[1])
	}

	later := time.Now().Add(11 * time.Minute)
	active = registry.Active(later)
	if len(active) != 2 {
		t.Fatalf("expected throttle expired, got %d providers", len(active))
	}
	if registry.Status(later)[0].Throttled {
		t.Fatal("expected expired throttle cleared from status")
	}
}

func TestThrottlePersistsAcrossRegistries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := provider.NewRegistry(nil, store, stubProvider{name: "opensubtitles"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	first.Throttle(context.Background(), "opensubtitles", 30*time.Minute, "HTTP 429")

	second, err := provider.NewRegistry(nil, store, stubProvider{name: "opensubtitles"})
	if err != nil {
		t.Fatalf("NewRegistry reload failed: %v", err)
	}
	if active := second.Active(time.Now()); len(active) != 0 {
		t.Fatalf("expected persisted throttle to survive restart, got %d active", len(active))
	}
}

func TestExpiredPersistedThrottleNotRestored(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := store.SaveThrottle(ctx, "opensubtitles", time.Now().Add(-time.Minute), "stale"); err != nil {
		t.Fatalf("SaveThrottle failed: %v", err)
	}

	registry, err := provider.NewRegistry(nil, store, stubProvider{name: "opensubtitles"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if active := registry.Active(time.Now()); len(active) != 1 {
		t.Fatalf("expected stale throttle ignored, got %d active", len(active))
	}

	throttles, err := store.Throttles(ctx)
	if err != nil {
		t.Fatalf("Throttles failed: %v", err)
	}
	if len(throttles) != 0 {
		t.Fatalf("expected stale row pruned, got %d", len(throttles))
	}
}

func TestCandidateMatches(t *testing.T) {
	tests := []struct {
		name      string
		candidate provider.Candidate
		want      language.Want
		matches   bool
	}{
		{
			name:      "plain language match",
			candidate: provider.Candidate{Language: "en"},
			want:      language.Want{Code: "en"},
			matches:   true,
		},
		{
			name:      "alias codes match",
			candidate: provider.Candidate{Language: "eng"},
			want:      language.Want{Code: "en"},
			matches:   true,
		},
		{
			name:      "case insensitive",
			candidate: provider.Candidate{Language: "EN"},
			want:      language.Want{Code: "en"},
			matches:   true,
		},
		{
			name:      "hi pair must match",
			candidate: provider.Candidate{Language: "es", HearingImpaired: true},
			want:      language.Want{Code: "es"},
			matches:   false,
		},
		{
			name:      "hi want satisfied by hi candidate",
			candidate: provider.Candidate{Language: "es", HearingImpaired: true},
			want:      language.Want{Code: "es", HearingImpaired: true},
			matches:   true,
		},
		{
			name:      "forced pair must match",
			candidate: provider.Candidate{Language: "pt"},
			want:      language.Want{Code: "pt", Forced: true},
			matches:   false,
		},
		{
			name:      "different language",
			candidate: provider.Candidate{Language: "fr"},
			want:      language.Want{Code: "en"},
			matches:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.candidate.Matches(tc.want); got != tc.matches {
				t.Fatalf("Matches() = %v, want %v", got, tc.matches)
			}
		})
	}
}

func TestThrottledErrorMatchesSentinel(t *testing.T) {
	err := &provider.ThrottledError{Provider: "opensubtitles", RetryAfter: 2 * time.Minute, Reason: "HTTP 429"}

	if !errors.Is(err, services.ErrThrottled) {
		t.Fatal("expected ThrottledError to match services.ErrThrottled")
	}

	var throttled *provider.ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatal("expected errors.As to recover ThrottledError")
	}
	if throttled.Window(10*time.Minute) != 2*time.Minute {
		t.Fatalf("expected server window preferred, got %s", throttled.Window(10*time.Minute))
	}

	bare := &provider.ThrottledError{Provider: "fileflows"}
	if bare.Window(10*time.Minute) != 10*time.Minute {
		t.Fatalf("expected fallback window, got %s", bare.Window(10*time.Minute))
	}
}
