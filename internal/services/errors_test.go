package services_test

import (
	"errors"
	"strings"
	"testing"

	"substation/internal/services"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "fileflows", "submit", "failed", cause)
	if err == nil {
		t.Fatal("want error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fileflows", "submit", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("error text %q is missing %q", msg, fragment)
		}
	}
}

func TestWrapNilMarkerIsTransient(t *testing.T) {
	err := services.Wrap(nil, "registry", "load", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("want transient marker, got %v", err)
	}
}

func TestFailureStatusTokens(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect string
	}{
		{"nil", nil, "failed"},
		{"not found", services.Wrap(services.ErrNotFound, "store", "get", "missing", nil), "not-found"},
		{"path unavailable", services.Wrap(services.ErrPathUnavailable, "acquire", "stat", "gone", nil), "path-unavailable"},
		{"configuration", services.Wrap(services.ErrConfiguration, "fileflows", "new", "endpoint missing", nil), "configuration"},
		{"throttled", services.Wrap(services.ErrThrottled, "opensubtitles", "search", "429", nil), "throttled"},
		{"no providers", services.Wrap(services.ErrNoProviders, "registry", "active", "", nil), "no-providers"},
		{"materialization", services.Wrap(services.ErrMaterialization, "acquire", "write", "disk full", errors.New("enospc")), "materialization"},
		{"timeout", services.Wrap(services.ErrTimeout, "fileflows", "poll", "deadline", nil), "timeout"},
		{"transient", services.Wrap(services.ErrTransient, "opensubtitles", "download", "io", errors.New("io")), "failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if status := services.FailureStatus(tc.err); status != tc.expect {
				t.Fatalf("FailureStatus = %q, want %q", status, tc.expect)
			}
		})
	}
}
