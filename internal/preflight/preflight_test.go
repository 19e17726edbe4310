package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"substation/internal/testsupport"
)

func TestDirectoryAccess(t *testing.T) {
	okDir := t.TempDir()
	filePath := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantPass bool
	}{
		{"writable directory", okDir, true},
		{"missing directory", filepath.Join(okDir, "nope"), false},
		{"regular file", filePath, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckDirectoryAccess("probe", tc.path)
			if result.Passed != tc.wantPass {
				t.Fatalf("Passed = %v, want %v (detail %q)", result.Passed, tc.wantPass, result.Detail)
			}
			if !tc.wantPass && result.Detail == "" {
				t.Fatal("failed check needs a detail message")
			}
		})
	}
}

func respondWith(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenSubtitlesReachability(t *testing.T) {
	t.Run("answering server passes even when unauthorized", func(t *testing.T) {
		srv := respondWith(t, http.StatusUnauthorized)
		if result := CheckOpenSubtitles(context.Background(), srv.URL); !result.Passed {
			t.Fatalf("want pass for answering server, got %q", result.Detail)
		}
	})
	t.Run("closed server fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()
		if result := CheckOpenSubtitles(context.Background(), url); result.Passed {
			t.Fatal("want failure for closed server")
		}
	})
	t.Run("blank url fails", func(t *testing.T) {
		if result := CheckOpenSubtitles(context.Background(), "  "); result.Passed {
			t.Fatal("want failure for missing URL")
		}
	})
}

func TestFileFlowsReachability(t *testing.T) {
	t.Run("status endpoint answers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/status" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)
		if result := CheckFileFlows(context.Background(), srv.URL, "key"); !result.Passed {
			t.Fatalf("want pass, got %q", result.Detail)
		}
	})
	t.Run("server error fails", func(t *testing.T) {
		srv := respondWith(t, http.StatusServiceUnavailable)
		if result := CheckFileFlows(context.Background(), srv.URL, "key"); result.Passed {
			t.Fatal("want failure for erroring status endpoint")
		}
	})
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("nil config should produce no checks")
	}
}

func TestRunAllMinimalConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	// Database + log directory checks only; no providers enabled.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("failed checks: %+v", failed)
	}
}

func TestRunAllCoversProvidersAndMounts(t *testing.T) {
	srv := respondWith(t, http.StatusOK)

	mount := t.TempDir()
	cfg := testsupport.NewConfig(t,
		testsupport.WithOpenSubtitles(srv.URL, "key"),
		testsupport.WithFileFlows(srv.URL, "subs-extract"),
		testsupport.WithPathMapping("/data/media", mount),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	passed := make(map[string]bool)
	for _, r := range RunAll(context.Background(), cfg) {
		passed[r.Name] = r.Passed
	}

	for _, name := range []string{"OpenSubtitles", "FileFlows", "Media mount " + mount} {
		ok, found := passed[name]
		if !found {
			t.Fatalf("check %q missing from results %+v", name, passed)
		}
		if !ok {
			t.Errorf("check %q failed", name)
		}
	}
}
