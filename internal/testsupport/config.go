package testsupport

import (
	"path/filepath"
	"testing"

	"substation/internal/config"
)

// ConfigOption mutates the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns a config whose directories live under a fresh temp
// root, with the API bound to an ephemeral loopback port. Options run
// in order after the defaults are applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatabaseDir = filepath.Join(root, "db")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOpenSubtitles enables the direct provider against the given endpoint.
func WithOpenSubtitles(baseURL, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OpenSubtitles.Enabled = true
		cfg.OpenSubtitles.BaseURL = baseURL
		cfg.OpenSubtitles.APIKey = apiKey
	}
}

// WithFileFlows enables the job-based provider against the given endpoint.
func WithFileFlows(url, workflowID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.FileFlows.Enabled = true
		cfg.FileFlows.URL = url
		cfg.FileFlows.APIKey = "test-key"
		cfg.FileFlows.WorkflowID = workflowID
	}
}

// WithPathMapping appends a stored-path rewrite rule.
func WithPathMapping(from, to string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.PathMappings = append(cfg.PathMappings, config.PathMapping{From: from, To: to})
	}
}
