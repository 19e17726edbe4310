package preflight

import (
	"context"
	"fmt"

	"substation/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Storage directories (always checked)
	results = append(results, CheckDirectoryAccess("Database directory", cfg.Paths.DatabaseDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Local mounts behind path mappings
	for _, mapping := range cfg.PathMappings {
		results = append(results, CheckDirectoryAccess(fmt.Sprintf("Media mount %s", mapping.To), mapping.To))
	}

	// Providers
	if cfg.OpenSubtitles.Enabled {
		results = append(results, CheckOpenSubtitles(ctx, cfg.OpenSubtitles.BaseURL))
	}
	if cfg.FileFlows.Enabled {
		results = append(results, CheckFileFlows(ctx, cfg.FileFlows.URL, cfg.FileFlows.APIKey))
	}

	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
