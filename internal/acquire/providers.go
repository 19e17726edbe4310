package acquire

import (
	"sort"
	"time"

	"log/slog"

	"substation/internal/config"
	"substation/internal/library"
	"substation/internal/provider"
	"substation/internal/provider/fileflows"
	"substation/internal/provider/opensubtitles"
)

// BuildRegistry constructs the enabled providers in priority order (lower
// priority value first) and restores persisted throttle state from the
// store. A misconfigured enabled provider fails construction outright.
func BuildRegistry(cfg *config.Config, store *library.Store, logger *slog.Logger) (*provider.Registry, error) {
	type ranked struct {
		priority int
		prov     provider.Provider
	}
	var entries []ranked

	if cfg.OpenSubtitles.Enabled {
		prov, err := opensubtitles.NewProvider(cfg.OpenSubtitles, logger)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ranked{cfg.OpenSubtitles.Priority, prov})
	}
	if cfg.FileFlows.Enabled {
		prov, err := fileflows.NewProvider(cfg.FileFlows, logger)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ranked{cfg.FileFlows.Priority, prov})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })
	providers := make([]provider.Provider, len(entries))
	for i, entry := range entries {
		providers[i] = entry.prov
	}
	return provider.NewRegistry(logger, store, providers...)
}

// ThrottleWindows maps provider names to the fallback throttle window used
// when a throttled provider does not supply its own retry window.
func ThrottleWindows(cfg *config.Config) map[string]time.Duration {
	if cfg == nil {
		return nil
	}
	return map[string]time.Duration{
		opensubtitles.Name: time.Duration(cfg.OpenSubtitles.ThrottleMinutes) * time.Minute,
		fileflows.Name:     time.Duration(cfg.FileFlows.ThrottleMinutes) * time.Minute,
	}
}
