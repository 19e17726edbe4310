package acquire

import (
	"context"
	"errors"

	"substation/internal/language"
	"substation/internal/logging"
	"substation/internal/provider"
	"substation/internal/services"
)

// acquireWant walks the active providers in priority order and returns the
// first artifact fetched for the want. Throttled providers are parked in the
// registry; other provider failures are logged and the next provider tried.
func (o *Orchestrator) acquireWant(ctx context.Context, active []provider.Provider, query provider.MediaQuery, want language.Want) (*provider.Artifact, bool) {
	wantCtx := services.WithLanguage(ctx, want.Tag())

	for _, prov := range active {
		provCtx := services.WithProvider(wantCtx, prov.Name())
		logger := logging.WithContext(provCtx, o.logger)

		candidates, err := prov.Search(provCtx, query, want)
		if err != nil {
			if o.parkThrottled(provCtx, prov.Name(), err) {
				continue
			}
			logger.Warn("search failed", logging.Error(err))
			continue
		}

		match, ok := firstMatch(candidates, want)
		if !ok {
			logger.Debug("no matching candidate", logging.Int("candidates", len(candidates)))
			continue
		}

		artifact, err := prov.Fetch(provCtx, match)
		if err != nil {
			if o.parkThrottled(provCtx, prov.Name(), err) {
				continue
			}
			logger.Warn("fetch failed",
				logging.String("candidate", match.Describe()),
				logging.Error(err),
			)
			continue
		}

		logger.Info("subtitle fetched",
			logging.String("candidate", match.Describe()),
			logging.Int("bytes", len(artifact.Content)),
		)
		return artifact, true
	}
	return nil, false
}

// parkThrottled moves a provider into the registry's throttled set when the
// error is a throttle signal, using the server's window when it supplied one
// and the provider's configured fallback otherwise.
func (o *Orchestrator) parkThrottled(ctx context.Context, providerName string, err error) bool {
	var throttled *provider.ThrottledError
	if !errors.As(err, &throttled) {
		return false
	}
	window := throttled.Window(o.fallbackWindow(providerName))
	o.registry.Throttle(ctx, providerName, window, throttled.Reason)
	return true
}

// firstMatch returns the first candidate whose language and HI/forced pair
// match the want exactly. Candidate order is the provider's own ranking.
func firstMatch(candidates []provider.Candidate, want language.Want) (provider.Candidate, bool) {
	for _, candidate := range candidates {
		if candidate.Matches(want) {
			return candidate, true
		}
	}
	return provider.Candidate{}, false
}
