package provider

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"substation/internal/library"
	"substation/internal/logging"
)

// ThrottleStore persists provider ban windows across restarts. It is
// satisfied by *library.Store.
type ThrottleStore interface {
	SaveThrottle(ctx context.Context, provider string, until time.Time, reason string) error
	ClearThrottle(ctx context.Context, provider string) error
	Throttles(ctx context.Context) ([]library.ProviderThrottle, error)
	PruneThrottles(ctx context.Context, now time.Time) (int64, error)
}

type throttleEntry struct {
	until  time.Time
	reason string
}

// Registry holds the configured providers in priority order and tracks
// which of them are currently throttled. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	providers []Provider
	throttled map[string]throttleEntry
	store     ThrottleStore
	logger    *slog.Logger
}

// NewRegistry builds a registry over the given providers, reloading any ban
// windows the store persisted from earlier runs. Provider order is the
// priority order consulted during acquisition.
func NewRegistry(logger *slog.Logger, store ThrottleStore, providers ...Provider) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := &Registry{
		providers: append([]Provider(nil), providers...),
		throttled: make(map[string]throttleEntry),
		store:     store,
		logger:    logger,
	}

	if store != nil {
		ctx := context.Background()
		if _, err := store.PruneThrottles(ctx, time.Now()); err != nil {
			return nil, err
		}
		persisted, err := store.Throttles(ctx)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for _, throttle := range persisted {
			if throttle.Expired(now) {
				continue
			}
			registry.throttled[throttle.Provider] = throttleEntry{until: throttle.Until, reason: throttle.Reason}
			logger.Info("provider throttle restored",
				logging.String(logging.FieldProvider, throttle.Provider),
				logging.String("until", throttle.Until.Format(time.RFC3339)),
				logging.String("reason", throttle.Reason),
			)
		}
	}

	return registry, nil
}

// Providers returns all registered providers in priority order.
func (r *Registry) Providers() []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Provider(nil), r.providers...)
}

// Active returns the providers not throttled at the given instant, in
// priority order. Ban windows that have expired are cleared.
func (r *Registry) Active(now time.Time) []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		entry, ok := r.throttled[p.Name()]
		if ok && entry.until.After(now) {
			continue
		}
		if ok {
			delete(r.throttled, p.Name())
		}
		active = append(active, p)
	}
	return active
}

// Throttle marks a provider down for the given window and persists the ban
// so it survives restarts.
func (r *Registry) Throttle(ctx context.Context, name string, d time.Duration, reason string) {
	if d <= 0 {
		return
	}
	until := time.Now().Add(d)

	r.mu.Lock()
	r.throttled[name] = throttleEntry{until: until, reason: reason}
	r.mu.Unlock()

	r.logger.Warn("provider throttled",
		logging.String(logging.FieldProvider, name),
		logging.Duration("window", d),
		logging.String("reason", reason),
	)

	if r.store != nil {
		if err := r.store.SaveThrottle(ctx, name, until, reason); err != nil {
			r.logger.Error("persist provider throttle", logging.Error(err),
				logging.String(logging.FieldProvider, name))
		}
	}
}

// ProviderStatus describes one provider for diagnostics.
type ProviderStatus struct {
	Name           string     `json:"name"`
	Throttled      bool       `json:"throttled"`
	ThrottledUntil *time.Time `json:"throttled_until,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// Status reports every registered provider with its throttle state at the
// given instant.
func (r *Registry) Status(now time.Time) []ProviderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]ProviderStatus, 0, len(r.providers))
	for _, p := range r.providers {
		status := ProviderStatus{Name: p.Name()}
		if entry, ok := r.throttled[p.Name()]; ok && entry.until.After(now) {
			until := entry.until
			status.Throttled = true
			status.ThrottledUntil = &until
			status.Reason = entry.reason
		}
		statuses = append(statuses, status)
	}
	return statuses
}
