// Package progress publishes run progress events to interested sinks. The
// daemon wires a log reporter together with an in-memory tracker that the
// HTTP API serves; the CLI renders tracker snapshots.
package progress

import (
	"log/slog"
	"sort"
	"sync"

	"substation/internal/logging"
)

// Event describes one progress update for an acquisition run.
type Event struct {
	ID      string `json:"id"`
	Header  string `json:"header"`
	Name    string `json:"name"`
	Value   int    `json:"value"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Publish(event Event)
	Hide(id string)
}

type nopReporter struct{}

func (nopReporter) Publish(Event) {}
func (nopReporter) Hide(string)   {}

// Nop returns a reporter that discards all events.
func Nop() Reporter {
	return nopReporter{}
}

// LogReporter writes progress events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter wraps a logger as a progress sink.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogReporter{logger: logger}
}

// Publish logs the event with its position within the run.
func (r *LogReporter) Publish(event Event) {
	r.logger.Info(event.Header,
		logging.String("run_id", event.ID),
		logging.String("name", event.Name),
		logging.Int("value", event.Value),
		logging.Int("count", event.Count),
		logging.String("message", event.Message),
	)
}

// Hide logs the end of a run.
func (r *LogReporter) Hide(id string) {
	r.logger.Debug("progress hidden", logging.String("run_id", id))
}

// Tracker keeps the latest event per run for API and CLI snapshots.
type Tracker struct {
	mu     sync.Mutex
	events map[string]Event
}

// NewTracker returns an empty in-memory progress tracker.
func NewTracker() *Tracker {
	return &Tracker{events: make(map[string]Event)}
}

// Publish stores the latest event for the run.
func (t *Tracker) Publish(event Event) {
	if event.ID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[event.ID] = event
}

// Hide removes the run from the snapshot.
func (t *Tracker) Hide(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.events, id)
}

// Snapshot returns the active events ordered by run ID.
func (t *Tracker) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := make([]Event, 0, len(t.events))
	for _, event := range t.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

type multiReporter struct {
	reporters []Reporter
}

// Multi fans events out to every provided reporter. Nil entries are skipped.
func Multi(reporters ...Reporter) Reporter {
	kept := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &multiReporter{reporters: kept}
}

func (m *multiReporter) Publish(event Event) {
	for _, r := range m.reporters {
		r.Publish(event)
	}
}

func (m *multiReporter) Hide(id string) {
	for _, r := range m.reporters {
		r.Hide(id)
	}
}
