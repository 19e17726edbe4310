package wanted

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"log/slog"

	"substation/internal/acquire"
	"substation/internal/config"
	"substation/internal/library"
	"substation/internal/logging"
	"substation/internal/services"
)

const requestBuffer = 16

// Acquirer runs one acquisition pass for an item. Satisfied by
// *acquire.Orchestrator.
type Acquirer interface {
	Acquire(ctx context.Context, itemID int64) ([]acquire.Result, error)
}

// Manager owns the sweep schedule and the single worker that runs
// acquisitions one at a time.
type Manager struct {
	cfg      *config.Config
	store    *library.Store
	acquirer Acquirer
	logger   *slog.Logger
	interval time.Duration
	requests chan int64

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	sweeps    int64
	lastSweep time.Time
}

// Status is the sweep state snapshot served by the daemon API.
type Status struct {
	Running   bool       `json:"running"`
	Sweeps    int64      `json:"sweeps"`
	LastSweep *time.Time `json:"last_sweep,omitempty"`
	Pending   int        `json:"pending"`
}

// NewManager constructs the sweep manager. The scan interval comes from
// configuration in minutes and is clamped to at least one minute.
func NewManager(cfg *config.Config, store *library.Store, acquirer Acquirer, logger *slog.Logger) *Manager {
	interval := time.Duration(cfg.Wanted.ScanInterval) * time.Minute
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		acquirer: acquirer,
		logger:   logging.NewComponentLogger(logger, "wanted"),
		interval: interval,
		requests: make(chan int64, requestBuffer),
	}
}

// Start launches the worker goroutine. The first sweep runs immediately so a
// fresh daemon clears its backlog without waiting a full interval.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("wanted sweep already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates the worker and waits for the in-flight run to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Enqueue requests an acquisition run for one item. It reports false when
// the worker's queue is saturated.
func (m *Manager) Enqueue(itemID int64) bool {
	select {
	case m.requests <- itemID:
		return true
	default:
		return false
	}
}

// Status returns the current sweep snapshot.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := Status{
		Running: m.running,
		Sweeps:  m.sweeps,
		Pending: len(m.requests),
	}
	if !m.lastSweep.IsZero() {
		last := m.lastSweep
		status.LastSweep = &last
	}
	return status
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	m.sweep(ctx)
	timer := time.NewTimer(m.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case itemID := <-m.requests:
			m.runOne(ctx, itemID)
		case <-timer.C:
			m.sweep(ctx)
			timer.Reset(m.nextInterval())
		}
	}
}

// nextInterval jitters the configured interval by up to a tenth so sweeps at
// the same cadence across installs do not align on provider APIs.
func (m *Manager) nextInterval() time.Duration {
	jitter := m.interval / 10
	if jitter <= 0 {
		return m.interval
	}
	return m.interval + rand.N(jitter)
}

func (m *Manager) sweep(ctx context.Context) {
	items, err := m.wantedItems(ctx)
	if err != nil {
		m.logger.Error("list wanted items failed", logging.Error(err))
		return
	}

	m.logger.Info("sweep started", logging.Int("items", len(items)))
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		m.runOne(ctx, item.ID)
	}

	m.mu.Lock()
	m.sweeps++
	m.lastSweep = time.Now()
	m.mu.Unlock()
	m.logger.Info("sweep finished", logging.Int("items", len(items)))
}

func (m *Manager) wantedItems(ctx context.Context) ([]*library.Item, error) {
	if m.cfg.Wanted.MonitoredOnly {
		return m.store.ListWanted(ctx)
	}
	items, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make([]*library.Item, 0, len(items))
	for _, item := range items {
		if item.WantsSubtitles() {
			wanted = append(wanted, item)
		}
	}
	return wanted, nil
}

func (m *Manager) runOne(ctx context.Context, itemID int64) {
	logger := m.logger.With(logging.Int64(logging.FieldItemID, itemID))

	results, err := m.acquirer.Acquire(ctx, itemID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("acquisition run failed",
			logging.String("status", services.FailureStatus(err)),
			logging.Error(err),
		)
		return
	}
	if len(results) > 0 {
		logger.Info("acquisition run landed subtitles", logging.Int("acquired", len(results)))
	}
}
