package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"substation/internal/config"
	"substation/internal/library"
	"substation/internal/logging"
	"substation/internal/progress"
	"substation/internal/provider"
	"substation/internal/wanted"
)

// Daemon owns the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *library.Store
	registry *provider.Registry
	sweeper  *wanted.Manager
	tracker  *progress.Tracker

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	LibraryDBPath string
	LockFilePath  string
	Providers     []provider.ProviderStatus
	Wanted        wanted.Status
	ActiveRuns    []progress.Event
}

// New constructs a daemon with initialized dependencies. The tracker may be
// nil when live progress reporting is not wired in.
func New(cfg *config.Config, store *library.Store, registry *provider.Registry, sweeper *wanted.Manager, tracker *progress.Tracker, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || registry == nil || sweeper == nil {
		return nil, errors.New("daemon requires config, store, registry, and sweep manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "substationd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		sweeper:  sweeper,
		tracker:  tracker,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock and launches the sweep loop and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another substation daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.sweeper.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start wanted sweep: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.sweeper.Stop()
		d.abortStart()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("substation daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop terminates background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.sweeper.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("substation daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// RequestAcquire queues an acquisition run for the item. It reports false
// when the sweep worker's queue is saturated.
func (d *Daemon) RequestAcquire(itemID int64) bool {
	return d.sweeper.Enqueue(itemID)
}

// APIAddr returns the bound API listener address, or empty when the API
// server is disabled.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		LibraryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		Providers:     d.registry.Status(time.Now()),
		Wanted:        d.sweeper.Status(),
	}
	if d.tracker != nil {
		status.ActiveRuns = d.tracker.Snapshot()
	}
	return status
}
