// Package daemonrun boots the substation daemon process: logging, PID file,
// store, providers, sweep loop, and the API server, then blocks until a
// termination signal arrives.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"substation/internal/acquire"
	"substation/internal/config"
	"substation/internal/daemon"
	"substation/internal/library"
	"substation/internal/logging"
	"substation/internal/notifications"
	"substation/internal/pathmap"
	"substation/internal/preflight"
	"substation/internal/progress"
	"substation/internal/wanted"
)

// Options carries the command-line overrides for a daemon run.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the substation daemon runtime loop. It returns once the context
// is cancelled or the process receives SIGINT/SIGTERM.
func Run(parent context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	runCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("substation-%s.log", stamp))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	if err := linkCurrentLog(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update substation.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "substation-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "substation.pid")
	if err := recordPID(pidPath); err != nil {
		return fmt.Errorf("record pid: %w", err)
	}
	defer os.Remove(pidPath)

	for _, check := range preflight.Failed(preflight.RunAll(runCtx, cfg)) {
		logger.Warn("preflight check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return err
	}
	defer store.Close()

	registry, err := acquire.BuildRegistry(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("build provider registry: %w", err)
	}

	tracker := progress.NewTracker()
	reporter := progress.Multi(progress.NewLogReporter(logger), tracker)
	orchestrator := acquire.NewWithDependencies(cfg, store, registry, logger,
		pathmap.FromConfig(cfg.PathMappings), reporter, notifications.NewService(cfg))
	sweeper := wanted.NewManager(cfg, store, orchestrator, logger)

	d, err := daemon.New(cfg, store, registry, sweeper, tracker, logger)
	if err != nil {
		return fmt.Errorf("assemble daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(runCtx); err != nil {
		return err
	}

	<-runCtx.Done()
	logger.Info("substation daemon shutting down")
	return nil
}

// CurrentLogPath returns the stable path that always points at the newest
// per-run log file.
func CurrentLogPath(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "substation.log")
}

// linkCurrentLog keeps <logDir>/substation.log pointing at the newest
// per-run log file.
func linkCurrentLog(logDir, dest string) error {
	if logDir == "" || dest == "" {
		return nil
	}
	pointer := filepath.Join(logDir, "substation.log")
	if err := os.Remove(pointer); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale log pointer: %w", err)
	}
	if os.Symlink(dest, pointer) == nil {
		return nil
	}
	// Hard link fallback for filesystems without symlink support.
	if err := os.Link(dest, pointer); err != nil {
		return fmt.Errorf("link current log: %w", err)
	}
	return nil
}

func recordPID(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}
