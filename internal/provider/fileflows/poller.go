package fileflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"substation/internal/logging"
	"substation/internal/services"
)

// PollState identifies where a submitted job is in its lifecycle.
type PollState string

const (
	StateSubmitted PollState = "submitted"
	StatePolling   PollState = "polling"
	StateCompleted PollState = "completed"
	StateFailed    PollState = "failed"
	StateTimedOut  PollState = "timed_out"
)

const (
	initialPollInterval = 10 * time.Second
	pollBackoffFactor   = 1.5
	maxPollInterval     = 60 * time.Second
)

// nextInterval grows the poll interval by the backoff factor up to the cap.
func nextInterval(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * pollBackoffFactor)
	if next > maxPollInterval {
		return maxPollInterval
	}
	return next
}

// StatusFunc fetches the server status of a job.
type StatusFunc func(ctx context.Context) (JobStatus, error)

// Poller drives a submitted job to a terminal state. Polls start ten seconds
// after submission and back off by half the previous interval up to a minute;
// a wall-clock timeout bounds the whole wait.
type Poller struct {
	status  StatusFunc
	timeout time.Duration
	logger  *slog.Logger

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewPoller builds a poller over the given status fetcher.
func NewPoller(status StatusFunc, timeout time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		status:  status,
		timeout: timeout,
		logger:  logger,
		sleep:   sleepWithContext,
		now:     time.Now,
	}
}

// Wait blocks until the job completes, fails, or exceeds the timeout.
// A transport error while fetching status fails the job immediately.
func (p *Poller) Wait(ctx context.Context) (PollState, error) {
	deadline := p.now().Add(p.timeout)
	interval := initialPollInterval
	state := StateSubmitted

	for {
		if !p.now().Before(deadline) {
			p.logger.Warn("job wait exceeded timeout", logging.Duration("timeout", p.timeout))
			return StateTimedOut, services.Wrap(services.ErrTimeout, "provider", "fileflows",
				fmt.Sprintf("job did not finish within %s", p.timeout), nil)
		}

		if err := p.sleep(ctx, interval); err != nil {
			return state, err
		}
		state = StatePolling

		status, err := p.status(ctx)
		if err != nil {
			return StateFailed, fmt.Errorf("fetch job status: %w", err)
		}

		switch status {
		case JobCompleted:
			return StateCompleted, nil
		case JobFailed, JobCancelled:
			return StateFailed, fmt.Errorf("job ended with server status %q", status)
		default:
			p.logger.Debug("job still running",
				logging.String("status", string(status)),
				logging.Duration("next_poll", nextInterval(interval)),
			)
		}

		interval = nextInterval(interval)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
