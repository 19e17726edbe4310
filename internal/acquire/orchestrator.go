package acquire

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"substation/internal/config"
	"substation/internal/language"
	"substation/internal/library"
	"substation/internal/logging"
	"substation/internal/notifications"
	"substation/internal/pathmap"
	"substation/internal/progress"
	"substation/internal/provider"
	"substation/internal/services"
)

const (
	searchHeader          = "Searching subtitles…"
	defaultThrottleWindow = 10 * time.Minute
)

// Result is one successful acquisition within a run.
type Result struct {
	Provider string
	Want     language.Want
	Path     string
	Message  string
}

// Orchestrator drives acquisition runs against the library store and the
// provider registry.
type Orchestrator struct {
	store    *library.Store
	registry *provider.Registry
	mapper   *pathmap.Mapper
	reporter progress.Reporter
	notifier notifications.Service
	logger   *slog.Logger
	windows  map[string]time.Duration

	now func() time.Time
}

// New constructs the orchestrator using default dependencies.
func New(cfg *config.Config, store *library.Store, registry *provider.Registry, logger *slog.Logger) *Orchestrator {
	return NewWithDependencies(cfg, store, registry, logger,
		pathmap.FromConfig(cfg.PathMappings),
		progress.NewLogReporter(logger),
		notifications.NewService(cfg),
	)
}

// NewWithDependencies allows injecting collaborators (used in tests and by
// the daemon, which shares its progress tracker and notifier).
func NewWithDependencies(
	cfg *config.Config,
	store *library.Store,
	registry *provider.Registry,
	logger *slog.Logger,
	mapper *pathmap.Mapper,
	reporter progress.Reporter,
	notifier notifications.Service,
) *Orchestrator {
	if mapper == nil {
		mapper = pathmap.New()
	}
	if reporter == nil {
		reporter = progress.Nop()
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		mapper:   mapper,
		reporter: reporter,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "acquire"),
		windows:  ThrottleWindows(cfg),
		now:      time.Now,
	}
}

// Acquire runs one acquisition pass over the item's missing languages and
// returns the subtitles it landed, in want order.
//
// An unknown item or an unreachable media file aborts the run before any
// progress is reported. Past that, the run works through each want in turn
// and keeps going on per-want failures; an exhausted provider registry stops
// the remaining wants but the results already acquired still come back with
// a nil error.
func (o *Orchestrator) Acquire(ctx context.Context, itemID int64) ([]Result, error) {
	item, err := o.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "acquire", "load item", fmt.Sprintf("item %d", itemID), err)
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "acquire", "load item", fmt.Sprintf("item %d does not exist", itemID), nil)
	}

	ctx = services.WithItemID(ctx, item.ID)

	mediaPath := o.mapper.Map(item.Path)
	if _, err := os.Stat(mediaPath); err != nil {
		runErr := services.Wrap(services.ErrPathUnavailable, "acquire", "verify media",
			fmt.Sprintf("media file is not reachable: %s", mediaPath), err)
		o.recordFailure(ctx, item, runErr)
		return nil, runErr
	}

	wants := language.ParseMissing(item.MissingSubtitles)
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	o.reporter.Publish(progress.Event{
		ID:     runID,
		Header: searchHeader,
		Name:   displayTitle(item),
		Value:  0,
		Count:  len(wants),
	})
	defer o.reporter.Hide(runID)

	if len(wants) == 0 {
		logger.Info("no missing languages", logging.String("raw_state", item.MissingSubtitles))
		return nil, nil
	}

	logger.Info("acquisition run started",
		logging.Int("wants", len(wants)),
		logging.String("media_path", mediaPath),
	)

	query := provider.MediaQuery{
		Title: item.Title,
		Year:  item.Year,
		Path:  mediaPath,
		Kind:  item.Kind,
	}

	results := make([]Result, 0, len(wants))
	satisfied := make([]bool, len(wants))

	for i, want := range wants {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		active := o.registry.Active(o.now())
		if len(active) == 0 {
			logger.Warn("all providers are throttled",
				logging.Int("remaining_wants", len(wants)-i),
				logging.Bool(logging.FieldAlert, true),
			)
			break
		}

		o.reporter.Publish(progress.Event{
			ID:     runID,
			Header: searchHeader,
			Name:   want.DisplayName(),
			Value:  i,
			Count:  len(wants),
		})

		artifact, ok := o.acquireWant(ctx, active, query, want)
		if !ok {
			continue
		}

		subtitlePath, err := materialize(mediaPath, want, artifact.Content)
		if err != nil {
			logger.Warn("materialization failed",
				logging.String(logging.FieldLanguage, want.Tag()),
				logging.String(logging.FieldProvider, artifact.Candidate.Provider),
				logging.Error(err),
			)
			continue
		}

		satisfied[i] = true
		result := Result{
			Provider: artifact.Candidate.Provider,
			Want:     want,
			Path:     subtitlePath,
			Message:  fmt.Sprintf("%s subtitle from %s", want.DisplayName(), artifact.Candidate.Provider),
		}
		results = append(results, result)
		o.recordSuccess(ctx, item, result, remainingWants(wants, satisfied))
	}

	logger.Info("acquisition run finished",
		logging.Int("acquired", len(results)),
		logging.Int("wants", len(wants)),
	)
	return results, nil
}

func (o *Orchestrator) fallbackWindow(providerName string) time.Duration {
	if d, ok := o.windows[providerName]; ok && d > 0 {
		return d
	}
	return defaultThrottleWindow
}

func remainingWants(wants []language.Want, satisfied []bool) []language.Want {
	remaining := make([]language.Want, 0, len(wants))
	for i, want := range wants {
		if !satisfied[i] {
			remaining = append(remaining, want)
		}
	}
	return remaining
}

func displayTitle(item *library.Item) string {
	if item.Year > 0 {
		return fmt.Sprintf("%s (%d)", item.Title, item.Year)
	}
	return item.Title
}
