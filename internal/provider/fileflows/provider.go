// Package fileflows implements the job-based subtitle provider driven by a
// FileFlows server. Searching fabricates a synthetic candidate when the
// server is reachable and the workflow covers the wanted language; fetching
// submits a processing job and waits for it, with the subtitle written by
// the workflow next to the media file.
package fileflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"substation/internal/config"
	"substation/internal/language"
	"substation/internal/logging"
	"substation/internal/provider"
	"substation/internal/services"
)

// Name is the registry name of the job-based provider.
const Name = "fileflows"

// Provider adapts a FileFlows server to the provider interface.
type Provider struct {
	client    *Client
	workflow  string
	timeout   time.Duration
	languages map[string]struct{}
	logger    *slog.Logger

	newPoller func(status StatusFunc) *Poller
}

// NewProvider validates the workflow configuration and builds the provider.
func NewProvider(cfg config.FileFlows, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	client, err := NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "provider", Name, "invalid configuration", err)
	}
	if cfg.WorkflowID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "provider", Name, "workflow id is required", nil)
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "provider", Name, "timeout must be positive", nil)
	}

	languages := make(map[string]struct{}, len(cfg.Languages))
	for _, code := range cfg.Languages {
		languages[language.Normalize(code)] = struct{}{}
	}
	if len(languages) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "provider", Name, "at least one workflow language is required", nil)
	}

	p := &Provider{
		client:    client,
		workflow:  cfg.WorkflowID,
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		languages: languages,
		logger:    logger.With(logging.String(logging.FieldProvider, Name)),
	}
	p.newPoller = func(status StatusFunc) *Poller {
		return NewPoller(status, p.timeout, p.logger)
	}
	return p, nil
}

// Name identifies the provider in the registry and in history rows.
func (p *Provider) Name() string { return Name }

// Search offers one synthetic candidate when the server is reachable and
// the workflow produces the wanted language. The candidate carries the
// media path the job will be submitted for.
func (p *Provider) Search(ctx context.Context, query provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
	if _, ok := p.languages[language.Normalize(want.Code)]; !ok {
		p.logger.Debug("language not covered by workflow", logging.String(logging.FieldLanguage, want.Tag()))
		return nil, nil
	}

	if err := p.client.Ping(ctx); err != nil {
		return nil, err
	}

	return []provider.Candidate{{
		Provider:        Name,
		Language:        language.Normalize(want.Code),
		HearingImpaired: want.HearingImpaired,
		Forced:          want.Forced,
		ID:              query.Path,
		Release:         fmt.Sprintf("FileFlows workflow %s", p.workflow),
	}}, nil
}

// Fetch submits the processing job for the candidate's media path and waits
// for it to finish. The returned artifact is empty: the workflow writes the
// subtitle next to the media file itself.
func (p *Provider) Fetch(ctx context.Context, candidate provider.Candidate) (*provider.Artifact, error) {
	uid, err := p.client.Submit(ctx, candidate.ID, p.workflow)
	if err != nil {
		return nil, err
	}

	p.logger.Info("job submitted",
		logging.String("uid", uid),
		logging.String("path", candidate.ID),
		logging.String("workflow", p.workflow),
	)

	poller := p.newPoller(func(ctx context.Context) (JobStatus, error) {
		return p.client.Status(ctx, uid)
	})
	state, err := poller.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", uid, err)
	}

	p.logger.Info("job finished",
		logging.String("uid", uid),
		logging.String("state", string(state)),
	)
	return &provider.Artifact{Candidate: candidate}, nil
}
