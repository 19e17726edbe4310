// Package opensubtitles implements the direct subtitle provider backed by
// the OpenSubtitles REST API.
package opensubtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"substation/internal/config"
	"substation/internal/language"
	"substation/internal/logging"
	"substation/internal/provider"
	"substation/internal/services"
)

// Name is the registry name of the direct provider.
const Name = "opensubtitles"

// Provider adapts the REST client to the provider interface.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// NewProvider validates the configured credentials and builds the provider.
func NewProvider(cfg config.OpenSubtitles, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	client, err := New(Config{
		APIKey:          cfg.APIKey,
		UserAgent:       cfg.UserAgent,
		UserToken:       cfg.UserToken,
		BaseURL:         cfg.BaseURL,
		RequestInterval: time.Duration(cfg.RequestInterval) * time.Second,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "provider", Name, "invalid configuration", err)
	}
	return &Provider{
		client: client,
		logger: logger.With(logging.String(logging.FieldProvider, Name)),
	}, nil
}

// Name identifies the provider in the registry and in history rows.
func (p *Provider) Name() string { return Name }

// Search queries the remote API for subtitles in the wanted language.
func (p *Provider) Search(ctx context.Context, query provider.MediaQuery, want language.Want) ([]provider.Candidate, error) {
	req := SearchRequest{
		Query:     query.Title,
		Languages: []string{language.Normalize(want.Code)},
	}
	if query.Year > 0 {
		req.Year = strconv.Itoa(query.Year)
	}
	if query.Kind != "" {
		req.MediaType = string(query.Kind)
	}

	resp, err := p.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates := make([]provider.Candidate, 0, len(resp.Subtitles))
	for _, sub := range resp.Subtitles {
		candidates = append(candidates, provider.Candidate{
			Provider:        Name,
			Language:        sub.Language,
			HearingImpaired: sub.HearingImpaired,
			Forced:          sub.Forced,
			ID:              strconv.FormatInt(sub.FileID, 10),
			Release:         sub.Release,
		})
	}

	p.logger.Debug("search complete",
		logging.String("title", query.Title),
		logging.String(logging.FieldLanguage, want.Tag()),
		logging.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// Fetch downloads the chosen candidate synchronously.
func (p *Provider) Fetch(ctx context.Context, candidate provider.Candidate) (*provider.Artifact, error) {
	fileID, err := strconv.ParseInt(candidate.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse candidate id %q: %w", candidate.ID, err)
	}

	result, err := p.client.Download(ctx, fileID)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("subtitle downloaded",
		logging.String("file_name", result.FileName),
		logging.Int("bytes", len(result.Data)),
	)
	return &provider.Artifact{Content: result.Data, Candidate: candidate}, nil
}
