package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"substation/internal/provider"
)

const (
	defaultBaseURL      = "https://api.opensubtitles.com/api/v1"
	defaultUserAgent    = "Substation/1.0"
	defaultHTTPTimeout  = 45 * time.Second
	defaultPaceInterval = time.Second

	maxErrorBody = 4096
)

// Config collects the knobs for talking to OpenSubtitles.
type Config struct {
	APIKey          string
	UserAgent       string
	UserToken       string
	BaseURL         string
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

// Client wraps the OpenSubtitles REST API. Every API call flows through a
// shared limiter so the daemon stays inside the per-second quota even when
// several wants resolve back to back.
type Client struct {
	apiKey    string
	userAgent string
	userToken string
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
}

// New builds a ready-to-use Client, filling in API defaults for
// anything cfg leaves blank.
func New(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("opensubtitles: missing api key")
	}

	c := &Client{
		apiKey:    key,
		userAgent: defaultUserAgent,
		userToken: strings.TrimSpace(cfg.UserToken),
		http:      cfg.HTTPClient,
	}
	if agent := strings.TrimSpace(cfg.UserAgent); agent != "" {
		c.userAgent = agent
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: bad base url: %w", err)
	}
	c.baseURL = parsed

	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}

	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = defaultPaceInterval
	}
	c.limiter = rate.NewLimiter(rate.Every(interval), 1)

	return c, nil
}

// SearchRequest narrows a subtitle query.
type SearchRequest struct {
	Query     string
	Year      string
	Languages []string
	MediaType string
}

// query renders the filters as API parameters. Results always come back
// ordered by download count so the first usable candidate wins.
func (r SearchRequest) query() url.Values {
	params := url.Values{}
	if r.Query != "" {
		params.Set("query", r.Query)
	}
	if len(r.Languages) > 0 {
		params.Set("languages", strings.Join(r.Languages, ","))
	}
	if r.Year != "" {
		params.Set("year", r.Year)
	}
	if r.MediaType != "" {
		params.Set("type", r.MediaType)
	}
	params.Set("order_by", "download_count")
	params.Set("order_direction", "desc")
	return params
}

// Subtitle is one downloadable candidate from a search.
type Subtitle struct {
	ID              string
	FileID          int64
	Language        string
	Release         string
	HearingImpaired bool
	Forced          bool
	Downloads       int
}

// SearchResponse holds the flattened rows of one search call.
type SearchResponse struct {
	Subtitles []Subtitle
	Total     int
}

// DownloadResult carries the fetched subtitle bytes plus the
// metadata the download grant reported.
type DownloadResult struct {
	Data        []byte
	FileName    string
	Language    string
	DownloadURL string
}

// Search asks the API for candidates matching req, ordered by
// download count so the most trusted releases come first.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, errors.New("opensubtitles: nil client")
	}

	api := c.baseURL.JoinPath("subtitles")
	api.RawQuery = req.query().Encode()

	var payload searchPayload
	if err := c.doJSON(ctx, http.MethodGet, api, nil, &payload); err != nil {
		return SearchResponse{}, err
	}

	out := SearchResponse{
		Subtitles: make([]Subtitle, 0, len(payload.Data)),
		Total:     payload.Meta.TotalCount,
	}
	for _, row := range payload.Data {
		sub, ok := row.subtitle()
		if !ok {
			continue
		}
		out.Subtitles = append(out.Subtitles, sub)
	}
	return out, nil
}

// Download negotiates a download link for the subtitle file and fetches its
// contents. The link fetch itself skips the limiter; the negotiation call
// already spent the quota slot.
func (c *Client) Download(ctx context.Context, fileID int64) (DownloadResult, error) {
	if c == nil {
		return DownloadResult{}, errors.New("opensubtitles: nil client")
	}
	if fileID <= 0 {
		return DownloadResult{}, errors.New("opensubtitles: file id must be positive")
	}

	api := c.baseURL.JoinPath("download")
	var grant downloadGrant
	if err := c.doJSON(ctx, http.MethodPost, api, map[string]any{"file_id": fileID}, &grant); err != nil {
		return DownloadResult{}, err
	}
	if grant.Link == "" {
		return DownloadResult{}, errors.New("opensubtitles: grant reply has no link")
	}

	target, err := api.Parse(grant.Link)
	if err != nil {
		target, err = url.Parse(grant.Link)
		if err != nil {
			return DownloadResult{}, fmt.Errorf("opensubtitles: bad download link: %w", err)
		}
	}

	data, err := c.fetchPayload(ctx, target)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{
		Data:        data,
		FileName:    grant.FileName,
		Language:    grant.Language,
		DownloadURL: target.String(),
	}, nil
}

// doJSON performs one rate-limited API call and decodes the JSON reply into
// out. A non-nil body is marshalled and posted as JSON.
func (c *Client) doJSON(ctx context.Context, method string, endpoint *url.URL, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("opensubtitles: encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("opensubtitles: build %s request: %w", endpoint.Path, err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.userToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opensubtitles: %s %s: %w", method, endpoint.Path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("opensubtitles: decode %s reply: %w", endpoint.Path, err)
	}
	return nil
}

// fetchPayload retrieves the subtitle bytes from a granted link.
func (c *Client) fetchPayload(ctx context.Context, target *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build link request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: fetch subtitle payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("opensubtitles: subtitle download failed (%s): %s", resp.Status, errorBody(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: read subtitle data: %w", err)
	}
	return data, nil
}

// checkStatus maps rate-limit responses to ThrottledError and other 4xx/5xx
// responses to plain errors. 406 is OpenSubtitles' quota-exhausted reply.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusNotAcceptable:
		return &provider.ThrottledError{
			Provider:   Name,
			RetryAfter: retryWindow(resp.Header),
			Reason:     fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	case resp.StatusCode >= 400:
		return fmt.Errorf("opensubtitles: request failed (%s): %s", resp.Status, errorBody(resp))
	}
	return nil
}

func errorBody(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return strings.TrimSpace(string(raw))
}

// retryWindow extracts the server's retry window from rate-limit headers.
// Zero means the server gave none.
func retryWindow(header http.Header) time.Duration {
	if value := strings.TrimSpace(header.Get("Retry-After")); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(value); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	for _, key := range []string{"X-RateLimit-Reset", "Ratelimit-Reset"} {
		value := strings.TrimSpace(header.Get(key))
		if value == "" {
			continue
		}
		raw, err := strconv.ParseInt(value, 10, 64)
		if err != nil || raw <= 0 {
			continue
		}
		// Large values are epoch seconds, small ones a delta.
		if raw > 1_000_000_000 {
			if d := time.Until(time.Unix(raw, 0)); d > 0 {
				return d
			}
			continue
		}
		return time.Duration(raw) * time.Second
	}
	return 0
}

type searchPayload struct {
	Data []searchRow `json:"data"`
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
}

type searchRow struct {
	ID         string `json:"id"`
	Attributes struct {
		Language        string `json:"language"`
		Release         string `json:"release"`
		DownloadCount   int    `json:"download_count"`
		HearingImpaired bool   `json:"hearing_impaired"`
		Forced          bool   `json:"forced"`
		Files           []struct {
			FileID int64 `json:"file_id"`
		} `json:"files"`
	} `json:"attributes"`
}

// subtitle flattens an API row. Rows without a language tag or a usable
// file reference cannot be downloaded and report ok false.
func (r searchRow) subtitle() (Subtitle, bool) {
	attrs := r.Attributes
	if attrs.Language == "" || len(attrs.Files) == 0 || attrs.Files[0].FileID <= 0 {
		return Subtitle{}, false
	}
	return Subtitle{
		ID:              r.ID,
		FileID:          attrs.Files[0].FileID,
		Language:        attrs.Language,
		Release:         attrs.Release,
		HearingImpaired: attrs.HearingImpaired,
		Forced:          attrs.Forced,
		Downloads:       attrs.DownloadCount,
	}, true
}

type downloadGrant struct {
	Link     string `json:"link"`
	FileName string `json:"file_name"`
	Language string `json:"language"`
}
