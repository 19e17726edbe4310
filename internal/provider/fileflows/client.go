package fileflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPDoer describes the HTTP client used by the FileFlows client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the FileFlows server HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    HTTPDoer
}

// NewClient builds a client for the given server URL.
func NewClient(baseURL, apiKey string, doer HTTPDoer) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("fileflows: server url is required")
	}
	if doer == nil {
		doer = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: trimmed,
		apiKey:  strings.TrimSpace(apiKey),
		http:    doer,
	}, nil
}

// Ping reports whether the server answers its status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return fmt.Errorf("fileflows: build ping request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fileflows: server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fileflows: status endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Submit queues a processing job for the given file and returns the job UID.
func (c *Client) Submit(ctx context.Context, filePath, workflowID string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"filePath":   filePath,
		"workflowId": workflowID,
	})
	if err != nil {
		return "", fmt.Errorf("fileflows: encode submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/flow/process", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("fileflows: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fileflows: submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("fileflows: submit failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("fileflows: decode submit response: %w", err)
	}
	if decoded.UID == "" {
		return "", errors.New("fileflows: submit response missing uid")
	}
	return decoded.UID, nil
}

// JobStatus values reported by the server.
type JobStatus string

const (
	JobProcessing JobStatus = "Processing"
	JobCompleted  JobStatus = "Completed"
	JobFailed     JobStatus = "Failed"
	JobCancelled  JobStatus = "Cancelled"
)

// Status fetches the current server-side status of a job.
func (c *Client) Status(ctx context.Context, uid string) (JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/flow/status/"+uid, nil)
	if err != nil {
		return "", fmt.Errorf("fileflows: build status request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fileflows: status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("fileflows: status failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("fileflows: decode status response: %w", err)
	}
	return JobStatus(decoded.Status), nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
