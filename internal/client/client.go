// Package client implements the HTTP client for the PDF generation service.
//
// The client performs single blocking calls with no retry logic of its own;
// retry and polling policy belongs to the poller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pdfbench/internal/apperrors"
	"pdfbench/internal/config"
)

// RequestRecorder is an optional interface for recording request metrics.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64)
}

// Client talks to one PDF service instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics RequestRecorder
}

// New creates a client with standard transport settings.
func New(cfg *config.Config, metrics RequestRecorder) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		metrics: metrics,
		http: &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Health probes GET /health. Any response other than 200 is an error.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return apperrors.Transport("client.health", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed: HTTP %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Generate performs synchronous generation and returns the artifact bytes.
func (c *Client) Generate(ctx context.Context, sub Submission) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/generate", sub)
	if err != nil {
		return nil, apperrors.Transport("client.generate", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport("client.generate", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Generate(resp.StatusCode, body)
	}
	return body, nil
}

// Submit creates an asynchronous job. Only a 202 with a job_id is a success.
func (c *Client) Submit(ctx context.Context, sub Submission) (Handle, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/jobs", sub)
	if err != nil {
		return Handle{}, apperrors.Transport("client.submit", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Handle{}, apperrors.Transport("client.submit", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return Handle{}, apperrors.Submission(resp.StatusCode, body)
	}

	var accepted submitResponse
	if err := json.Unmarshal(body, &accepted); err != nil {
		return Handle{}, apperrors.Submission(resp.StatusCode, body)
	}
	if accepted.JobID == "" {
		return Handle{}, apperrors.Submission(resp.StatusCode, body)
	}

	return Handle{JobID: accepted.JobID, CreatedAt: time.Now()}, nil
}

// FetchStatus reads the current status of a job.
func (c *Client) FetchStatus(ctx context.Context, h Handle) (Status, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+h.JobID, nil)
	if err != nil {
		return Status{}, apperrors.Transport("client.fetchStatus", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, apperrors.Transport("client.fetchStatus", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Status{}, apperrors.StatusFetch(resp.StatusCode, body)
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return Status{}, apperrors.StatusFetch(resp.StatusCode, body)
	}
	if status.State == "" {
		return Status{}, apperrors.StatusFetch(resp.StatusCode, body)
	}
	return status, nil
}

// Download fetches the artifact of a completed job.
func (c *Client) Download(ctx context.Context, h Handle) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+h.JobID+"/download", nil)
	if err != nil {
		return nil, apperrors.Transport("client.download", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport("client.download", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Download(resp.StatusCode, body)
	}
	return body, nil
}

// do issues one request with the common headers and records its metrics.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		c.metrics.RecordRequest(ctx, method, path, statusCode, time.Since(start).Seconds())
	}
	return resp, err
}
