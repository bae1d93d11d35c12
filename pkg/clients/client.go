// Package clients implements the collaborator contracts against external
// HTTP services: a content-generation service, a render farm, a sheet-backed
// item source and a video host.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeoutSeconds = 30

// ErrServerError is returned when a service keeps answering 5xx across all
// retry attempts.
var ErrServerError = errors.New("server error during HTTP request")

// RetryConfig defines retry behavior for service calls. Only 5xx responses
// and transport failures are retried.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Client is a JSON-over-HTTP client shared by the collaborator
// implementations.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   RetryConfig
	logger  *slog.Logger
}

// NewClient creates a client for one service base URL. The API key, when
// set, is sent as a bearer token.
func NewClient(baseURL, apiKey string, retry RetryConfig, logger *slog.Logger) *Client {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		retry:   retry,
		logger:  logger.With("module", "clients"),
	}
}

// postJSON sends the request body and decodes the JSON response into out,
// retrying transport failures and 5xx responses.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, encoded, out)
}

// getJSON fetches path and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var (
		lastErr error
		resp    *http.Response
	)

	for attempt := 1; attempt <= c.retry.Attempts; attempt++ {
		if attempt > 1 {
			c.logger.InfoContext(ctx, fmt.Sprintf("Retry attempt %d/%d", attempt, c.retry.Attempts),
				"path", path)
			time.Sleep(c.retry.Delay)
		}

		req, err := c.buildRequest(ctx, method, path, body)
		if err != nil {
			return err
		}

		resp, err = c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)

			continue
		}

		if resp.StatusCode >= 500 && attempt < c.retry.Attempts {
			if err := resp.Body.Close(); err != nil {
				c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
			}

			lastErr = fmt.Errorf("server error (status %d), retrying: %w", resp.StatusCode, ErrServerError)

			continue
		}

		break
	}

	if resp == nil {
		return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode,
			strings.TrimSpace(string(payload)))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return req, nil
}
