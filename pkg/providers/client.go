package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client is the shared HTTP plumbing for adapters. It provides connection
// pooling, context-aware requests, and JSON encode/decode helpers.
//
// Requests are single-attempt. Failures are mapped onto the gateway's error
// taxonomy (TransportError, BackendError) and surfaced to the caller; the
// gateway never retries on the caller's behalf.
type Client struct {
	http *http.Client
}

// ClientConfig controls the Client's connection pool and overall timeout.
type ClientConfig struct {
	// Timeout is the per-request ceiling. Callers may impose a tighter
	// deadline through the context. Zero means no client-level timeout.
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// DefaultClientConfig returns the standard pool settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             60 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewClient creates a Client with a pooled transport.
func NewClient(cfg ClientConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// Do performs a single HTTP request. A 2xx response is returned to the
// caller with its body open; any other outcome is an error:
//
//   - network failure, DNS failure, or context deadline -> *TransportError
//   - non-2xx status -> *BackendError carrying the status and body
//
// The provider name is only used for error attribution.
func (c *Client) Do(ctx context.Context, provider, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to provider",
		"provider", provider,
		"method", method,
		"url", url,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: provider, Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	return nil, &BackendError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    string(errorBody),
	}
}

// DoJSON performs a JSON request and decodes the response into respBody.
// A response that cannot be decoded is a *BackendError.
func (c *Client) DoJSON(ctx context.Context, provider, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.Do(ctx, provider, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{
			Provider: provider,
			Message:  "failed to read response body",
			Cause:    err,
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &BackendError{
				Provider: provider,
				Message:  "malformed response payload",
				Cause:    err,
			}
		}
	}

	return nil
}

// Close releases idle connections held by the pool.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
