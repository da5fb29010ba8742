// Package client is a Go SDK for the namedgraph REST API.
package client

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

	"github.com/sethvargo/go-retry"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
	defaultRetries = 2
	retryBase      = 100 * time.Millisecond
	maxErrorBody   = 64 << 10
)

// Client talks to one namedgraph server. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retries uint64

	Graphs    *GraphService
	Edges     *EdgeService
	Documents *DocumentService
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as a Bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets how many times a read is retried after a transient
// failure (connection error, 429, 502, 503 or 504). Writes are never retried.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// New returns a client for baseURL, e.g. "http://localhost:3030".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		retries: defaultRetries,
	}
	for _, o := range opts {
		o(c)
	}

	c.Graphs = &GraphService{c: c}
	c.Edges = &EdgeService{c: c}
	c.Documents = &DocumentService{c: c}

	return c
}

// Health returns the liveness report.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Ready reports whether the server can reach its storage backend. A server
// that is up but not ready returns an *APIError with status 503.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	var resp ReadyResponse
	if err := c.send(ctx, http.MethodGet, "/ready", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// call performs one API request. GETs are retried with exponential backoff
// on transient failures.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if method != http.MethodGet || c.retries == 0 {
		return c.send(ctx, method, path, body, out)
	}

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(retryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.send(ctx, method, path, body, out)
		if transient(err) {
			return retry.RetryableError(err)
		}

		return err
	})
}

// send performs exactly one HTTP round trip and decodes the JSON reply
// into out. Error replies become *APIError.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// transportError marks a failure before any HTTP status was received.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// transient reports whether err is worth retrying.
func transient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te *transportError
	if errors.As(err, &te) {
		return true
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
