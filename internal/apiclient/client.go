// Package apiclient performs calls to the TravelEase API, attaching the
// session token as a bearer credential when one is stored.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	bearerPrefix    = "Bearer "
	requestIDHeader = "X-Request-ID"
)

// TokenSource yields the current session token, if any
type TokenSource interface {
	Token() (string, bool)
}

// Client represents an HTTP client for the TravelEase API.
// It never retries, caches or rate-limits; failures are returned unchanged.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
	timeout    time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets an overall per-request timeout. Zero keeps the
// transport's defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

// New creates a new API client. tokens may be nil for an always-anonymous
// client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request to path. in is marshalled as the body when non-nil;
// a 2xx response body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	authenticated := false
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", bearerPrefix+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Msg("API request failed")
		return &NetworkError{Op: "send request", URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Bool("authenticated", authenticated).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read response", URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPStatusError{Code: resp.StatusCode, Body: respBody}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &NetworkError{Op: "decode response", URL: url, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Op: "decode response", URL: url, Err: err}
	}
	return nil
}
