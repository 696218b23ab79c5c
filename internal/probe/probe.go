// Package probe checks whether the dashboard API is reachable and reports itself healthy.
//
// A probe is a single GET against the API's test endpoint. There is no retry, no
// backoff and no cached result; every call goes to the network.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/process-dashboard/internal/observability"
	"github.com/kjstillabower/process-dashboard/internal/reqctx"
)

// DefaultPath is the API endpoint probed when none is configured.
const DefaultPath = "/api/test"

// StatusOK is the only status value treated as healthy.
const StatusOK = "ok"

// maxBodyBytes caps how much of the response is decoded.
const maxBodyBytes = 1 << 20

// Prober reports API liveness.
type Prober interface {
	// Probe returns nil when the API answered {"status":"ok"}, or a *ProbeError.
	Probe(ctx context.Context) error
	// CheckAPIHealth is Probe collapsed to a bool; failures are logged, never returned.
	CheckAPIHealth(ctx context.Context) bool
}

var (
	ErrNetwork          = errors.New("api unreachable")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrDecode           = errors.New("decode response")
	ErrStatusMismatch   = errors.New("api status not ok")
)

// ProbeError describes one failed probe.
type ProbeError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *ProbeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

type testResponse struct {
	Status *string `json:"status"`
}

// Client probes one API base URL.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	token    string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithCheckToken sends token in reqctx.HealthCheckHeader so the target can exempt
// these requests from rate limiting.
func WithCheckToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// NewClient returns a Client probing baseURL joined with path (DefaultPath when empty).
func NewClient(baseURL, path string, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: missing host", baseURL)
	}
	if path == "" {
		path = DefaultPath
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid probe path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint: base.ResolveReference(ref).String(),
		client:   &http.Client{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the absolute URL that is probed.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Probe sends one GET to the test endpoint and returns nil or a *ProbeError.
func (c *Client) Probe(ctx context.Context) error {
	start := time.Now()
	err := c.call(ctx)
	result := StatusOK
	if err != nil {
		result = string(CategorizeError(err))
	}
	observability.RecordProbe(result, time.Since(start).Seconds())
	return err
}

// CheckAPIHealth reports whether Probe succeeded, logging the failure at error level.
func (c *Client) CheckAPIHealth(ctx context.Context) bool {
	err := c.Probe(ctx)
	if err == nil {
		return true
	}
	reqctx.Logger(ctx, c.logger).Error("API unavailable",
		zap.String("endpoint", c.endpoint),
		zap.String("category", string(CategorizeError(err))),
		zap.Error(err))
	return false
}

func (c *Client) call(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return c.fail(0, fmt.Errorf("%w: build request: %v", ErrNetwork, err))
	}
	req.Header.Set("Accept", "application/json")
	if corrID := reqctx.CorrelationID(ctx); corrID != "" {
		req.Header.Set(reqctx.CorrelationIDHeader, corrID)
	}
	if c.token != "" {
		req.Header.Set(reqctx.HealthCheckHeader, c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(0, fmt.Errorf("%w: %w", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return c.fail(resp.StatusCode, ErrUnexpectedStatus)
	}

	var body testResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return c.fail(resp.StatusCode, fmt.Errorf("%w: %w", ErrDecode, err))
	}
	// the body must be exactly one JSON value
	if _, err := dec.Token(); err != io.EOF {
		return c.fail(resp.StatusCode, fmt.Errorf("%w: trailing data after JSON object", ErrDecode))
	}
	if body.Status == nil {
		return c.fail(resp.StatusCode, fmt.Errorf("%w: status field missing", ErrStatusMismatch))
	}
	if *body.Status != StatusOK {
		return c.fail(resp.StatusCode, fmt.Errorf("%w: got %q", ErrStatusMismatch, *body.Status))
	}
	return nil
}

func (c *Client) fail(statusCode int, err error) *ProbeError {
	return &ProbeError{URL: c.endpoint, StatusCode: statusCode, Err: err}
}
