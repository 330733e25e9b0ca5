package pairing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CodeFetcher fetches pairing codes. It is implemented by *Client and can be
// faked in tests.
type CodeFetcher interface {
	FetchCode(ctx context.Context, oldCode string) (string, error)
}

// Ensure Client implements CodeFetcher at compile time.
var _ CodeFetcher = (*Client)(nil)

// ErrEmptyCode is returned when the endpoint answers without data.code.
var ErrEmptyCode = errors.New("response missing data.code")

// Client talks to the pairing-code HTTP endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

const (
	defaultUserAgent      = "pairscreen/0.1"
	defaultRequestTimeout = 10 * time.Second
	requestIDHeader       = "X-Request-ID"
)

// Option tweaks a Client at construction.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the absolute endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:  u,
		http:      &http.Client{Timeout: defaultRequestTimeout},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchCode requests a fresh pairing code. oldCode is sent as the oldCode
// query parameter even when empty.
func (c *Client) FetchCode(ctx context.Context, oldCode string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}

	reqURL := *c.endpoint
	values := reqURL.Query()
	values.Set("oldCode", strings.TrimSpace(oldCode))
	reqURL.RawQuery = values.Encode()

	var payload CodeResponse
	if err := c.doURL(ctx, http.MethodGet, &reqURL, &payload); err != nil {
		return "", err
	}
	code := strings.TrimSpace(payload.Data.Code)
	if code == "" {
		return "", ErrEmptyCode
	}
	return code, nil
}

func (c *Client) doURL(ctx context.Context, method string, reqURL *url.URL, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	log := c.log.With().Str("request_id", requestID).Str("url", reqURL.Redacted()).Logger()
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("pair code request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("pair code response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("api %s returned status %d", reqURL.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("pairing endpoint is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse pairing endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse pairing endpoint %q: scheme must be http or https", endpoint)
	}
	u.Fragment = ""
	return u, nil
}
