// Package topex is the adapter for the TOP-EX shipping aggregator API.
// It covers authentication, the city directory and tariff calculation.
package topex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/retry"
)

// ProviderName is the unique identifier for the TOP-EX provider.
const ProviderName = "topex"

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://lk.top-ex.ru/api"

const maxErrorBody = 512

// ClientConfig holds transport settings.
type ClientConfig struct {
	// BaseURL is the API root, without a trailing slash
	BaseURL string

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// Retry controls how transient failures are retried
	Retry retry.Config
}

// Client performs JSON GET requests against the provider with retries.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.Config
	log     zerolog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClientLogger sets the logger used for retry diagnostics.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a transport client.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 150 * time.Second
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts <= 0 {
		retryCfg = retry.TransportConfig
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		retry:   retryCfg,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// httpStatusError is a non-2xx answer from the provider.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// isUnauthorized reports whether err carries a 401 or 403 answer.
func isUnauthorized(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden
	}
	return false
}

// isTransient reports whether a failed attempt is worth repeating.
func isTransient(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// getJSON sends GET {base}{path}?{rawQuery} and decodes the body into out.
// The query is passed pre-encoded so callers control how the token is embedded.
// Any failure is returned as a ProviderError wrapping domain.ErrTransport.
func (c *Client) getJSON(ctx context.Context, op, path, rawQuery string, out any) error {
	return c.getJSONGated(ctx, op, path, rawQuery, out, nil)
}

// getJSONGated is getJSON with a gate taken before every attempt, retries
// included. A gate error ends the call without further attempts.
func (c *Client) getJSONGated(ctx context.Context, op, path, rawQuery string, out any, gate func(context.Context) error) error {
	endpoint := c.baseURL + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	cfg := c.retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		c.log.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("Retrying provider request")
	})

	body, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		if gate != nil {
			if err := gate(ctx); err != nil {
				return nil, retry.NewPermanent(fmt.Errorf("rate gate: %w", err))
			}
		}
		b, err := c.do(ctx, endpoint)
		if err != nil && !isTransient(err) {
			return nil, retry.NewPermanent(err)
		}
		return b, err
	}, cfg)
	if err != nil {
		return domain.NewProviderError(ProviderName, op, fmt.Errorf("%w: %w", domain.ErrTransport, err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewProviderError(ProviderName, op, fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &httpStatusError{Code: resp.StatusCode, Body: text}
	}
	return body, nil
}
