// Package httpx provides the HTTP client used for feed fetches, with
// per-host rate limiting and a circuit breaker in front of the transport.
package httpx

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests. Default: 30 seconds.
	Timeout time.Duration
	// UserAgent is sent with every request when non-empty.
	UserAgent string
	// RequestsPerSecond is the per-host rate limit. 0 disables limiting.
	RequestsPerSecond float64
	// Breaker configures the per-host circuit breaker.
	Breaker BreakerConfig
}

// DefaultConfig returns sensible defaults for feed fetching.
func DefaultConfig() Config {
	return Config{
		Timeout:           defaultTimeout,
		RequestsPerSecond: 10,
	}
}

// Client wraps an http.Client with rate limiting and circuit breaking.
// Server errors and 429 responses count as breaker failures.
type Client struct {
	base      *http.Client
	limiter   *RateLimiter
	breaker   *Breaker
	userAgent string
}

// New creates a client from cfg.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:      &http.Client{Timeout: timeout},
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
		breaker:   NewBreaker(cfg.Breaker),
		userAgent: cfg.UserAgent,
	}
}

// NewWithHTTPClient creates a client around an existing http.Client. Tests
// use this to inject a mock transport.
func NewWithHTTPClient(base *http.Client, cfg Config) *Client {
	return &Client{
		base:      base,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
		breaker:   NewBreaker(cfg.Breaker),
		userAgent: cfg.UserAgent,
	}
}

// Do executes the request through the rate limiter and circuit breaker.
// The caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	if err := c.breaker.Allow(host); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(req.Context(), host); err != nil {
		return nil, err
	}

	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		c.breaker.RecordFailure(host)
		return nil, err
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		c.breaker.RecordFailure(host)
	} else {
		c.breaker.RecordSuccess(host)
	}
	return resp, nil
}
