package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/yeg-events/internal/logger"
)

const (
	UserAgent         = "yeg-events/1.0 (github.com/pfrederiksen/yeg-events)"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
}

// Client performs GET requests with a fixed User-Agent and retries
// transient failures with exponential backoff.
type Client struct {
	httpClient      *http.Client
	userAgent       string
	maxRetries      uint64
	initialInterval time.Duration
}

// NewClient creates a Client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:       cfg.UserAgent,
		maxRetries:      uint64(cfg.MaxRetries),
		initialInterval: 500 * time.Millisecond,
	}
}

// Get fetches rawURL with optional query params and headers and returns the body.
// 4xx responses are not retried.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		logger.Debug("GET", logger.Fields{"url": reqURL, "attempt": attempt})

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("fetching %s: %w", reqURL, err))
			}
			return fmt.Errorf("fetching %s: %w", reqURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{URL: reqURL, StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		return nil, err
	}

	return body, nil
}
