package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"nhlstats/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public NHL stats API
const DefaultBaseURL = "https://statsapi.web.nhl.com/api/v1"

var (
	// ErrTransport wraps network and body read failures
	ErrTransport = errors.New("transport failure")

	// ErrStatus wraps non-200 responses
	ErrStatus = errors.New("unexpected status")
)

// Client is the NHL stats API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	pacer      Pacer
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithPacer sets the delay policy applied before each request
func WithPacer(p Pacer) Option {
	return func(c *Client) {
		if p != nil {
			c.pacer = p
		}
	}
}

// WithRetries sets the retry count and base backoff for retryable failures
func WithRetries(maxRetries int, retryDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = retryDelay
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new NHL stats API client
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		pacer:      NoDelay{},
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch performs a GET for the request with pacing, retry and backoff
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	url := req.URL(c.baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := c.do(ctx, req.Endpoint, url, attempt)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch status {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("%w: API returned retryable status %d: %s", ErrStatus, status, truncate(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		default:
			return nil, fmt.Errorf("%w: API returned status %d: %s", ErrStatus, status, truncate(body))
		}
	}

	return nil, lastErr
}

// do issues a single attempt and always closes the body
func (c *Client) do(ctx context.Context, endpoint, url string, attempt int) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "nhlstats-ingestion/1.0")

	log.Debug().
		Str("url", url).
		Int("attempt", attempt+1).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, 0, fmt.Errorf("%w: API request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request complete")

	return body, resp.StatusCode, nil
}

// fetchJSON fetches and decodes the response into out
func (c *Client) fetchJSON(ctx context.Context, req Request, out interface{}) error {
	body, err := c.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", req.Endpoint, err)
	}
	return nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
