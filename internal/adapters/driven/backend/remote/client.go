// Package remote implements the search ports against a card image server
// over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/logger"
)

const (
	rateLimitDelay = 100 * time.Millisecond // 10 req/sec
	rateLimitBurst = 4
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
	userAgent      = "cardfill/1.0"
)

// Ensure Client implements the search ports.
var (
	_ driven.SearchBackend  = (*Client)(nil)
	_ driven.SourceRegistry = (*Client)(nil)
	_ driven.DFCSource      = (*Client)(nil)
)

// Client talks to a card image server. Requests are paced by a shared rate
// limiter and retried with exponential backoff on network errors, 429 and 5xx.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	initialBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit replaces the default request pacing.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Every(every), burst) }
}

// WithInitialBackoff sets the first retry delay; later retries double it.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: requestTimeout},
		rateLimiter:    rate.NewLimiter(rate.Every(rateLimitDelay), rateLimitBurst),
		initialBackoff: initialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query       string          `json:"query"`
	CardType    domain.CardType `json:"card_type"`
	Source      string          `json:"source"`
	FuzzySearch bool            `json:"fuzzy_search"`
}

type searchResponse struct {
	Results []domain.CardDocument `json:"results"`
}

type sourcesResponse struct {
	Results []domain.SourceDocument `json:"results"`
}

type dfcPairsResponse struct {
	DFCPairs domain.DFCPairs `json:"dfc_pairs"`
}

// Search returns one source's matches for a query.
func (c *Client) Search(ctx context.Context, req driven.SearchRequest) ([]domain.CardDocument, error) {
	body, err := json.Marshal(searchRequest{
		Query:       req.Query,
		CardType:    req.CardType,
		Source:      req.Source,
		FuzzySearch: req.FuzzySearch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	var resp searchResponse
	if err := c.doRequest(ctx, http.MethodPost, "/2/sourceSearch/", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to search %s for %q: %w", req.Source, req.Query, err)
	}
	return resp.Results, nil
}

// ListSources returns the server's sources in its order.
func (c *Client) ListSources(ctx context.Context) ([]domain.SourceDocument, error) {
	var resp sourcesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/2/sources/", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return resp.Results, nil
}

// DFCPairs returns the server's double-faced card table.
func (c *Client) DFCPairs(ctx context.Context) (domain.DFCPairs, error) {
	var resp dfcPairsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/2/DFCPairs/", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get DFC pairs: %w", err)
	}
	if resp.DFCPairs == nil {
		resp.DFCPairs = domain.DFCPairs{}
	}
	return resp.DFCPairs, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
// Every failure wraps domain.ErrBackend except context cancellation.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		retry, wait, err := c.attempt(ctx, method, path, body, result)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		if !retry {
			return err
		}
		if wait > backoff {
			backoff = wait
		}
		logger.Debug("Retrying %s %s after attempt %d: %v", method, path, attempt+1, err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs one request. It reports whether the failure is retryable
// and any server-requested delay.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, result any) (bool, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, 0, fmt.Errorf("%w: failed to create request: %v", domain.ErrBackend, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, 0, fmt.Errorf("%w: HTTP request failed: %v", domain.ErrBackend, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, 0, fmt.Errorf("%w: failed to parse JSON response: %v", domain.ErrBackend, err)
		}
		return false, 0, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return true, retryAfter(resp.Header.Get("Retry-After")),
			fmt.Errorf("%w: rate limited (HTTP 429)", domain.ErrBackend)

	case resp.StatusCode >= http.StatusInternalServerError:
		return true, 0, fmt.Errorf("%w: server error (HTTP %d)", domain.ErrBackend, resp.StatusCode)

	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, 0, fmt.Errorf("%w: request failed with status %d: %s",
			domain.ErrBackend, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
