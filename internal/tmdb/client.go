// Package tmdb is a rate-limited client for the TMDB v3 API, covering the
// identifier namespaces that appear in catalog filter values.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/ratelimit"
)

const (
	// Rate limit: per identifier namespace, not global, so a burst of
	// person lookups cannot starve keyword lookups.
	defaultRPS   = 4.0
	defaultBurst = 8

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	defaultBaseURL = "https://api.themoviedb.org/3"
)

// Config holds client settings.
type Config struct {
	// APIKey is the TMDB v3 API key. Empty disables all calls.
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// RequestsPerSecond and Burst tune the per-namespace limiter.
	RequestsPerSecond float64
	Burst             int
}

// Client is a rate-limited TMDB API client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new TMDB client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest executes an HTTP request with per-namespace rate limiting.
func (c *Client) doRequest(ctx context.Context, ns domain.Namespace, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	// Wait for rate limit
	if err := c.limiter.Wait(ctx, string(ns)); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Reelist/1.0")

	// Execute
	c.logger.Debug("tmdb request",
		"namespace", ns,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Check status
	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest, http.StatusUnauthorized:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
