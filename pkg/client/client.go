// Package client fetches pages from an upstream JSON API with retries and
// an optional Redis response cache, and walks them as paged sequences.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pagedseq/pkg/cache"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the client configuration.
type Config struct {
	// Redis enables the response cache. Optional.
	Redis *redis.Client

	// BaseURL is prefixed to every endpoint (e.g. "https://api.example.com").
	BaseURL string

	// UserAgent is sent with every request. Required.
	UserAgent string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Paging query parameters. PageSize 0 leaves the size to the upstream;
	// CursorParam empty disables continuation tokens.
	PageParam     string
	PageSizeParam string
	CursorParam   string
	PageSize      int
}

// DefaultConfig returns a configuration with conservative defaults.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      userAgent,
		Timeout:        30 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		PageParam:      "page",
		PageSizeParam:  "pageSize",
		CursorParam:    "continuationToken",
	}
}

// Client is an upstream JSON API client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// New validates cfg and creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, errors.New("user-agent is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute http(s), got %q", cfg.BaseURL)
	}
	if cfg.PageParam == "" {
		return nil, errors.New("page parameter is required")
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("page size must be >= 0 (got %d)", cfg.PageSize)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     log.With().Str("component", "pagedseq-client").Logger(),
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}
	return c, nil
}

func (c *Client) retryConfig() RetryConfig {
	rc := DefaultRetryConfig()
	rc.MaxAttempts = c.config.MaxRetries + 1
	if c.config.InitialBackoff > 0 {
		rc.InitialBackoff = c.config.InitialBackoff
	}
	if c.config.MaxBackoff > 0 {
		rc.MaxBackoff = c.config.MaxBackoff
	}
	return rc
}

// Do performs req with caching and retries.
//
// A fresh cached response is returned without contacting the upstream; a
// stale one with an ETag or Last-Modified value is revalidated and served
// again on 304. Successful 200 responses are cached. Responses with status
// 400 and above are returned as *HTTPError; 5xx, 429 and network errors are
// retried with exponential backoff.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	var key cache.Key
	var cached *cache.Entry
	if c.cache != nil && req.Method == http.MethodGet {
		key = cache.KeyFor(req.URL)
		entry, err := c.cache.Get(ctx, key)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil && !entry.IsExpired() {
			requestsTotal.WithLabelValues("cache").Inc()
			return cache.EntryToResponse(entry), nil
		}
		if cache.CanRevalidate(entry) {
			cached = entry
			cache.AddConditionalHeaders(req, cached)
			cache.ConditionalRequests.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cached.ETag).
				Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing upstream request")

	var resp *http.Response
	err := retryWithBackoff(ctx, c.retryConfig(), c.logger, func(attempt int) error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("request %s: %w", endpoint, ctx.Err())
			}
			requestsTotal.WithLabelValues("network_error").Inc()
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("HTTP request failed")
			return &HTTPError{ErrorClass: ErrorClassNetwork, Err: err}
		}

		requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode < 400 {
			return nil
		}

		httpErr := responseError(resp)
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(httpErr.ErrorClass)).
			Msg("Upstream request error")
		resp = nil
		return httpErr
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		resp.Body.Close()
		cache.NotModified.Inc()
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")

		if err := c.cache.UpdateTTL(ctx, key, cache.ExpiresAt(resp.Header, time.Now())); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
		}
		return cache.EntryToResponse(cached), nil
	}

	if c.cache != nil && req.Method == http.MethodGet && resp.StatusCode == http.StatusOK {
		c.store(ctx, key, resp)
	}

	return resp, nil
}

func (c *Client) store(ctx context.Context, key cache.Key, resp *http.Response) {
	entry, err := cache.ResponseToEntry(resp)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		return
	}
	if entry.TTL() <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("key", key.String()).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// responseError drains and closes resp and describes it as an *HTTPError.
func responseError(resp *http.Response) *HTTPError {
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}

	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		ErrorClass: classify(resp.StatusCode, nil),
		Message:    msg,
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			httpErr.RetryAfter = time.Duration(secs) * time.Second
		} else if t, err := http.ParseTime(ra); err == nil {
			httpErr.RetryAfter = max(time.Until(t), 0)
		}
	}
	return httpErr
}

// Get performs a GET request to endpoint, resolved against BaseURL.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	u, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := u.Query()
		for name, values := range query {
			q[name] = values
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(req)
}

// FetchPage requests one page of endpoint. page is 1-based; the continuation
// token of prev, if any, is forwarded through CursorParam.
func (c *Client) FetchPage(ctx context.Context, endpoint string, page int, prev pagination.Pagination) (*http.Response, error) {
	query := url.Values{}
	query.Set(c.config.PageParam, strconv.Itoa(page))
	if c.config.PageSize > 0 && c.config.PageSizeParam != "" {
		query.Set(c.config.PageSizeParam, strconv.Itoa(c.config.PageSize))
	}
	if c.config.CursorParam != "" && prev.ContinuationToken != nil && *prev.ContinuationToken != "" {
		query.Set(c.config.CursorParam, *prev.ContinuationToken)
	}
	return c.Get(ctx, endpoint, query)
}

func (c *Client) resolve(endpoint string) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if ref.IsAbs() {
		return nil, fmt.Errorf("endpoint %q must be relative to the base url", endpoint)
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return &u, nil
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
