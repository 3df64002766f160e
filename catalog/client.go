package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goCinema/internal/requestid"
)

const (
	DefaultBaseURL    = "https://api.themoviedb.org/3"
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 2048
	defaultTimeout    = 10 * time.Second
	// sharedLoadTimeout bounds a coalesced load, which no caller can cancel.
	sharedLoadTimeout = 30 * time.Second
	maxBodyBytes      = 8 << 20
)

// Hooks observe cache and network activity. Nil hooks are skipped.
type Hooks struct {
	OnCacheHit  func(path string)
	OnCacheMiss func(path string)
	OnFetch     func(path string, d time.Duration, err error)
}

// Config configures a [Client]. Zero values take the package defaults.
type Config struct {
	BaseURL          string
	APIKey           string
	TTL              time.Duration
	MaxEntries       int
	CoalesceRequests bool
	HTTPClient       *http.Client
	Clock            func() time.Time
	Logger           *slog.Logger
	Hooks            Hooks
}

// Client fetches catalog endpoints through the response cache.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	cache    *responseCache
	coalesce bool
	group    singleflight.Group
	logger   *slog.Logger
	hooks    Hooks
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("catalog api key must not be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.TTL < 0 {
		return nil, errors.New("catalog ttl must be >= 0")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries < 0 {
		return nil, errors.New("catalog max entries must be >= 0")
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cache, err := newResponseCache(cfg.MaxEntries, cfg.TTL, cfg.Clock)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     cfg.HTTPClient,
		cache:    cache,
		coalesce: cfg.CoalesceRequests,
		logger:   cfg.Logger,
		hooks:    cfg.Hooks,
	}, nil
}

// Fetch decodes the JSON response for path into out. A fresh cached body is
// served without a network call; otherwise the endpoint is requested and a
// successful body is cached under path.
//
// With CoalesceRequests, concurrent misses for one path share a single load.
// That load keeps the first caller's context values (request id) but not its
// cancellation, so cancelling one caller only returns ctx.Err() to that caller
// while the others still get the result.
func (c *Client) Fetch(ctx context.Context, path string, out any) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	if body, ok := c.cache.get(path); ok {
		if c.hooks.OnCacheHit != nil {
			c.hooks.OnCacheHit(path)
		}
		return decode(path, body, out)
	}
	if c.hooks.OnCacheMiss != nil {
		c.hooks.OnCacheMiss(path)
	}

	var (
		body []byte
		err  error
	)
	if c.coalesce {
		ch := c.group.DoChan(path, func() (any, error) {
			lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
			defer cancel()
			return c.load(lctx, path)
		})
		select {
		case res := <-ch:
			if res.Err == nil {
				body = res.Val.([]byte)
			}
			err = res.Err
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		body, err = c.load(ctx, path)
	}
	if err != nil {
		return err
	}
	return decode(path, body, out)
}

// Purge drops every cached response.
func (c *Client) Purge() { c.cache.purge() }

// Len returns the number of cached responses, fresh or stale.
func (c *Client) Len() int { return c.cache.len() }

func (c *Client) endpointURL(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.baseURL + path + sep + "api_key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) load(ctx context.Context, path string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		if c.hooks.OnFetch != nil {
			c.hooks.OnFetch(path, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	id := requestid.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		cerr := newError(resp, path)
		c.logger.Debug("goCinema: catalog request failed", "path", path, "status", resp.StatusCode, "request_id", id)
		return nil, cerr
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: invalid json", ErrDecode, path)
	}

	c.cache.put(path, body)
	return body, nil
}

func decode(path string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return nil
}
