// Package cratesio talks to the crates.io registry API and builds BibLaTeX
// entries from the metadata of a published crate version.
package cratesio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultBaseURL  = "https://crates.io"
	defaultInterval = time.Second
	defaultCacheTTL = time.Hour
	maxBodyBytes    = 16 << 20
)

var tracer = otel.Tracer("crate2bib/internal/cratesio")

// Cache stores raw API responses. *store.Store satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, time.Time, bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Config encapsulates all tunables for Client construction.
type Config struct {
	BaseURL string
	// UserAgent is mandatory: crates.io rejects anonymous clients.
	UserAgent string
	// Interval is the minimum spacing between two API requests.
	Interval   time.Duration
	HTTPClient *http.Client
	Cache      Cache
	CacheTTL   time.Duration
	Logger     zerolog.Logger
}

// Client is a rate-limited crates.io API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	log        zerolog.Logger
}

// New constructs a Client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, fmt.Errorf("crates.io user agent is required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("crates.io base url: %w", err)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cli := cfg.HTTPClient
	if cli == nil {
		cli = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		httpClient: cli,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		cache:      cfg.Cache,
		cacheTTL:   ttl,
		log:        cfg.Logger,
	}, nil
}

// NewHTTPClient returns a client without an overall timeout; requests carry
// their deadlines through the context.
func NewHTTPClient(connectTimeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// GetCrate fetches the crate document, serving it from the cache when fresh.
func (c *Client) GetCrate(ctx context.Context, name string) (CrateResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CrateResponse{}, fmt.Errorf("crate name is required")
	}
	ctx, span := tracer.Start(ctx, "cratesio.GetCrate")
	defer span.End()
	span.SetAttributes(attribute.String("crate.name", name))

	body, err := c.fetchCrate(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CrateResponse{}, err
	}
	var resp CrateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		return CrateResponse{}, fmt.Errorf("decode crate %s: %w", name, err)
	}
	return resp, nil
}

func (c *Client) fetchCrate(ctx context.Context, name string) ([]byte, error) {
	key := "crate:" + name
	if c.cache != nil {
		body, at, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("crate", name).Msg("crate cache read failed")
		case ok && time.Since(at) < c.cacheTTL:
			c.log.Debug().Str("crate", name).Msg("crate cache hit")
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	endpoint := c.baseURL + "/api/v1/crates/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("crates.io request: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Msg: fmt.Sprintf("Could not find crate %s", name)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Service: "crates.io", Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read crates.io response: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, key, body); err != nil {
			c.log.Warn().Err(err).Str("crate", name).Msg("crate cache write failed")
		}
	}
	return body, nil
}

// CrateURL is the public crates.io page of a crate.
func (c *Client) CrateURL(name string) string {
	return c.baseURL + "/crates/" + url.PathEscape(name)
}
