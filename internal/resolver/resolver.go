// Package resolver is the bibliography module driven by the bridge. It turns
// a crate name and optional version requirement into BibLaTeX entries taken
// from crates.io and from citation files in the crate's repository.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crate2bib/internal/cratesio"
	"crate2bib/internal/github"
)

// Config encapsulates all tunables for Module construction.
type Config struct {
	UserAgent    string
	CratesIOURL  string
	GitHubRawURL string
	// Branch searched for citation files; empty selects the default branch.
	Branch    string
	Filenames []string
	// Interval is the minimum spacing between crates.io requests.
	Interval time.Duration
	// CachePath enables the sqlite response cache when set.
	CachePath  string
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Module resolves crates to bibliography entries. Init must succeed before
// any lookup.
type Module struct {
	cfg Config
	log zerolog.Logger

	mu     sync.RWMutex
	crates *cratesio.Client
	files  *github.Fetcher
	cache  io.Closer
}

var errNotInitialized = errors.New("resolver not initialized")

// New returns an uninitialized Module.
func New(cfg Config) *Module {
	return &Module{cfg: cfg, log: cfg.Logger}
}

// Init validates the configuration, opens the cache and builds the clients.
func (m *Module) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.crates != nil {
		return nil
	}
	if strings.TrimSpace(m.cfg.UserAgent) == "" {
		return fmt.Errorf("user agent is required by crates.io")
	}
	httpClient := m.cfg.HTTPClient
	if httpClient == nil {
		httpClient = cratesio.NewHTTPClient(10 * time.Second)
	}

	var cache cratesio.Cache
	if m.cfg.CachePath != "" {
		c, closer, err := openCache(ctx, m.cfg.CachePath, m.cfg.CacheTTL, m.log)
		if err != nil {
			return err
		}
		cache, m.cache = c, closer
	}

	crates, err := cratesio.New(cratesio.Config{
		BaseURL:    m.cfg.CratesIOURL,
		UserAgent:  m.cfg.UserAgent,
		Interval:   m.cfg.Interval,
		HTTPClient: httpClient,
		Cache:      cache,
		CacheTTL:   m.cfg.CacheTTL,
		Logger:     m.log,
	})
	if err != nil {
		if m.cache != nil {
			_ = m.cache.Close()
			m.cache = nil
		}
		return err
	}
	m.crates = crates
	m.files = github.NewFetcher(m.cfg.GitHubRawURL, m.cfg.UserAgent, httpClient, m.log)
	return nil
}

// Close releases the cache.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil {
		return nil
	}
	err := m.cache.Close()
	m.cache = nil
	return err
}

func (m *Module) clients() (*cratesio.Client, *github.Fetcher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.crates == nil {
		return nil, nil, errNotInitialized
	}
	return m.crates, m.files, nil
}
