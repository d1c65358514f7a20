package e2e

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crate2bib/internal/bridge"
	"crate2bib/internal/httpapi"
	"crate2bib/internal/resolver"
)

const crateJSON = `{
  "crate": {
    "id": "cellular_raza",
    "name": "cellular_raza",
    "description": "Cellular Agent-based Modeling from a Clean Slate",
    "repository": "https://github.com/jonaspleyer/cellular_raza",
    "updated_at": "2024-10-02T10:00:00+00:00"
  },
  "versions": [
    {"id": 2, "crate": "cellular_raza", "num": "0.1.5", "license": "GPL-2.0", "updated_at": "2024-10-02T10:00:00+00:00", "published_by": {"id": 1, "login": "jonaspleyer", "name": "Jonas Pleyer"}}
  ]
}`

const citationCFF = `cff-version: 1.2.0
title: cellular_raza
date-released: 2024-09-13
authors:
  - family-names: Pleyer
    given-names: Jonas
`

// fakeUpstream serves crates.io and raw.githubusercontent.com on one server.
type fakeUpstream struct {
	srv   *httptest.Server
	crate atomic.Int32
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/crates/", func(w http.ResponseWriter, r *http.Request) {
		u.crate.Add(1)
		if strings.TrimPrefix(r.URL.Path, "/api/v1/crates/") != "cellular_raza" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(crateJSON))
	})
	mux.HandleFunc("/raw/jonaspleyer/cellular_raza/HEAD/CITATION.cff", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(citationCFF))
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *fakeUpstream) resolverConfig() resolver.Config {
	return resolver.Config{
		UserAgent:    "crate2bib-e2e",
		CratesIOURL:  u.srv.URL,
		GitHubRawURL: u.srv.URL + "/raw",
		Interval:     time.Millisecond,
		HTTPClient:   u.srv.Client(),
		Logger:       zerolog.Nop(),
	}
}

type stack struct {
	srv     *httptest.Server
	loader  *bridge.Loader
	adapter *bridge.Adapter
	mod     *resolver.Module
}

// newStack wires resolver, bridge and HTTP API the way `crate2bib serve`
// does, without starting the loader.
func newStack(t *testing.T, cfg resolver.Config) *stack {
	t.Helper()
	mod := resolver.New(cfg)
	t.Cleanup(func() { _ = mod.Close() })
	loader := bridge.NewLoader(mod, bridge.LoaderConfig{Logger: zerolog.Nop()})
	adapter := bridge.NewAdapter(loader, bridge.AdapterConfig{
		Logger:         zerolog.Nop(),
		FailureHandler: httpapi.FailureLogger(zerolog.Nop()),
		Observer:       httpapi.BridgeObserver,
	})
	httpapi.SetLogger(zerolog.Nop())
	httpapi.SetBaseContext(context.Background())
	srv := httptest.NewServer(httpapi.NewMux(httpapi.NewBridgeService(adapter, mod)))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, loader: loader, adapter: adapter, mod: mod}
}

func (s *stack) get(t *testing.T, path string) (int, string) {
	t.Helper()
	return s.do(t, http.MethodGet, path, "", "")
}

func (s *stack) post(t *testing.T, path, body string) (int, string) {
	t.Helper()
	return s.do(t, http.MethodPost, path, "application/json", body)
}

func (s *stack) do(t *testing.T, method, path, contentType, body string) (int, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, s.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}
