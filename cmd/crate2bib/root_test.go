package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const serdeJSON = `{
  "crate": {"id": "serde", "name": "serde", "description": "A serialization framework",
            "repository": "https://github.com/serde-rs/serde", "updated_at": "2024-12-27T20:38:03+00:00"},
  "versions": [
    {"id": 2, "crate": "serde", "num": "1.0.217", "license": "MIT OR Apache-2.0", "updated_at": "2024-12-27T20:38:03+00:00", "published_by": {"id": 1, "login": "dtolnay", "name": "David Tolnay"}}
  ]
}`

const citation = `cff-version: 1.2.0
title: serde
date-released: 2024-01-01
authors:
  - family-names: Tolnay
    given-names: David
`

func fakeUpstream(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/crates/serde", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(serdeJSON))
	})
	mux.HandleFunc("/raw/serde-rs/serde/HEAD/CITATION.cff", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(citation))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("CRATE2BIB_CRATES_IO_URL", srv.URL)
	t.Setenv("CRATE2BIB_GITHUB_RAW_URL", srv.URL+"/raw")
	t.Setenv("CRATE2BIB_REQUEST_INTERVAL_MS", "1")
	t.Setenv("CRATE2BIB_NO_CACHE", "true")
	t.Setenv("CRATE2BIB_CONFIG", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestGetPrintsEntriesWithOrigin(t *testing.T) {
	fakeUpstream(t)
	out, _, err := execute(t, "get", "serde", "1", "--log-level", "off")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(out, "% Obtained from crates.io information") {
		t.Fatalf("missing crates.io origin line:\n%s", out)
	}
	for _, want := range []string{"version = {1.0.217}", "% Obtained from CITATION.cff file in repository", "    title = {{serde}},\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "@software {Tolnay2024,"); n != 2 {
		t.Fatalf("expected two entries, got %d:\n%s", n, out)
	}
}

func TestGetUnknownCrateFails(t *testing.T) {
	fakeUpstream(t)
	_, _, err := execute(t, "get", "nope", "--log-level", "off")
	if err == nil || !strings.Contains(err.Error(), "Could not find crate nope") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetRequiresCrate(t *testing.T) {
	fakeUpstream(t)
	if _, _, err := execute(t, "get"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestDepsResolvesManifest(t *testing.T) {
	fakeUpstream(t)
	dir := t.TempDir()
	manifest := "[package]\nname = \"demo\"\n\n[dependencies]\nserde = \"1\"\nlocal = { path = \"../local\" }\n\n[dev-dependencies]\nmissing = \"0.1\"\n"
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "deps", dir, "--log-level", "off")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if strings.Count(out, "% Obtained from crates.io information") != 1 {
		t.Fatalf("expected one crates.io entry:\n%s", out)
	}

	// dev dependencies are opt-in; the unknown one makes the command fail
	_, _, err = execute(t, "deps", dir, "--kinds", "", "--log-level", "off")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 dependencies") {
		t.Fatalf("expected partial failure, got %v", err)
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	t.Setenv("CRATE2BIB_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	out, _, err := execute(t, "version")
	if err != nil || !strings.HasPrefix(out, "crate2bib ") {
		t.Fatalf("version: %q %v", out, err)
	}
}

func TestPersistentFlagsOverrideConfig(t *testing.T) {
	fakeUpstream(t)
	t.Setenv("CRATE2BIB_NO_CACHE", "")
	os.Unsetenv("CRATE2BIB_NO_CACHE")
	t.Setenv("CRATE2BIB_CACHE_PATH", filepath.Join(t.TempDir(), "cache.db"))
	a := &app{}
	root := newRootCmdWith(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--user-agent", "me@example.org", "--no-cache", "--log-level", "off", "get", "serde"})
	if err := root.Execute(); err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.cfg.UserAgent != "me@example.org" || a.cfg.CachePath != "" || a.cfg.LogLevel != "off" {
		t.Fatalf("flags not applied: %+v", a.cfg)
	}
}
