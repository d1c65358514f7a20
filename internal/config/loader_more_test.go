package config

import (
	"testing"
	"time"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "addr: :8080\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "addr": ":8080", "user_agent": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.toml", "addr=:8080\nuser_agent\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected TOML unmarshal error")
	}
}

func TestFromEnvOverlays(t *testing.T) {
	t.Setenv("CRATE2BIB_ADDR", ":1234")
	t.Setenv("CRATE2BIB_FILENAMES", "CITATION.cff,CITATION.bib")
	t.Setenv("CRATE2BIB_NO_CACHE", "true")
	cfg := Config{Addr: ":1", UserAgent: "kept"}
	if err := FromEnv(&cfg); err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Addr != ":1234" || cfg.UserAgent != "kept" || len(cfg.Filenames) != 2 || !cfg.NoCache {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("CRATE2BIB_REQUEST_INTERVAL_MS", "soon")
	var cfg Config
	if err := FromEnv(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	if cfg.Addr != DefaultAddr || cfg.UserAgent == "" || cfg.CachePath == "" || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.RequestInterval() != time.Second || cfg.CacheTTL() != time.Hour {
		t.Fatalf("unexpected durations %v %v", cfg.RequestInterval(), cfg.CacheTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	noCache := Config{NoCache: true, CachePath: "/x.db"}
	noCache.Defaults()
	if noCache.CachePath != "" {
		t.Fatalf("no_cache must clear cache path")
	}

	fast := Config{RequestIntervalMS: 10}
	if err := fast.Validate(); err == nil {
		t.Fatalf("expected crates.io rate limit violation")
	}
	fast.CratesIOURL = "http://127.0.0.1:9"
	if err := fast.Validate(); err != nil {
		t.Fatalf("custom registries may be polled faster: %v", err)
	}
	cors := Config{RequestIntervalMS: 1000, CORSEnabled: true}
	if err := cors.Validate(); err == nil {
		t.Fatalf("expected cors origins error")
	}
}

func TestResolve(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9000\nno_cache: true\n")
	t.Setenv("CRATE2BIB_LOG_LEVEL", "warn")
	cfg, err := Resolve(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.LogLevel != "warn" || cfg.CachePath != "" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if _, err := Resolve(""); err != nil {
		t.Fatalf("resolve without file: %v", err)
	}
}
