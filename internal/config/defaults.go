package config

import (
	"fmt"
	"time"

	"crate2bib/internal/common/fsutil"
)

const (
	DefaultAddr              = ":8080"
	DefaultUserAgent         = "crate2bib (https://github.com/jonaspleyer/crate2bib)"
	DefaultRequestIntervalMS = 1000
	DefaultCacheTTLSeconds   = 3600
	DefaultLogLevel          = "info"
	DefaultMaxBodyBytes      = 1 << 20
)

// Defaults fills every unspecified field.
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestIntervalMS <= 0 {
		c.RequestIntervalMS = DefaultRequestIntervalMS
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.CachePath == "" && !c.NoCache {
		c.CachePath = fsutil.DefaultCachePath()
	}
	if c.NoCache {
		c.CachePath = ""
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	if c.RequestIntervalMS < 1000 && c.CratesIOURL == "" {
		return fmt.Errorf("request_interval_ms must be at least 1000 for crates.io (got %d)", c.RequestIntervalMS)
	}
	if c.CORSEnabled && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("cors_enabled requires cors_origins")
	}
	return nil
}

// RequestInterval is the minimum spacing between crates.io requests.
func (c Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

// CacheTTL is how long cached crates.io responses stay fresh.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Resolve loads path (when set), overlays the environment and applies
// defaults. It is the single entry point used by the commands.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := FromEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
