package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"crate2bib/internal/common/fsutil"
)

// Config holds runtime parameters for the CLI and the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr              string   `json:"addr" yaml:"addr" toml:"addr" env:"CRATE2BIB_ADDR"`
	UserAgent         string   `json:"user_agent" yaml:"user_agent" toml:"user_agent" env:"CRATE2BIB_USER_AGENT"`
	CratesIOURL       string   `json:"crates_io_url" yaml:"crates_io_url" toml:"crates_io_url" env:"CRATE2BIB_CRATES_IO_URL"`
	GitHubRawURL      string   `json:"github_raw_url" yaml:"github_raw_url" toml:"github_raw_url" env:"CRATE2BIB_GITHUB_RAW_URL"`
	Branch            string   `json:"branch" yaml:"branch" toml:"branch" env:"CRATE2BIB_BRANCH"`
	Filenames         []string `json:"filenames" yaml:"filenames" toml:"filenames" env:"CRATE2BIB_FILENAMES" envSeparator:","`
	RequestIntervalMS int      `json:"request_interval_ms" yaml:"request_interval_ms" toml:"request_interval_ms" env:"CRATE2BIB_REQUEST_INTERVAL_MS"`
	CachePath         string   `json:"cache_path" yaml:"cache_path" toml:"cache_path" env:"CRATE2BIB_CACHE_PATH"`
	CacheTTLSeconds   int      `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds" env:"CRATE2BIB_CACHE_TTL_SECONDS"`
	NoCache           bool     `json:"no_cache" yaml:"no_cache" toml:"no_cache" env:"CRATE2BIB_NO_CACHE"`
	LogLevel          string   `json:"log_level" yaml:"log_level" toml:"log_level" env:"CRATE2BIB_LOG_LEVEL"`
	CORSEnabled       bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" env:"CRATE2BIB_CORS_ENABLED"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"CRATE2BIB_CORS_ORIGINS" envSeparator:","`
	MaxBodyBytes      int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"CRATE2BIB_MAX_BODY_BYTES"`
	OTelEndpoint      string   `json:"otel_endpoint" yaml:"otel_endpoint" toml:"otel_endpoint" env:"CRATE2BIB_OTEL_ENDPOINT"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
	}
	return cfg, nil
}
