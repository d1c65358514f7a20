package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// FromEnv overlays CRATE2BIB_* environment variables onto cfg. Unset
// variables leave the corresponding field untouched.
func FromEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
