package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Parse reads configuration from an io.Reader. Keys missing from the input
// keep their defaults; unknown keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
