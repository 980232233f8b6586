package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "SKETCHPAD_CONFIG"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // From --config or SKETCHPAD_CONFIG
}

// NewLoader creates a new Loader. An empty override falls back to the
// SKETCHPAD_CONFIG environment variable.
func NewLoader(version string, overridePath string) *Loader {
	if overridePath == "" {
		overridePath = os.Getenv(EnvPath)
	}
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration. An explicit override that does
// not exist is an error; otherwise a missing file yields the defaults.
func (l *Loader) Load() (*Config, error) {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err != nil {
			return nil, fmt.Errorf("config %s: %w", l.OverridePath, err)
		}
	}
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	// 1. Explicit override
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// 2. Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".sketchpad.toml")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	// 3. XDG config paths
	for _, p := range l.candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// SavePath returns where Save writes when no config file exists yet.
func (l *Loader) SavePath() (string, error) {
	if p := l.GetConfigPath(); p != "" {
		return p, nil
	}
	if l.OverridePath != "" {
		return l.OverridePath, nil
	}
	c := l.candidates()
	if len(c) == 0 {
		return "", fmt.Errorf("no config directory available")
	}
	return c[0], nil
}

func (l *Loader) candidates() []string {
	var out []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "sketchpad", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "sketchpad", "config.toml"))
	}
	return out
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
