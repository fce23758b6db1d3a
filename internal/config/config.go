// Package config assembles the reel server configuration from defaults, an
// optional config file and environment variables, in that order of
// precedence (later wins).
//
// Environment:
//   - REEL_CONFIG: Path to a .yaml/.yml/.json config file (optional)
//   - REEL_LISTEN: Listen address (default ":3000")
//   - REEL_SEED_FILE: Movies to load at startup (optional)
//   - REEL_READ_HEADER_TIMEOUT: HTTP read header timeout (default "5s")
//   - REEL_SHUTDOWN_TIMEOUT: Graceful shutdown timeout (default "5s")
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved server configuration.
type Config struct {
	Listen            string
	SeedFile          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// FileConfig is the on-disk shape of a config file. Durations are Go
// duration strings such as "5s" or "250ms".
type FileConfig struct {
	Listen            string `yaml:"listen" json:"listen"`
	SeedFile          string `yaml:"seed_file" json:"seed_file"`
	ReadHeaderTimeout string `yaml:"read_header_timeout" json:"read_header_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Listen:            ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Load resolves the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom resolves the configuration using getenv for lookups.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("REEL_CONFIG"); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := fc.apply(&cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	env := FileConfig{
		Listen:            getenv("REEL_LISTEN"),
		SeedFile:          getenv("REEL_SEED_FILE"),
		ReadHeaderTimeout: getenv("REEL_READ_HEADER_TIMEOUT"),
		ShutdownTimeout:   getenv("REEL_SHUTDOWN_TIMEOUT"),
	}
	if err := env.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFile reads a config file. The format is chosen by extension.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &fc, nil
}

// apply copies every non-empty field of f onto cfg.
func (f *FileConfig) apply(cfg *Config) error {
	if f.Listen != "" {
		cfg.Listen = f.Listen
	}
	if f.SeedFile != "" {
		cfg.SeedFile = f.SeedFile
	}
	if f.ReadHeaderTimeout != "" {
		d, err := time.ParseDuration(f.ReadHeaderTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_header_timeout: %w", err)
		}
		cfg.ReadHeaderTimeout = d
	}
	if f.ShutdownTimeout != "" {
		d, err := time.ParseDuration(f.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if c.ReadHeaderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("read header timeout must be positive, got %s", c.ReadHeaderTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}
