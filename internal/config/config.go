// Package config loads optional CLI defaults from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file.
const (
	EnvDB      = "MATCHREPORT_DB"
	EnvVerbose = "MATCHREPORT_VERBOSE"
)

// Config holds defaults that explicit command-line flags override.
type Config struct {
	// DB is the SQLite match store used by --store and the query commands.
	DB string `yaml:"db"`

	// Store records every build in DB without passing --store.
	Store bool `yaml:"store"`

	// SkipMalformed skips unparsable finalstate.xml files instead of aborting.
	SkipMalformed bool `yaml:"skip_malformed"`

	Verbose bool `yaml:"verbose"`
}

// Dir returns the per-user directory for the config file and default store.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".matchreport")
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB: filepath.Join(Dir(), "matches.db"),
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	if cfg.DB == "" {
		cfg.DB = Default().DB
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		c.DB = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVerbose)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}
