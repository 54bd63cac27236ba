// Package config provides configuration loading for specpress.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/specpress/specpress/internal/errors"
)

// ProjectFile is looked up in the working directory before the user-level
// config.
const ProjectFile = ".specpress.yaml"

// envPrefix namespaces environment overrides: SPECPRESS_AUTO_OPTIMIZE,
// SPECPRESS_DIGEST_DIRECTORY, SPECPRESS_DEFAULT_LEVEL.
const envPrefix = "SPECPRESS_"

// Config holds runtime settings. Zero values are replaced by defaults in
// Load.
type Config struct {
	// AutoOptimize enables digest generation from save hooks.
	AutoOptimize bool `koanf:"auto_optimize"`

	// DigestDirectory, when set, receives generated digests instead of
	// the source file's directory.
	DigestDirectory string `koanf:"digest_directory"`

	// DefaultLevel is the compression level used when none is given.
	DefaultLevel string `koanf:"default_level"`

	// HistoryDatabase is the sqlite file recording digest runs.
	HistoryDatabase string `koanf:"history_database"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AutoOptimize: false,
		DefaultLevel: "medium",
	}
}

// Load reads configuration with the following precedence, highest first:
//
//  1. SPECPRESS_* environment variables
//  2. .specpress.yaml in the working directory
//  3. ~/.config/specpress/config.yaml
//  4. Built-in defaults
//
// Missing files are not an error; malformed files are.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile is Load with an explicit config file path. When path is
// empty the default lookup order applies.
func LoadWithFile(path string) (*Config, error) {
	k := koanf.New(".")

	paths := []string{path}
	if path == "" {
		paths = []string{userConfigPath(), ProjectFile}
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				if path != "" {
					return nil, errors.NewNotFound(p)
				}
				continue
			}
			return nil, errors.NewIO(fmt.Sprintf("failed to read config file %s", p), err)
		}
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, errors.NewValidationCause(fmt.Sprintf("failed to parse config file %s", p), err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, errors.NewIO("failed to load environment overrides", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.NewValidationCause("failed to unmarshal config", err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "specpress", "config.yaml")
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = "medium"
	}
	if cfg.HistoryDatabase == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.HistoryDatabase = filepath.Join(home, ".specpress", "history.db")
		}
	}
}

// Validate rejects settings the rest of the program cannot honor.
func (c *Config) Validate() error {
	switch c.DefaultLevel {
	case "low", "medium", "high":
	default:
		return errors.NewValidation(fmt.Sprintf(
			"default_level must be low, medium, or high, got %q", c.DefaultLevel))
	}
	return nil
}
