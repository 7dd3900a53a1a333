// Package config supplies default CLI flag values for cascade, merged from
// a global config file, a repo-local config file, and the command line, in
// that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI defaults a config.Load caller can fall back to when a
// flag was not set explicitly on the command line.
type Config struct {
	SearchPath  []string `yaml:"search_path"`
	Format      string   `yaml:"format"`
	SkipMissing *bool    `yaml:"skip_missing"`
}

// defaults returns the built-in default configuration.
func defaults() Config {
	return Config{
		Format: "text",
	}
}

// Load reads configuration from the global config file
// (~/.config/cascade/config.yml) and the repo-local config file
// (.cascade.yml in repoRoot), then merges them with CLI overrides using the
// precedence: cliOverrides > repo config > global config > built-in
// defaults.
//
// Missing config files are silently skipped. Malformed YAML returns an error.
func Load(repoRoot string, cliOverrides Config) (Config, error) {
	globalPath := ""
	if p, err := globalConfigPath(); err == nil {
		globalPath = p
	}
	return load(globalPath, repoRoot, cliOverrides)
}

// load is the internal implementation that accepts explicit paths for testability.
func load(globalPath, repoRoot string, cliOverrides Config) (Config, error) {
	cfg := defaults()

	if globalPath != "" {
		global, err := loadFile(globalPath)
		if err != nil {
			return Config{}, fmt.Errorf("global config %s: %w", globalPath, err)
		}
		if global != nil {
			cfg = merge(cfg, *global)
		}
	}

	if repoRoot != "" {
		repoPath := filepath.Join(repoRoot, ".cascade.yml")
		repo, err := loadFile(repoPath)
		if err != nil {
			return Config{}, fmt.Errorf("repo config %s: %w", repoPath, err)
		}
		if repo != nil {
			cfg = merge(cfg, *repo)
		}
	}

	cfg = merge(cfg, cliOverrides)

	return cfg, nil
}

// globalConfigPath returns the path to ~/.config/cascade/config.yml.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cascade", "config.yml"), nil
}

// loadFile reads and parses a YAML config file. Returns (nil, nil) if the file
// does not exist. Returns an error if the file exists but is malformed.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed YAML: %w", err)
	}
	return &cfg, nil
}

// merge returns a new Config where non-zero fields in override replace the
// corresponding fields in base.
func merge(base, override Config) Config {
	result := base

	if len(override.SearchPath) > 0 {
		result.SearchPath = override.SearchPath
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.SkipMissing != nil {
		result.SkipMissing = override.SkipMissing
	}

	return result
}
