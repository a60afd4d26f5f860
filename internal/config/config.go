// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for tafakkur.
//
// Configuration comes from ~/.tafakkur/config.toml with environment
// variable overrides on top, loaded once at startup. The resulting Config
// is passed explicitly to the components that need it; there is no
// mutable global state.
//
// Environment overrides:
//   - DEEPSEEK_API_KEY: DeepSeek completion key
//   - SERPAPI_KEY: SerpAPI search key
//   - TAFAKKUR_SERVER_URL: base URL the front ends talk to
//   - TAFAKKUR_PORT: HTTP server port
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tafakkur configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// Providers holds the external API credentials.
	Providers ProvidersConfig `toml:"providers"`

	// Search scoping parameters
	Search SearchConfig `toml:"search"`

	// Client configuration for the TUI and CLI front ends
	Client ClientConfig `toml:"client"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port the HTTP API listens on.
	Port int `toml:"port"`

	// AllowedOrigins is the CORS allowlist for browser clients.
	AllowedOrigins []string `toml:"allowed_origins"`

	// RequestsPerMinute is the per-IP rate limit (0 uses the default of 60).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// ProvidersConfig contains the external API credentials.
type ProvidersConfig struct {
	DeepSeekKey string `toml:"deepseek_key"`
	SerpAPIKey  string `toml:"serpapi_key"`
}

// SearchConfig scopes web search results.
type SearchConfig struct {
	// Region is the Google gl parameter.
	Region string `toml:"region"`

	// Language is the Google hl parameter.
	Language string `toml:"language"`

	// MaxResults caps the hits fed into prompts.
	MaxResults int `toml:"max_results"`
}

// ClientConfig configures the TUI/CLI front ends.
type ClientConfig struct {
	// ServerURL is the base URL of the tafakkur API.
	ServerURL string `toml:"server_url"`
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              5000,
			AllowedOrigins:    []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			RequestsPerMinute: 60,
		},
		Search: SearchConfig{
			Region:     "sa",
			Language:   "ar",
			MaxResults: 3,
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:5000/api",
		},
	}
}

// Dir returns the tafakkur configuration directory (~/.tafakkur).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tafakkur"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the default config file, falls back to built-in defaults
// when it does not exist, and applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a specific config file with the same fallback and
// override behavior as Load.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		c.Providers.DeepSeekKey = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		c.Providers.SerpAPIKey = v
	}
	if v := os.Getenv("TAFAKKUR_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("TAFAKKUR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks value ranges. Missing provider keys are not errors;
// the affected adapters report themselves unconfigured instead.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		return fmt.Errorf("invalid search max_results: %d", c.Search.MaxResults)
	}
	if c.Client.ServerURL == "" {
		return errors.New("client server_url must not be empty")
	}
	return nil
}
