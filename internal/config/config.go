// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the AMIS TUI.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.amis/config.toml
//   - ~/.amis/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/amis-tui/internal/security"
	"github.com/jeranaias/amis-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete AMIS configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Agent backend configuration
	Agent AgentConfig `toml:"agent" json:"agent"`

	// Geocoding configuration
	Geocoder GeocoderConfig `toml:"geocoder" json:"geocoder"`

	// AIS vessel feed configuration
	Feed FeedConfig `toml:"feed" json:"feed"`

	// Map configuration
	Map MapConfig `toml:"map" json:"map"`

	// Security configuration
	Security SecurityConfig `toml:"security" json:"security"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// AgentConfig contains agent backend settings.
type AgentConfig struct {
	// Endpoint is the chat endpoint URL of the agent backend.
	Endpoint string `toml:"endpoint" json:"endpoint"`
}

// GeocoderConfig contains geocoding endpoint settings.
type GeocoderConfig struct {
	// Endpoint is the geocoding endpoint URL.
	Endpoint string `toml:"endpoint" json:"endpoint"`
}

// FeedConfig contains vessel feed settings.
type FeedConfig struct {
	// Endpoint is the vessel feed URL. Empty disables network fetch.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// WatchFile is a local feed file to watch for fleet updates.
	// Empty disables watching.
	WatchFile string `toml:"watch_file" json:"watch_file"`
	// DatabasePath is where the vessel store lives
	// (empty = ~/.amis/vessels.db).
	DatabasePath string `toml:"database_path" json:"database_path"`
	// SampleData seeds the store with generated sample vessels when the
	// feed is unreachable or unconfigured.
	SampleData bool `toml:"sample_data" json:"sample_data"`
	// SampleSeed is the RNG seed for generated sample vessels.
	SampleSeed int64 `toml:"sample_seed" json:"sample_seed"`
}

// MapConfig contains the initial view and camera behavior.
type MapConfig struct {
	// InitialLat/InitialLon/InitialZoom define the startup view.
	InitialLat  float64 `toml:"initial_lat" json:"initial_lat"`
	InitialLon  float64 `toml:"initial_lon" json:"initial_lon"`
	InitialZoom float64 `toml:"initial_zoom" json:"initial_zoom"`
	// SettleDelayMS is the pause after a camera movement before viewport
	// reads are trusted, in milliseconds.
	SettleDelayMS int `toml:"settle_delay_ms" json:"settle_delay_ms"`
}

// SettleDelay returns the settle delay as a duration.
func (m MapConfig) SettleDelay() time.Duration {
	return time.Duration(m.SettleDelayMS) * time.Millisecond
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// BannerEnabled enables classification banner display.
	BannerEnabled bool `toml:"banner_enabled" json:"banner_enabled"`
	// Classification is the classification marking (e.g., "UNCLASSIFIED").
	Classification string `toml:"classification" json:"classification"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Theme is the color theme name: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// MarkdownRendering renders finalized assistant messages as markdown.
	MarkdownRendering bool `toml:"markdown_rendering" json:"markdown_rendering"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration. The initial view is
// the Chesapeake Bay approaches.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Agent: AgentConfig{
			Endpoint: "http://127.0.0.1:8000/api/chat",
		},
		Geocoder: GeocoderConfig{
			Endpoint: "http://127.0.0.1:8000/api/geocode",
		},
		Feed: FeedConfig{
			Endpoint:   "http://127.0.0.1:8000/api/vessels",
			SampleData: true,
			SampleSeed: 1,
		},
		Map: MapConfig{
			InitialLat:    37.8,
			InitialLon:    -76.6,
			InitialZoom:   6,
			SettleDelayMS: 300,
		},
		Security: SecurityConfig{
			BannerEnabled:  true,
			Classification: "UNCLASSIFIED",
		},
		UI: UIConfig{
			Theme:             "dark",
			MarkdownRendering: true,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// ConfigDir returns the AMIS configuration directory (~/.amis).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".amis"), nil
}

// Load reads the configuration: TOML first, JSON fallback, built-in defaults
// otherwise. Environment overrides and validation are always applied.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads the configuration from a specific directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(dir, "config.toml")
	jsonPath := filepath.Join(dir, "config.json")

	if data, err := os.ReadFile(tomlPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	} else if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Validate()
	return cfg, nil
}

// applyEnvOverrides applies AMIS_* environment variables on top of the
// loaded configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AMIS_AGENT_ENDPOINT"); v != "" {
		c.Agent.Endpoint = v
	}
	if v := os.Getenv("AMIS_GEOCODER_ENDPOINT"); v != "" {
		c.Geocoder.Endpoint = v
	}
	if v := os.Getenv("AMIS_FEED_ENDPOINT"); v != "" {
		c.Feed.Endpoint = v
	}
	if v := os.Getenv("AMIS_FEED_WATCH_FILE"); v != "" {
		c.Feed.WatchFile = v
	}
	if v := os.Getenv("AMIS_CLASSIFICATION"); v != "" {
		c.Security.Classification = v
	}
	if v := os.Getenv("AMIS_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("AMIS_SETTLE_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Map.SettleDelayMS = ms
		}
	}
}

// Validate clamps out-of-range values back to usable ones instead of
// failing: a TUI that refuses to start over a typo in a delay field helps
// nobody.
func (c *Config) Validate() {
	if _, err := url.ParseRequestURI(c.Agent.Endpoint); err != nil {
		c.Agent.Endpoint = Default().Agent.Endpoint
	}
	if _, err := url.ParseRequestURI(c.Geocoder.Endpoint); err != nil {
		c.Geocoder.Endpoint = Default().Geocoder.Endpoint
	}

	if c.Map.InitialLat < -90 || c.Map.InitialLat > 90 {
		c.Map.InitialLat = Default().Map.InitialLat
	}
	if c.Map.InitialLon < -180 || c.Map.InitialLon > 180 {
		c.Map.InitialLon = Default().Map.InitialLon
	}
	if c.Map.InitialZoom < 0 || c.Map.InitialZoom > 22 {
		c.Map.InitialZoom = Default().Map.InitialZoom
	}
	if c.Map.SettleDelayMS < 0 || c.Map.SettleDelayMS > 5000 {
		c.Map.SettleDelayMS = Default().Map.SettleDelayMS
	}

	c.Security.Classification = security.Normalize(c.Security.Classification)
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = "dark"
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to the given directory, atomically.
func (c *Config) Save(dir string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DatabasePath resolves the vessel store path, defaulting under the config
// directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Feed.DatabasePath != "" {
		return c.Feed.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vessels.db"), nil
}
