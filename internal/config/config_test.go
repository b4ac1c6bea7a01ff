// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingDirUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api/chat", cfg.Agent.Endpoint)
	assert.InDelta(t, 37.8, cfg.Map.InitialLat, 1e-9)
	assert.InDelta(t, -76.6, cfg.Map.InitialLon, 1e-9)
	assert.InDelta(t, 6.0, cfg.Map.InitialZoom, 1e-9)
	assert.Equal(t, "UNCLASSIFIED", cfg.Security.Classification)
	assert.True(t, cfg.Feed.SampleData)
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
version = "1.0"

[agent]
endpoint = "http://backend.example:9000/chat"

[map]
initial_lat = 50.5
initial_lon = 0.5
initial_zoom = 8
settle_delay_ms = 150

[security]
banner_enabled = true
classification = "SECRET"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://backend.example:9000/chat", cfg.Agent.Endpoint)
	assert.InDelta(t, 50.5, cfg.Map.InitialLat, 1e-9)
	assert.Equal(t, "SECRET", cfg.Security.Classification)
	assert.Equal(t, 150, cfg.Map.SettleDelayMS)
}

func TestLoadFromJSONFallback(t *testing.T) {
	dir := t.TempDir()
	content := `{"agent": {"endpoint": "http://json.example/chat"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://json.example/chat", cfg.Agent.Endpoint)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AMIS_AGENT_ENDPOINT", "http://env.example/chat")
	t.Setenv("AMIS_CLASSIFICATION", "CUI")
	t.Setenv("AMIS_SETTLE_DELAY_MS", "250")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/chat", cfg.Agent.Endpoint)
	assert.Equal(t, "CUI", cfg.Security.Classification)
	assert.Equal(t, 250, cfg.Map.SettleDelayMS)
}

func TestValidateClampsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Map.InitialLat = 120
	cfg.Map.InitialZoom = 99
	cfg.Map.SettleDelayMS = -5
	cfg.UI.Theme = "hotdog"
	cfg.Agent.Endpoint = "not a url"

	cfg.Validate()

	assert.InDelta(t, 37.8, cfg.Map.InitialLat, 1e-9)
	assert.InDelta(t, 6.0, cfg.Map.InitialZoom, 1e-9)
	assert.Equal(t, 300, cfg.Map.SettleDelayMS)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, Default().Agent.Endpoint, cfg.Agent.Endpoint)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Security.Classification = "CUI"
	cfg.Map.InitialZoom = 9
	require.NoError(t, cfg.Save(dir))

	loaded, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "CUI", loaded.Security.Classification)
	assert.InDelta(t, 9.0, loaded.Map.InitialZoom, 1e-9)
}
