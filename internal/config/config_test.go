package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, ":8090", cfg.HTTP.ListenAddr)
	assert.Equal(t, time.Second, cfg.StatsInterval())
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval())
	assert.Equal(t, 2*time.Second, cfg.AlertsInterval())
	assert.Equal(t, 15, cfg.Settings.FPSTarget)
	assert.Equal(t, 0.35, cfg.Settings.CrimeThreshold)
	assert.True(t, cfg.Settings.ShowBoxes)
	assert.True(t, cfg.Settings.ShowWeapons)
}

func TestLoad_YAMLValuesApply(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://10.0.0.5:9000"
poll:
  stats_interval_ms: 500
settings:
  crime_threshold: 0.6
  show_weapons: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.StatsInterval())
	assert.Equal(t, 0.6, cfg.Settings.CrimeThreshold)
	assert.False(t, cfg.Settings.ShowWeapons)

	// Keys the file does not name keep their defaults.
	assert.Equal(t, ":8090", cfg.HTTP.ListenAddr)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval())
	assert.True(t, cfg.Settings.ShowBoxes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://from-file:8000"
settings:
  crime_threshold: 0.5
`)
	t.Setenv("BACKEND_BASE_URL", "http://from-env:8000")
	t.Setenv("SETTINGS_CRIME_THRESHOLD", "0.9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 0.9, cfg.Settings.CrimeThreshold)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := writeConfig(t, "backend: [")
	_, err := Load(path)
	require.Error(t, err)
}
