package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 300, cfg.Cache.TTLSeconds)
	require.Equal(t, 70, cfg.Scraper.MinConfidence)
	require.True(t, cfg.Scraper.UseMockData)
	require.True(t, cfg.Scraper.Amazon.Enabled)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"server": {"port": "9090"},
		"scraper": {
			"product_match_min_confidence": 85,
			"use_mock_data": false,
			"konga": {"enabled": false}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("ZENROWS_API_KEY", "zr-secret")
	t.Setenv("USE_MOCK_DATA", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env wins over file, file wins over defaults.
	require.Equal(t, "7000", cfg.Server.Port)
	require.Equal(t, "zr-secret", cfg.Scraper.ZenRowsAPIKey)
	require.True(t, cfg.Scraper.UseMockData)
	require.Equal(t, 85, cfg.Scraper.MinConfidence)
	require.False(t, cfg.Scraper.Konga.Enabled)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
