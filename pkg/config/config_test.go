package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 60*time.Second, cfg.Interval())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	const payload = `
listen: ":9090"
refresh_interval: 30s
erp:
  base_url: https://erp.example.com
  api_key: key
  api_secret: secret
  timezone: Asia/Karachi
  methods:
    stats: custom.get_stats
map:
  zoom: 7
leaderboard:
  chart_top: 5
`
	cfg, err := Decode([]byte(payload), Defaults())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, "https://erp.example.com", cfg.ERP.BaseURL)
	assert.Equal(t, "custom.get_stats", cfg.ERP.Methods.Stats)
	assert.Equal(t, "Asia/Karachi", cfg.Location().String())
	assert.Equal(t, 7, cfg.Map.Zoom)
	assert.Equal(t, 50, cfg.Map.Padding)
	assert.Equal(t, 5, cfg.Leaderboard.ChartTop)
	assert.Equal(t, "/admin", cfg.BasePath)
}

func TestDecodeRejectsBadInterval(t *testing.T) {
	_, err := Decode([]byte("demo: true\nrefresh_interval: soon\n"), Defaults())
	require.Error(t, err)

	_, err = Decode([]byte("demo: true\nrefresh_interval: 10ms\n"), Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1s")
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("demo: true\nrefresh: 10s\n"), Defaults())
	require.Error(t, err)
}

func TestDecodeRejectsOutOfRangeCenter(t *testing.T) {
	_, err := Decode([]byte("demo: true\nmap:\n  center_lat: 120\n"), Defaults())
	require.Error(t, err)
}

func TestValidateRequiresBaseURLOutsideDemo(t *testing.T) {
	cfg := Defaults()
	require.Error(t, cfg.Validate())
	cfg.Demo = true
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "techboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("demo: true\nbase_path: /ops\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Demo)
	assert.Equal(t, "/ops", cfg.BasePath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TECHBOARD_TEST_KEY=from-dotenv\n"), 0o600))
	t.Setenv("TECHBOARD_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("TECHBOARD_TEST_KEY"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("TECHBOARD_TEST_KEY"))
}
