package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SCRAPER_SOURCE", "SCRAPER_FIXTURES_DIR", "SCRAPER_RECORD_DIR", "SCRAPER_OUTPUT_DIR",
	"SCRAPER_SCHEMA", "SCRAPER_LOG_LEVEL", "SCRAPER_LOG_FILE", "DATABASE_URL",
	"CHROME_PATH", "CHROME_HEADLESS",
}

// isolate runs the test in an empty directory with the scraper variables
// cleared, so a developer's .env or shell cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceChrome, cfg.Source)
	assert.Equal(t, "v1", cfg.Schema)
	assert.Equal(t, "D(tbr)", cfg.Markers.Row)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser.SettleDelay)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "scraper.yaml")
	yaml := `
source: file
fixtures_dir: pages
schema: v2
browser:
  settle_delay: 3s
markers:
  label: Lbl
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SCRAPER_FIXTURES_DIR", "other")
	t.Setenv("CHROME_HEADLESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Source)
	assert.Equal(t, "other", cfg.FixturesDir)
	assert.Equal(t, "v2", cfg.Schema)
	assert.Equal(t, 3*time.Second, cfg.Browser.SettleDelay)
	assert.Equal(t, "Lbl", cfg.Markers.Label)
	assert.Equal(t, "D(tbr)", cfg.Markers.Row, "unset markers keep their default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Browser.Headless)

	cc := cfg.ChromeConfig()
	assert.Equal(t, 3*time.Second, cc.SettleDelay)
	assert.False(t, cc.Headless)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	// godotenv never overrides a variable that is already set, even empty.
	os.Unsetenv("SCRAPER_OUTPUT_DIR")
	require.NoError(t, os.WriteFile(".env", []byte("SCRAPER_OUTPUT_DIR=from-dotenv\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source = "ftp" }},
		{"file source without dir", func(c *Config) { c.Source = SourceFile }},
		{"unknown schema", func(c *Config) { c.Schema = "v0" }},
		{"negative delay", func(c *Config) { c.Browser.SettleDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_BadInputs(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CHROME_HEADLESS", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}
