// Package config loads scraper settings from an optional YAML file, a .env
// file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"statement_scraper/pkg/core/extract"
	"statement_scraper/pkg/core/render"
	"statement_scraper/pkg/core/schema"
)

// Page source kinds.
const (
	SourceChrome = "chrome"
	SourceFile   = "file"
)

// Config is the full scraper configuration.
type Config struct {
	Source      string          `yaml:"source"`
	FixturesDir string          `yaml:"fixtures_dir"`
	RecordDir   string          `yaml:"record_dir"`
	Schema      string          `yaml:"schema"`
	OutputDir   string          `yaml:"output_dir"`
	DatabaseURL string          `yaml:"database_url"`
	Browser     BrowserConfig   `yaml:"browser"`
	Markers     extract.Markers `yaml:"markers"`
	Log         LogConfig       `yaml:"log"`
}

// BrowserConfig configures the headless browser page source.
type BrowserConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ExecPath    string        `yaml:"exec_path"`
	UserAgent   string        `yaml:"user_agent"`
	Headless    bool          `yaml:"headless"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	PageTimeout time.Duration `yaml:"page_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	chrome := render.DefaultChromeConfig()
	return Config{
		Source:    SourceChrome,
		Schema:    schema.Default,
		OutputDir: "output",
		Browser: BrowserConfig{
			BaseURL:     chrome.BaseURL,
			Headless:    chrome.Headless,
			SettleDelay: chrome.SettleDelay,
			PageTimeout: chrome.PageTimeout,
		},
		Markers: extract.DefaultMarkers(),
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Source, "SCRAPER_SOURCE")
	setString(&c.FixturesDir, "SCRAPER_FIXTURES_DIR")
	setString(&c.RecordDir, "SCRAPER_RECORD_DIR")
	setString(&c.OutputDir, "SCRAPER_OUTPUT_DIR")
	setString(&c.Schema, "SCRAPER_SCHEMA")
	setString(&c.Log.Level, "SCRAPER_LOG_LEVEL")
	setString(&c.Log.File, "SCRAPER_LOG_FILE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Browser.ExecPath, "CHROME_PATH")

	if v := os.Getenv("CHROME_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CHROME_HEADLESS %q: %w", v, err)
		}
		c.Browser.Headless = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Source {
	case SourceChrome:
	case SourceFile:
		if c.FixturesDir == "" {
			return fmt.Errorf("source %q needs fixtures_dir", SourceFile)
		}
	default:
		return fmt.Errorf("unknown source %q (want %q or %q)", c.Source, SourceChrome, SourceFile)
	}
	if _, err := schema.Lookup(c.Schema); err != nil {
		return err
	}
	if c.Browser.SettleDelay < 0 || c.Browser.PageTimeout < 0 {
		return fmt.Errorf("browser delays must not be negative")
	}
	return nil
}

// ChromeConfig converts the browser settings for the render package.
func (c Config) ChromeConfig() render.ChromeConfig {
	return render.ChromeConfig{
		BaseURL:     c.Browser.BaseURL,
		ExecPath:    c.Browser.ExecPath,
		UserAgent:   c.Browser.UserAgent,
		Headless:    c.Browser.Headless,
		SettleDelay: c.Browser.SettleDelay,
		PageTimeout: c.Browser.PageTimeout,
	}
}
