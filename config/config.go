// Package config manages application configuration. The configuration is
// built once at process start and threaded into the engine as parameters;
// nothing in the core consults the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// RSSHubURL is the base endpoint of the RSSHub instance used for
	// Bilibili listings (default: the public instance).
	RSSHubURL string `json:"rsshub_url"`
	// Timezone is the IANA zone used for normalizing ledger timestamps
	// (default: "UTC").
	Timezone string `json:"timezone"`
	// LogLevel is one of debug, info, warn, error (default: "info").
	LogLevel string `json:"log_level"`
	// YouTubeAPIKey enables the fast publish-time lookup during backfill.
	YouTubeAPIKey string `json:"youtube_api_key"`

	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp").
	YtdlpPath string `json:"ytdlp_path"`
	// YtdlpTimeout is the maximum time to wait per yt-dlp invocation.
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`

	// DeliverCommand is the external delivery sink executable.
	DeliverCommand string `json:"deliver_command"`
	// DeliverTimeout bounds one delivery invocation.
	DeliverTimeout time.Duration `json:"deliver_timeout"`

	// DataDir is where per-channel ledgers live by default.
	DataDir string `json:"data_dir"`

	// Retry settings for feed fetches.
	MaxRetries        int           `json:"max_retries"`
	InitialBackoff    time.Duration `json:"initial_backoff"`
	MaxBackoff        time.Duration `json:"max_backoff"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		RSSHubURL:         "https://rsshub.app",
		Timezone:          "UTC",
		LogLevel:          "info",
		YtdlpPath:         "yt-dlp",
		YtdlpTimeout:      10 * time.Minute,
		DeliverTimeout:    2 * time.Hour,
		DataDir:           "data",
		MaxRetries:        5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load loads configuration from environment variables, config file, and
// applies defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile attempts to load config from vodsync.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"vodsync.json",
		filepath.Join(os.Getenv("HOME"), ".config", "vodsync", "vodsync.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables. TZ, LOG_LEVEL and
// YOUTUBE_API_KEY are honored as fallbacks for compatibility with common
// deployment environments.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("VODSYNC_RSSHUB_URL"); v != "" {
		c.RSSHubURL = v
	}
	if v := firstEnv("VODSYNC_TIMEZONE", "TZ"); v != "" {
		c.Timezone = v
	}
	if v := firstEnv("VODSYNC_LOG_LEVEL", "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := firstEnv("VODSYNC_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("VODSYNC_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("VODSYNC_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("VODSYNC_DELIVER_CMD"); v != "" {
		c.DeliverCommand = v
	}
	if v := os.Getenv("VODSYNC_DELIVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DeliverTimeout = d
		}
	}
	if v := os.Getenv("VODSYNC_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("VODSYNC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("VODSYNC_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("VODSYNC_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
	if v := os.Getenv("VODSYNC_BACKOFF_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BackoffMultiplier = f
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.DeliverTimeout <= 0 {
		return fmt.Errorf("deliver_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
