// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds server and CLI settings. All fields are optional in the
// file; missing values fall back to environment variables, then to
// defaults.
type Config struct {
	// Server
	Addr string `json:"addr,omitempty"` // HTTP listen address, e.g. ":8080"

	// Model backend
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Override the default model for all tiers

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty runs in-memory

	// Job execution
	RetryLimit int           `json:"retry_limit,omitempty"` // Generation retries per job
	RetryDelay time.Duration `json:"-"`                     // Linear backoff unit between retries

	// RetryDelaySeconds is the JSON/env representation of RetryDelay.
	RetryDelaySeconds int `json:"retry_delay_seconds,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:              ":8080",
		RetryLimit:        1,
		RetryDelaySeconds: 5,
		RetryDelay:        5 * time.Second,
	}
}

// LoadFile loads configuration from a JSON file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.RetryDelaySeconds > 0 {
		cfg.RetryDelay = time.Duration(cfg.RetryDelaySeconds) * time.Second
	}

	return &cfg, nil
}

// FromEnv fills empty fields from environment variables. File values
// win over the environment; the environment wins over defaults.
func (c *Config) FromEnv() {
	if c.Addr == "" {
		c.Addr = os.Getenv("FORGECV_ADDR")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Model == "" {
		c.Model = os.Getenv("FORGECV_MODEL")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RetryLimit == 0 {
		if v, err := strconv.Atoi(os.Getenv("FORGECV_RETRY_LIMIT")); err == nil {
			c.RetryLimit = v
		}
	}
	if c.RetryDelay == 0 {
		if v, err := strconv.Atoi(os.Getenv("FORGECV_RETRY_DELAY_SECONDS")); err == nil && v > 0 {
			c.RetryDelay = time.Duration(v) * time.Second
		}
	}
	if !c.Verbose {
		if v, err := strconv.ParseBool(os.Getenv("FORGECV_VERBOSE")); err == nil {
			c.Verbose = v
		}
	}
}

// ApplyDefaults fills remaining zero fields from Default().
func (c *Config) ApplyDefaults() {
	defaults := Default()
	if c.Addr == "" {
		c.Addr = defaults.Addr
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = defaults.RetryLimit
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaults.RetryDelay
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: api key is required (set GEMINI_API_KEY)")
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("config error: 'retry_limit' must be non-negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("config error: retry delay must be non-negative")
	}
	return nil
}

// Load resolves the effective configuration: optional file, then
// environment, then defaults, then validation.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.FromEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
