// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL        string  `json:"base_url"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	RateLimit      float64 `json:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int     `json:"rate_burst"`

	// Output settings
	Format string `json:"format"`

	// TUI settings
	SearchDebounceMS int `json:"search_debounce_ms"`

	// Behavior preferences (overridable by flags)
	Verbose *int `json:"verbose,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL string
	Format  string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:          "http://localhost:3000/api",
		TimeoutSeconds:   30,
		RateLimit:        10,
		RateBurst:        5,
		Format:           "auto",
		SearchDebounceMS: 500,
		Sources:          make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, globalConfigPath(), SourceGlobal)
	if p := localConfigPath(); p != "" {
		loadFromFile(cfg, p, SourceLocal)
	}

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make the client unusable.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.SearchDebounceMS < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative, got %d", cfg.SearchDebounceMS)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// SearchDebounce returns how long the search input must be idle before
// the filter is applied.
func (cfg *Config) SearchDebounce() time.Duration {
	return time.Duration(cfg.SearchDebounceMS) * time.Millisecond
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	// base_url decides where the API token is sent, so a config file dropped
	// into a working directory must not be able to redirect it.
	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from local config at %s\n", v, path)
		} else {
			cfg.BaseURL = NormalizeBaseURL(v)
			cfg.Sources["base_url"] = string(source)
		}
	}
	if v, ok := fileCfg["format"].(string); ok && v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(source)
	}
	if v, ok := getInt(fileCfg, "timeout_seconds"); ok {
		cfg.TimeoutSeconds = v
		cfg.Sources["timeout_seconds"] = string(source)
	}
	if v, ok := getInt(fileCfg, "search_debounce_ms"); ok {
		cfg.SearchDebounceMS = v
		cfg.Sources["search_debounce_ms"] = string(source)
	}
	if v, ok := fileCfg["rate_limit"].(float64); ok && v >= 0 {
		cfg.RateLimit = v
		cfg.Sources["rate_limit"] = string(source)
	}
	if v, ok := getInt(fileCfg, "rate_burst"); ok && v > 0 {
		cfg.RateBurst = v
		cfg.Sources["rate_burst"] = string(source)
	}
	if v, ok := getInt(fileCfg, "verbose"); ok && v >= 0 && v <= 2 {
		cfg.Verbose = &v
		cfg.Sources["verbose"] = string(source)
	}
}

// getInt extracts a whole JSON number.
func getInt(m map[string]any, key string) (int, bool) {
	f, ok := m[key].(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// LoadFromEnv applies TODO_* environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_BASE_URL"); v != "" {
		cfg.BaseURL = NormalizeBaseURL(v)
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("TODO_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
	if v := os.Getenv("TODO_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
			cfg.Sources["timeout_seconds"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("TODO_SEARCH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearchDebounceMS = n
			cfg.Sources["search_debounce_ms"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("TODO_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RateLimit = f
			cfg.Sources["rate_limit"] = string(SourceEnv)
		}
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(o.BaseURL)
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// SourceOf returns where key was set, defaulting to "default".
func (cfg *Config) SourceOf(key string) string {
	if s, ok := cfg.Sources[key]; ok {
		return s
	}
	return string(SourceDefault)
}

// Path helpers

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

// localConfigPath returns ./.todo/config.json if it exists. Parent
// directories are not searched.
func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, ".todo", "config.json")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "todo")
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
