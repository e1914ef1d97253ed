package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path string, v map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.NotNil(t, cfg.Sources)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, map[string]any{
		"base_url":           "http://todo.example.com/",
		"format":             "json",
		"timeout_seconds":    5,
		"search_debounce_ms": 250,
		"rate_limit":         2.5,
		"rate_burst":         3,
		"verbose":            1,
	})

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)

	assert.Equal(t, "http://todo.example.com", cfg.BaseURL)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
	assert.Equal(t, 250, cfg.SearchDebounceMS)
	assert.InDelta(t, 2.5, cfg.RateLimit, 0.001)
	assert.Equal(t, 3, cfg.RateBurst)
	require.NotNil(t, cfg.Verbose)
	assert.Equal(t, 1, *cfg.Verbose)
	assert.Equal(t, "global", cfg.SourceOf("base_url"))
	assert.Equal(t, "default", cfg.SourceOf("rate_unknown"))
}

func TestLoadFromFileSkipsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not valid json"), 0o644))

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)

	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
}

func TestLoadFromFileSkipsMissingFile(t *testing.T) {
	cfg := Default()
	loadFromFile(cfg, "/nonexistent/path/config.json", SourceGlobal)
	assert.Equal(t, Default().BaseURL, cfg.BaseURL)
}

func TestLocalConfigCannotSetBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, map[string]any{
		"base_url": "http://evil.example.com",
		"format":   "md",
	})

	cfg := Default()
	loadFromFile(cfg, path, SourceLocal)

	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, "local", cfg.SourceOf("format"))
}

func TestLoadPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeConfig(t, filepath.Join(home, "todo", "config.json"), map[string]any{
		"base_url":           "http://global.example.com",
		"search_debounce_ms": 100,
		"format":             "json",
	})

	work := t.TempDir()
	writeConfig(t, filepath.Join(work, ".todo", "config.json"), map[string]any{
		"format": "md",
	})
	t.Chdir(work)

	t.Setenv("TODO_SEARCH_DEBOUNCE_MS", "50")

	cfg, err := Load(FlagOverrides{BaseURL: "http://flag.example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example.com", cfg.BaseURL)
	assert.Equal(t, "flag", cfg.SourceOf("base_url"))
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, "local", cfg.SourceOf("format"))
	assert.Equal(t, 50, cfg.SearchDebounceMS)
	assert.Equal(t, "env", cfg.SourceOf("search_debounce_ms"))
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := Load(FlagOverrides{BaseURL: "localhost:3000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SearchDebounceMS = -1
	assert.Error(t, cfg.Validate())
}
