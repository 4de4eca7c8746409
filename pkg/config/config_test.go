package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.7, cfg.Toxicity.DefaultThreshold)
	assert.Equal(t, "heuristic", cfg.Toxicity.DefaultEngine)
	assert.False(t, cfg.Toxicity.AlwaysPrompt)
	assert.Equal(t, 10000, cfg.Toxicity.MaxTextLength)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 10000, cfg.Metrics.MaxSamples)

	require.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	t.Run("overrides defaults from file", func(t *testing.T) {
		path := writeConfig(t, `
toxicity:
  default_threshold: 0.5
  always_prompt: true
cache:
  max_size: 50
`)
		cfg, err := Parse(path)
		require.NoError(t, err)

		assert.Equal(t, 0.5, cfg.Toxicity.DefaultThreshold)
		assert.True(t, cfg.Toxicity.AlwaysPrompt)
		assert.Equal(t, 50, cfg.Cache.MaxSize)
		// Untouched fields keep their defaults
		assert.Equal(t, "heuristic", cfg.Toxicity.DefaultEngine)
		assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeConfig(t, "toxicity: [not a map")
		_, err := Parse(path)
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, `
toxicity:
  default_threshold: 1.5
`)
		_, err := Parse(path)
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0.7, cfg.Toxicity.DefaultThreshold)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "heuristic", cfg.Toxicity.DefaultEngine)
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REFLECTPAUSE_THRESHOLD", "0.3")
	t.Setenv("REFLECTPAUSE_ENGINE", "perspective")
	t.Setenv("REFLECTPAUSE_ALWAYS_PROMPT", "true")
	t.Setenv("REFLECTPAUSE_CACHE_MAX_SIZE", "25")
	t.Setenv("REFLECTPAUSE_PERSPECTIVE_API_KEY", "test-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Toxicity.DefaultThreshold)
	assert.Equal(t, "perspective", cfg.Toxicity.DefaultEngine)
	assert.True(t, cfg.Toxicity.AlwaysPrompt)
	assert.Equal(t, 25, cfg.Cache.MaxSize)
	assert.Equal(t, "test-key", cfg.Engines.PerspectiveAPIKey)
}

func TestEnvOverridesInvalidValuesIgnored(t *testing.T) {
	t.Setenv("REFLECTPAUSE_THRESHOLD", "not-a-number")
	t.Setenv("REFLECTPAUSE_ALWAYS_PROMPT", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Toxicity.DefaultThreshold)
	assert.False(t, cfg.Toxicity.AlwaysPrompt)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Toxicity.DefaultThreshold = 1.1 }},
		{"threshold below zero", func(c *Config) { c.Toxicity.DefaultThreshold = -0.1 }},
		{"empty engine", func(c *Config) { c.Toxicity.DefaultEngine = "" }},
		{"negative max text length", func(c *Config) { c.Toxicity.MaxTextLength = -1 }},
		{"zero cache size while enabled", func(c *Config) { c.Cache.MaxSize = 0 }},
		{"zero cache ttl while enabled", func(c *Config) { c.Cache.TTLSeconds = 0 }},
		{"zero metrics samples while enabled", func(c *Config) { c.Metrics.MaxSamples = 0 }},
		{"zero perspective timeout", func(c *Config) { c.Engines.PerspectiveTimeoutSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("disabled cache skips cache checks", func(t *testing.T) {
		cfg := Default()
		cfg.Cache.Enabled = false
		cfg.Cache.MaxSize = 0
		assert.NoError(t, cfg.Validate())
	})
}
