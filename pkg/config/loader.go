package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// Parse reads and validates a YAML config file. Missing fields keep their
// defaults; environment overrides are applied after the file is read.
func Parse(configPath string) (*Config, error) {
	// Resolve symlinks to handle mounted config directories
	resolved, _ := filepath.EvalSymlinks(configPath)
	if resolved == "" {
		resolved = configPath
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load returns the configuration from configPath, falling back to defaults
// (plus environment overrides) when the file does not exist.
func Load(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return Parse(configPath)
		}
		logging.Infof("no configuration file at %s, using defaults", configPath)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments tweak the most commonly
// adjusted settings without a config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REFLECTPAUSE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Toxicity.DefaultThreshold = f
		} else {
			logging.Warnf("ignoring invalid REFLECTPAUSE_THRESHOLD=%q: %v", v, err)
		}
	}
	if v := os.Getenv("REFLECTPAUSE_ENGINE"); v != "" {
		cfg.Toxicity.DefaultEngine = v
	}
	if v := os.Getenv("REFLECTPAUSE_ALWAYS_PROMPT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Toxicity.AlwaysPrompt = b
		} else {
			logging.Warnf("ignoring invalid REFLECTPAUSE_ALWAYS_PROMPT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("REFLECTPAUSE_CACHE_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxSize = n
		} else {
			logging.Warnf("ignoring invalid REFLECTPAUSE_CACHE_MAX_SIZE=%q: %v", v, err)
		}
	}
	if v := os.Getenv("REFLECTPAUSE_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		} else {
			logging.Warnf("ignoring invalid REFLECTPAUSE_CACHE_TTL_SECONDS=%q: %v", v, err)
		}
	}
	if v := os.Getenv("REFLECTPAUSE_PERSPECTIVE_API_KEY"); v != "" {
		cfg.Engines.PerspectiveAPIKey = v
	}
}
