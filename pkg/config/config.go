// Package config defines the library configuration, loaded from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// ToxicityConfig controls the screening behavior.
type ToxicityConfig struct {
	DefaultThreshold          float64 `yaml:"default_threshold"`
	DefaultEngine             string  `yaml:"default_engine"`
	AlwaysPrompt              bool    `yaml:"always_prompt"`
	MaxTextLength             int     `yaml:"max_text_length"`
	PerformanceMonitoring     bool    `yaml:"performance_monitoring"`
	LatencyWarningThresholdMS int     `yaml:"latency_warning_threshold_ms"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled                bool `yaml:"enabled"`
	MaxSize                int  `yaml:"max_size"`
	TTLSeconds             int  `yaml:"ttl_seconds"`
	CleanupIntervalSeconds int  `yaml:"cleanup_interval_seconds"`
}

// TTL returns the configured entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CleanupInterval returns the background cleanup period as a duration.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// MetricsConfig controls the metrics collector and accuracy tracker.
type MetricsConfig struct {
	Enabled          bool   `yaml:"enabled"`
	MaxSamples       int    `yaml:"max_samples"`
	StorageFile      string `yaml:"storage_file"`
	AccuracyTracking bool   `yaml:"accuracy_tracking"`
}

// EnginesConfig carries engine-specific settings.
type EnginesConfig struct {
	PerspectiveAPIKey         string `yaml:"perspective_api_key"`
	PerspectiveTimeoutSeconds int    `yaml:"perspective_timeout_seconds"`
	HeuristicEnabled          bool   `yaml:"heuristic_enabled"`
}

// PerspectiveTimeout returns the Perspective API timeout as a duration.
func (c EnginesConfig) PerspectiveTimeout() time.Duration {
	return time.Duration(c.PerspectiveTimeoutSeconds) * time.Second
}

// Config is the root configuration.
type Config struct {
	Toxicity ToxicityConfig `yaml:"toxicity"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Engines  EnginesConfig  `yaml:"engines"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Toxicity: ToxicityConfig{
			DefaultThreshold:          0.7,
			DefaultEngine:             "heuristic",
			AlwaysPrompt:              false,
			MaxTextLength:             10000,
			PerformanceMonitoring:     true,
			LatencyWarningThresholdMS: 50,
		},
		Cache: CacheConfig{
			Enabled:                true,
			MaxSize:                1000,
			TTLSeconds:             3600,
			CleanupIntervalSeconds: 300,
		},
		Metrics: MetricsConfig{
			Enabled:          true,
			MaxSamples:       10000,
			AccuracyTracking: true,
		},
		Engines: EnginesConfig{
			PerspectiveTimeoutSeconds: 10,
			HeuristicEnabled:          true,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Toxicity.DefaultThreshold < 0.0 || c.Toxicity.DefaultThreshold > 1.0 {
		return fmt.Errorf("toxicity.default_threshold must be between 0.0 and 1.0, got %v", c.Toxicity.DefaultThreshold)
	}
	if c.Toxicity.DefaultEngine == "" {
		return fmt.Errorf("toxicity.default_engine must not be empty")
	}
	if c.Toxicity.MaxTextLength < 0 {
		return fmt.Errorf("toxicity.max_text_length must not be negative, got %d", c.Toxicity.MaxTextLength)
	}
	if c.Toxicity.LatencyWarningThresholdMS < 0 {
		return fmt.Errorf("toxicity.latency_warning_threshold_ms must not be negative, got %d", c.Toxicity.LatencyWarningThresholdMS)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxSize <= 0 {
			return fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize)
		}
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
		}
		if c.Cache.CleanupIntervalSeconds < 0 {
			return fmt.Errorf("cache.cleanup_interval_seconds must not be negative, got %d", c.Cache.CleanupIntervalSeconds)
		}
	}
	if c.Metrics.Enabled && c.Metrics.MaxSamples <= 0 {
		return fmt.Errorf("metrics.max_samples must be positive, got %d", c.Metrics.MaxSamples)
	}
	if c.Engines.PerspectiveTimeoutSeconds <= 0 {
		return fmt.Errorf("engines.perspective_timeout_seconds must be positive, got %d", c.Engines.PerspectiveTimeoutSeconds)
	}
	return nil
}
