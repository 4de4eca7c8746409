package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/cache"
	"github.com/sillycarz/reflectpause/pkg/config"
	"github.com/sillycarz/reflectpause/pkg/detector"
	"github.com/sillycarz/reflectpause/pkg/engine"
	"github.com/sillycarz/reflectpause/pkg/metrics"
)

// runtime bundles the components a CLI invocation needs. Each invocation
// builds a fresh runtime from the configuration.
type runtime struct {
	cfg       *config.Config
	detector  *detector.Detector
	cache     *cache.ResultCache
	collector *metrics.Collector
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newRuntime(cmd *cobra.Command, engineOverride string) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	engineType := cfg.Toxicity.DefaultEngine
	if engineOverride != "" {
		engineType = engineOverride
	}

	registry := engine.NewRegistry()
	registry.Register(engine.HeuristicType, func() (engine.Engine, error) {
		return engine.NewHeuristicEngine(), nil
	})
	registry.Register(engine.PerspectiveType, func() (engine.Engine, error) {
		perspective, err := engine.NewPerspectiveEngine(engine.PerspectiveOptions{
			APIKey:  cfg.Engines.PerspectiveAPIKey,
			Timeout: cfg.Engines.PerspectiveTimeout(),
		})
		if err != nil {
			return nil, err
		}
		return perspective, nil
	})

	eng, err := registry.Create(engineType)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine %q: %w", engineType, err)
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache = cache.New(cache.Options{
			MaxSize: cfg.Cache.MaxSize,
			TTL:     cfg.Cache.TTL(),
		})
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.MaxSamples)
	}

	d, err := detector.NewDetector(cfg, eng, resultCache, collector)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:       cfg,
		detector:  d,
		cache:     resultCache,
		collector: collector,
	}, nil
}

// detectorOptions translates check flags into per-call overrides, leaving
// unset flags to fall back on config defaults.
func detectorOptions(cmd *cobra.Command) detector.Options {
	var opts detector.Options
	if cmd.Flags().Changed("threshold") {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		opts.Threshold = &threshold
	}
	if cmd.Flags().Changed("always-prompt") {
		always, _ := cmd.Flags().GetBool("always-prompt")
		opts.AlwaysPrompt = &always
	}
	return opts
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}
