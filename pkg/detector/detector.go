// Package detector wires the toxicity engine, result cache, and metrics
// collector into the single screening entry point client integrations call.
package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sillycarz/reflectpause/pkg/cache"
	"github.com/sillycarz/reflectpause/pkg/config"
	"github.com/sillycarz/reflectpause/pkg/engine"
	"github.com/sillycarz/reflectpause/pkg/metrics"
	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

var (
	// ErrEmptyText is returned when the submitted text is empty or whitespace.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidThreshold is returned when a threshold falls outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")

	// ErrTextTooLong is returned when text exceeds the configured maximum.
	ErrTextTooLong = errors.New("text exceeds maximum length")
)

// Options override per-check behavior. Nil fields fall back to the
// configured defaults.
type Options struct {
	Threshold    *float64
	AlwaysPrompt *bool
}

// Result describes the outcome of a single screening call.
type Result struct {
	ShouldPrompt bool
	Score        float64
	Threshold    float64
	EngineType   string
	WasCached    bool
	DurationMS   float64
}

// Detector orchestrates toxicity screening. Construct with NewDetector.
type Detector struct {
	cfg       *config.Config
	engine    engine.Engine
	cache     *cache.ResultCache
	collector *metrics.Collector
}

// NewDetector builds a detector around eng. The cache and collector may be
// nil when the corresponding config sections disable them.
func NewDetector(cfg *config.Config, eng engine.Engine, resultCache *cache.ResultCache, collector *metrics.Collector) (*Detector, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	return &Detector{
		cfg:       cfg,
		engine:    eng,
		cache:     resultCache,
		collector: collector,
	}, nil
}

// Check screens text and reports whether a reflective prompt should be shown.
// Cached scores are reused when available; fresh analysis results are cached
// for subsequent calls.
func (d *Detector) Check(ctx context.Context, text string, opts Options) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}
	if max := d.cfg.Toxicity.MaxTextLength; max > 0 && len(text) > max {
		return Result{}, fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(text), max)
	}

	threshold := d.cfg.Toxicity.DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if threshold < 0.0 || threshold > 1.0 {
		return Result{}, ErrInvalidThreshold
	}

	alwaysPrompt := d.cfg.Toxicity.AlwaysPrompt
	if opts.AlwaysPrompt != nil {
		alwaysPrompt = *opts.AlwaysPrompt
	}
	if alwaysPrompt {
		logging.Infof("always-prompt enabled, skipping analysis")
		return Result{
			ShouldPrompt: true,
			Threshold:    threshold,
			EngineType:   d.engine.Type(),
		}, nil
	}

	start := time.Now()
	engineType := d.engine.Type()

	var (
		score     float64
		wasCached bool
	)
	if d.cache != nil {
		if cached, ok := d.cache.Get(text, engineType); ok {
			score = cached
			wasCached = true
		}
	}

	if !wasCached {
		analyzed, err := d.engine.Analyze(ctx, text)
		if err != nil {
			durationMS := float64(time.Since(start)) / float64(time.Millisecond)
			d.recordCheck(text, false, 0.0, threshold, engineType, durationMS, false, err)
			logging.Errorf("toxicity check failed: %v", err)
			return Result{}, &engine.Error{EngineType: engineType, Err: err}
		}
		score = analyzed
		if d.cache != nil {
			d.cache.Put(text, engineType, score)
		}
	}

	durationMS := float64(time.Since(start)) / float64(time.Millisecond)
	result := Result{
		ShouldPrompt: score > threshold,
		Score:        score,
		Threshold:    threshold,
		EngineType:   engineType,
		WasCached:    wasCached,
		DurationMS:   durationMS,
	}

	d.recordCheck(text, result.ShouldPrompt, score, threshold, engineType, durationMS, wasCached, nil)

	if wasCached {
		logging.Debugf("toxicity check (cached): score=%.3f threshold=%.2f duration=%.1fms", score, threshold, durationMS)
	} else {
		logging.Debugf("toxicity check (analyzed): score=%.3f threshold=%.2f duration=%.1fms", score, threshold, durationMS)
	}

	if d.cfg.Toxicity.PerformanceMonitoring && durationMS > float64(d.cfg.Toxicity.LatencyWarningThresholdMS) {
		logging.Warnf("toxicity check exceeded %dms latency target: %.1fms",
			d.cfg.Toxicity.LatencyWarningThresholdMS, durationMS)
	}

	return result, nil
}

// Engine returns the engine this detector analyzes with.
func (d *Detector) Engine() engine.Engine {
	return d.engine
}

func (d *Detector) recordCheck(text string, prompted bool, score, threshold float64, engineType string, durationMS float64, wasCached bool, err error) {
	if d.collector == nil {
		return
	}
	d.collector.RecordCheck(metrics.Check{
		Text:       text,
		Result:     prompted,
		Score:      score,
		Threshold:  threshold,
		EngineType: engineType,
		DurationMS: durationMS,
		WasCached:  wasCached,
		Err:        err,
	})
}
