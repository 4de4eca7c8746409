package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// Export formats understood by Collector.Export.
const (
	FormatDict       = "dict"
	FormatPrometheus = "prometheus"
)

// ErrUnsupportedFormat is returned by Export for unknown format strings.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// maxHourlyBuckets bounds the hourly breakdown to the most recent day.
const maxHourlyBuckets = 24

// Check describes one completed (or failed) toxicity check.
type Check struct {
	Text       string
	Result     bool
	Score      float64
	Threshold  float64
	EngineType string
	DurationMS float64
	WasCached  bool
	Err        error
}

// HourlyStats aggregates checks within one UTC hour.
type HourlyStats struct {
	TotalChecks     int64            `json:"total_checks"`
	ToxicDetected   int64            `json:"toxic_detected"`
	AvgScore        float64          `json:"avg_score"`
	AvgDurationMS   float64          `json:"avg_duration_ms"`
	EngineBreakdown map[string]int64 `json:"engine_breakdown"`
}

// SessionSummary reports collector lifetime information.
type SessionSummary struct {
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	LastReset     time.Time `json:"last_reset"`
}

// ToxicitySummary combines raw counters with their derived rates.
type ToxicitySummary struct {
	ToxicityMetrics
	ToxicityRate float64 `json:"toxicity_rate"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	ErrorRate    float64 `json:"error_rate"`
}

// PerformanceSummary reports derived latency statistics.
type PerformanceSummary struct {
	AvgResponseTimeMS  float64 `json:"avg_response_time_ms"`
	P95ResponseTimeMS  float64 `json:"p95_response_time_ms"`
	AvgCachedTimeMS    float64 `json:"avg_cached_time_ms"`
	AvgAnalyzedTimeMS  float64 `json:"avg_analyzed_time_ms"`
	CacheSpeedupFactor float64 `json:"cache_speedup_factor"`
	TotalSamples       int     `json:"total_samples"`
}

// EngineSummary reports one engine's share of the traffic.
type EngineSummary struct {
	TotalChecks   int64   `json:"total_checks"`
	ToxicDetected int64   `json:"toxic_detected"`
	ToxicityRate  float64 `json:"toxicity_rate"`
	ErrorRate     float64 `json:"error_rate"`
}

// Summary is the composite snapshot returned by the collector.
type Summary struct {
	Session     SessionSummary           `json:"session"`
	Toxicity    ToxicitySummary          `json:"toxicity"`
	Performance PerformanceSummary       `json:"performance"`
	Engines     map[string]EngineSummary `json:"engines"`
}

// Collector accumulates toxicity check outcomes. One mutex guards all state;
// every method is safe for concurrent use.
type Collector struct {
	mu         sync.Mutex
	maxSamples int

	toxicity    ToxicityMetrics
	performance PerformanceMetrics
	engineStats map[string]*ToxicityMetrics
	hourlyStats map[string]*HourlyStats

	sessionStart time.Time
	lastReset    time.Time

	now func() time.Time
}

// NewCollector creates a Collector keeping at most maxSamples latency
// samples per series.
func NewCollector(maxSamples int) *Collector {
	now := time.Now().UTC()
	return &Collector{
		maxSamples:   maxSamples,
		engineStats:  make(map[string]*ToxicityMetrics),
		hourlyStats:  make(map[string]*HourlyStats),
		sessionStart: now,
		lastReset:    now,
		now:          time.Now,
	}
}

// RecordCheck folds one check outcome into the counters. A failed check
// increments only the total and error counters; no toxic/cache/latency
// breakdown is recorded for it.
func (c *Collector) RecordCheck(chk Check) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toxicity.TotalChecks++

	if chk.Err != nil {
		c.toxicity.EngineErrors++
		EngineErrorsTotal.WithLabelValues(chk.EngineType).Inc()
		logging.Warnf("engine error recorded: %v", chk.Err)
		return
	}

	if chk.Result {
		c.toxicity.ToxicDetected++
		ToxicDetectedTotal.WithLabelValues(chk.EngineType).Inc()
	} else {
		c.toxicity.NonToxicDetected++
	}

	if chk.WasCached {
		c.toxicity.CacheHits++
	} else {
		c.toxicity.CacheMisses++
	}

	c.performance.ResponseTimes = append(c.performance.ResponseTimes, chk.DurationMS)
	if chk.WasCached {
		c.performance.CachedResponseTimes = append(c.performance.CachedResponseTimes, chk.DurationMS)
	} else {
		c.performance.AnalyzedResponseTimes = append(c.performance.AnalyzedResponseTimes, chk.DurationMS)
	}
	c.trimSamples()

	engine := c.engineStats[chk.EngineType]
	if engine == nil {
		engine = &ToxicityMetrics{}
		c.engineStats[chk.EngineType] = engine
	}
	engine.TotalChecks++
	if chk.Result {
		engine.ToxicDetected++
	} else {
		engine.NonToxicDetected++
	}

	c.updateHourlyStats(chk)

	cached := boolLabel(chk.WasCached)
	ChecksTotal.WithLabelValues(chk.EngineType, cached).Inc()
	CheckDuration.WithLabelValues(chk.EngineType, cached).Observe(chk.DurationMS / 1000)
	ToxicityScore.WithLabelValues(chk.EngineType).Observe(chk.Score)

	logging.Debugf("recorded toxicity check: result=%v, score=%.3f, engine=%s, duration=%.1fms, cached=%v",
		chk.Result, chk.Score, chk.EngineType, chk.DurationMS, chk.WasCached)
}

// Summary returns a consistent snapshot of everything the collector tracks.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	engines := make(map[string]EngineSummary, len(c.engineStats))
	for name, m := range c.engineStats {
		engines[name] = EngineSummary{
			TotalChecks:   m.TotalChecks,
			ToxicDetected: m.ToxicDetected,
			ToxicityRate:  ToxicityRate(*m),
			ErrorRate:     ErrorRate(*m),
		}
	}

	return Summary{
		Session: SessionSummary{
			UptimeSeconds: c.now().UTC().Sub(c.sessionStart).Seconds(),
			StartTime:     c.sessionStart,
			LastReset:     c.lastReset,
		},
		Toxicity: ToxicitySummary{
			ToxicityMetrics: c.toxicity,
			ToxicityRate:    ToxicityRate(c.toxicity),
			CacheHitRate:    CacheHitRate(c.toxicity),
			ErrorRate:       ErrorRate(c.toxicity),
		},
		Performance: PerformanceSummary{
			AvgResponseTimeMS:  Average(c.performance.ResponseTimes),
			P95ResponseTimeMS:  Percentile95(c.performance.ResponseTimes),
			AvgCachedTimeMS:    Average(c.performance.CachedResponseTimes),
			AvgAnalyzedTimeMS:  Average(c.performance.AnalyzedResponseTimes),
			CacheSpeedupFactor: CacheSpeedup(c.performance),
			TotalSamples:       len(c.performance.ResponseTimes),
		},
		Engines: engines,
	}
}

// HourlyBreakdown returns a copy of the hourly buckets, keyed by UTC
// "2006-01-02-15".
func (c *Collector) HourlyBreakdown() map[string]HourlyStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]HourlyStats, len(c.hourlyStats))
	for key, stats := range c.hourlyStats {
		breakdown := make(map[string]int64, len(stats.EngineBreakdown))
		for engine, count := range stats.EngineBreakdown {
			breakdown[engine] = count
		}
		copied := *stats
		copied.EngineBreakdown = breakdown
		out[key] = copied
	}
	return out
}

// Reset clears all counters and series. The session start timestamp is
// preserved; only the reset timestamp moves.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toxicity = ToxicityMetrics{}
	c.performance = PerformanceMetrics{}
	c.engineStats = make(map[string]*ToxicityMetrics)
	c.hourlyStats = make(map[string]*HourlyStats)
	c.lastReset = c.now().UTC()

	logging.Infof("metrics reset")
}

// Export returns the metrics in the requested format: FormatDict yields the
// structured Summary, FormatPrometheus a flat key-value map for external
// scraping. Unknown formats fail with ErrUnsupportedFormat.
func (c *Collector) Export(format string) (interface{}, error) {
	switch format {
	case FormatDict:
		return c.Summary(), nil
	case FormatPrometheus:
		return c.flatExport(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (c *Collector) flatExport() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]string{
		"reflectpause_toxicity_checks_total": fmt.Sprintf("%d", c.toxicity.TotalChecks),
		"reflectpause_toxic_detected_total":  fmt.Sprintf("%d", c.toxicity.ToxicDetected),
		"reflectpause_toxicity_rate":         fmt.Sprintf("%g", ToxicityRate(c.toxicity)/100),
		"reflectpause_cache_hits_total":      fmt.Sprintf("%d", c.toxicity.CacheHits),
		"reflectpause_cache_hit_rate":        fmt.Sprintf("%g", CacheHitRate(c.toxicity)/100),
		"reflectpause_engine_errors_total":   fmt.Sprintf("%d", c.toxicity.EngineErrors),
		"reflectpause_response_time_avg_ms":  fmt.Sprintf("%g", Average(c.performance.ResponseTimes)),
		"reflectpause_response_time_p95_ms":  fmt.Sprintf("%g", Percentile95(c.performance.ResponseTimes)),
		"reflectpause_cache_speedup_factor":  fmt.Sprintf("%g", CacheSpeedup(c.performance)),
	}
}

// trimSamples bounds the series. The overall series keeps maxSamples; the
// cached/analyzed sub-series each keep half. Caller holds the lock.
func (c *Collector) trimSamples() {
	c.performance.ResponseTimes = trim(c.performance.ResponseTimes, c.maxSamples)
	c.performance.CachedResponseTimes = trim(c.performance.CachedResponseTimes, c.maxSamples/2)
	c.performance.AnalyzedResponseTimes = trim(c.performance.AnalyzedResponseTimes, c.maxSamples/2)
}

// updateHourlyStats folds the check into its UTC hour bucket using running
// averages. Caller holds the lock.
func (c *Collector) updateHourlyStats(chk Check) {
	hourKey := c.now().UTC().Format("2006-01-02-15")

	stats := c.hourlyStats[hourKey]
	if stats == nil {
		stats = &HourlyStats{EngineBreakdown: make(map[string]int64)}
		c.hourlyStats[hourKey] = stats
	}

	// Incremental running average: avg' = (avg*n + x) / (n+1)
	n := float64(stats.TotalChecks)
	stats.AvgScore = (stats.AvgScore*n + chk.Score) / (n + 1)
	stats.AvgDurationMS = (stats.AvgDurationMS*n + chk.DurationMS) / (n + 1)

	stats.TotalChecks++
	if chk.Result {
		stats.ToxicDetected++
	}
	stats.EngineBreakdown[chk.EngineType]++

	if len(c.hourlyStats) > maxHourlyBuckets {
		keys := make([]string, 0, len(c.hourlyStats))
		for key := range c.hourlyStats {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		delete(c.hourlyStats, keys[0])
	}
}
