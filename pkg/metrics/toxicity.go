// Package metrics aggregates per-check outcomes into running counters,
// latency distributions, and hourly breakdowns.
package metrics

// ToxicityMetrics holds the raw outcome counters for one scope (global or
// per-engine). Derived ratios are computed by the pure functions below and
// never stored.
type ToxicityMetrics struct {
	TotalChecks      int64 `json:"total_checks"`
	ToxicDetected    int64 `json:"toxic_detected"`
	NonToxicDetected int64 `json:"non_toxic_detected"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	EngineErrors     int64 `json:"engine_errors"`
}

// ToxicityRate returns the percentage of checks classified toxic, 0.0 when
// no checks were recorded.
func ToxicityRate(m ToxicityMetrics) float64 {
	if m.TotalChecks == 0 {
		return 0.0
	}
	return float64(m.ToxicDetected) / float64(m.TotalChecks) * 100
}

// CacheHitRate returns the percentage of checks served from cache, 0.0 when
// no cache lookups were recorded.
func CacheHitRate(m ToxicityMetrics) float64 {
	attempts := m.CacheHits + m.CacheMisses
	if attempts == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(attempts) * 100
}

// ErrorRate returns the percentage of checks that failed in the engine, 0.0
// when no checks were recorded.
func ErrorRate(m ToxicityMetrics) float64 {
	if m.TotalChecks == 0 {
		return 0.0
	}
	return float64(m.EngineErrors) / float64(m.TotalChecks) * 100
}
