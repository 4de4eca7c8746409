package metrics

import "sort"

// PerformanceMetrics holds bounded latency sample series in milliseconds.
// Samples are appended in arrival order and trimmed oldest-first once the
// configured cap is exceeded.
type PerformanceMetrics struct {
	ResponseTimes         []float64
	CachedResponseTimes   []float64
	AnalyzedResponseTimes []float64
}

// Average returns the mean of the samples, 0.0 for an empty series.
func Average(samples []float64) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// Percentile95 returns the 95th percentile of the samples by sorting a copy.
// A single-sample series returns that sample.
func Percentile95(samples []float64) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	if len(samples) == 1 {
		return samples[0]
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	index := int(0.95 * float64(len(sorted)))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// CacheSpeedup returns how much faster cached lookups are than full engine
// analysis. With either series empty there is nothing to compare, so the
// factor defaults to 1.0.
func CacheSpeedup(p PerformanceMetrics) float64 {
	if len(p.CachedResponseTimes) == 0 || len(p.AnalyzedResponseTimes) == 0 {
		return 1.0
	}
	cached := Average(p.CachedResponseTimes)
	if cached == 0 {
		return 1.0
	}
	return Average(p.AnalyzedResponseTimes) / cached
}

// trim drops the oldest samples so the series holds at most max entries.
func trim(samples []float64, max int) []float64 {
	if len(samples) <= max {
		return samples
	}
	return samples[len(samples)-max:]
}
