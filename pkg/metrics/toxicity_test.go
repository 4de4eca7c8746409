package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedRatesZeroDenominator(t *testing.T) {
	var m ToxicityMetrics

	assert.Equal(t, 0.0, ToxicityRate(m))
	assert.Equal(t, 0.0, CacheHitRate(m))
	assert.Equal(t, 0.0, ErrorRate(m))
}

func TestDerivedRates(t *testing.T) {
	m := ToxicityMetrics{
		TotalChecks:      10,
		ToxicDetected:    3,
		NonToxicDetected: 7,
		CacheHits:        4,
		CacheMisses:      6,
		EngineErrors:     2,
	}

	assert.InDelta(t, 30.0, ToxicityRate(m), 1e-9)
	assert.InDelta(t, 40.0, CacheHitRate(m), 1e-9)
	assert.InDelta(t, 20.0, ErrorRate(m), 1e-9)
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 5.0, Average([]float64{5}))
	assert.InDelta(t, 2.0, Average([]float64{1, 2, 3}), 1e-9)
}

func TestPercentile95(t *testing.T) {
	assert.Equal(t, 0.0, Percentile95(nil))

	// Single sample returns that sample
	assert.Equal(t, 42.0, Percentile95([]float64{42}))

	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i + 1)
	}
	p95 := Percentile95(samples)
	assert.Equal(t, 96.0, p95)
	assert.False(t, math.IsNaN(p95))

	// Input order must not matter
	reversed := make([]float64, len(samples))
	for i, s := range samples {
		reversed[len(samples)-1-i] = s
	}
	assert.Equal(t, p95, Percentile95(reversed))
}

func TestCacheSpeedupZeroSeries(t *testing.T) {
	assert.Equal(t, 1.0, CacheSpeedup(PerformanceMetrics{}))
	assert.Equal(t, 1.0, CacheSpeedup(PerformanceMetrics{
		CachedResponseTimes: []float64{1, 2},
	}))
	assert.Equal(t, 1.0, CacheSpeedup(PerformanceMetrics{
		AnalyzedResponseTimes: []float64{10, 20},
	}))
}
