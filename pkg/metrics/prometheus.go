package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus mirrors of the collector counters. Callers that expose a
// /metrics endpoint get these for free; the collector's own Export covers
// scrapers that want the flat textual form instead.
var (
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflectpause_toxicity_checks_total",
			Help: "Total number of toxicity checks performed",
		},
		[]string{"engine", "cached"},
	)

	ToxicDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflectpause_toxic_detected_total",
			Help: "Total number of checks classified as toxic",
		},
		[]string{"engine"},
	)

	EngineErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflectpause_engine_errors_total",
			Help: "Total number of failed engine analyze calls",
		},
		[]string{"engine"},
	)

	CheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reflectpause_check_duration_seconds",
			Help:    "Duration of toxicity checks in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"engine", "cached"},
	)

	ToxicityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reflectpause_toxicity_score",
			Help:    "Distribution of toxicity scores returned by engines",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"engine"},
	)
)

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
