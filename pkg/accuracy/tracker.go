package accuracy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// ErrNoData is returned when metrics are requested for an engine that has
// never received feedback, so callers can tell "never measured" apart from
// "measured and perfect".
var ErrNoData = errors.New("no accuracy data for engine")

// Feedback is one ground-truth observation for a past prediction.
type Feedback struct {
	Text           string
	PredictedToxic bool
	ActualToxic    bool
	EngineType     string
	// Confidence is the engine's raw score for this text, when known.
	Confidence *float64
}

// Prediction is one item in a batch validation request.
type Prediction struct {
	Text           string
	PredictedToxic bool
	EngineType     string
	Confidence     float64
}

// ValidationDetail reports one matched prediction.
type ValidationDetail struct {
	TextFingerprint string  `json:"text_fingerprint"`
	Predicted       bool    `json:"predicted"`
	Actual          bool    `json:"actual"`
	Correct         bool    `json:"correct"`
	EngineType      string  `json:"engine_type"`
	Confidence      float64 `json:"confidence"`
}

// ValidationResult aggregates a batch validation. Predictions without prior
// ground truth are excluded from the denominator.
type ValidationResult struct {
	TotalValidated int                `json:"total_validated"`
	Correct        int                `json:"correct"`
	Accuracy       float64            `json:"accuracy"`
	Details        []ValidationDetail `json:"details"`
}

// EngineAccuracy is the derived metrics snapshot for one engine.
type EngineAccuracy struct {
	EngineType        string          `json:"engine_type"`
	TotalPredictions  int64           `json:"total_predictions"`
	Accuracy          float64         `json:"accuracy"`
	Precision         float64         `json:"precision"`
	Recall            float64         `json:"recall"`
	F1Score           float64         `json:"f1_score"`
	FalsePositiveRate float64         `json:"false_positive_rate"`
	ConfusionMatrix   ConfusionMatrix `json:"confusion_matrix"`
}

// BucketAnalysis reports calibration within one confidence bucket. Accuracy
// here measures whether the raw score thresholded at the fixed 0.5 midpoint
// agrees with ground truth, independent of the operational threshold.
type BucketAnalysis struct {
	TotalPredictions int     `json:"total_predictions"`
	Accuracy         float64 `json:"accuracy"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// Tracker records prediction feedback and derives per-engine accuracy. One
// mutex guards all state. When a Store is configured, every mutation is
// written through; save failures leave the in-memory state intact.
type Tracker struct {
	mu            sync.Mutex
	engineMetrics map[string]*ConfusionMatrix
	history       []FeedbackRecord
	groundTruth   map[string]bool
	buckets       map[string][]Observation
	store         Store

	now func() time.Time
}

// NewTracker creates a Tracker, loading prior state from store when one is
// given. Corrupt or unreadable stored data is logged and treated as empty
// state; construction never fails because of it.
func NewTracker(store Store) *Tracker {
	t := &Tracker{
		engineMetrics: make(map[string]*ConfusionMatrix),
		groundTruth:   make(map[string]bool),
		buckets:       make(map[string][]Observation),
		store:         store,
		now:           time.Now,
	}

	if store != nil {
		state, err := store.Load()
		switch {
		case err != nil:
			logging.Errorf("failed to load accuracy data, starting empty: %v", err)
		case state != nil:
			for engine, matrix := range state.EngineMetrics {
				m := matrix
				t.engineMetrics[engine] = &m
			}
			t.history = append(t.history, state.FeedbackHistory...)
			for fp, toxic := range state.GroundTruth {
				t.groundTruth[fp] = toxic
			}
			for bucket, observations := range state.ConfidenceBuckets {
				t.buckets[bucket] = append([]Observation(nil), observations...)
			}
			logging.Infof("loaded accuracy data: %d engines, %d feedback records",
				len(t.engineMetrics), len(t.history))
		}
	}
	return t
}

// RecordFeedback classifies the prediction against ground truth, updates the
// engine's confusion matrix, appends to the history, upserts the ground
// truth table, and persists. The returned error only reports a persistence
// failure; the in-memory update has already been applied.
func (t *Tracker) RecordFeedback(fb Feedback) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	outcome := ClassifyOutcome(fb.PredictedToxic, fb.ActualToxic)

	matrix := t.engineMetrics[fb.EngineType]
	if matrix == nil {
		matrix = &ConfusionMatrix{}
		t.engineMetrics[fb.EngineType] = matrix
	}
	matrix.apply(outcome)

	fingerprint := fingerprintText(fb.Text)
	t.history = append(t.history, FeedbackRecord{
		Timestamp:       t.now().UTC(),
		TextFingerprint: fingerprint,
		PredictedToxic:  fb.PredictedToxic,
		ActualToxic:     fb.ActualToxic,
		EngineType:      fb.EngineType,
		Outcome:         outcome,
		ConfidenceScore: fb.Confidence,
	})

	t.groundTruth[fingerprint] = fb.ActualToxic

	if fb.Confidence != nil {
		bucket := bucketFor(*fb.Confidence)
		t.buckets[bucket] = append(t.buckets[bucket], Observation{
			Score:       *fb.Confidence,
			ActualToxic: fb.ActualToxic,
		})
	}

	logging.Infof("recorded feedback: %s for %s (predicted: %v, actual: %v)",
		outcome, fb.EngineType, fb.PredictedToxic, fb.ActualToxic)

	return t.persistLocked()
}

// Metrics returns the derived accuracy metrics for one engine, including
// its raw confusion matrix. ErrNoData is returned for an unknown engine.
func (t *Tracker) Metrics(engineType string) (EngineAccuracy, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	matrix := t.engineMetrics[engineType]
	if matrix == nil {
		return EngineAccuracy{}, fmt.Errorf("%w: %s", ErrNoData, engineType)
	}
	return deriveAccuracy(engineType, *matrix), nil
}

// AllMetrics returns the derived metrics for every engine with feedback.
func (t *Tracker) AllMetrics() map[string]EngineAccuracy {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]EngineAccuracy, len(t.engineMetrics))
	for engine, matrix := range t.engineMetrics {
		out[engine] = deriveAccuracy(engine, *matrix)
	}
	return out
}

// ConfidenceAnalysis returns per-bucket calibration statistics.
func (t *Tracker) ConfidenceAnalysis() map[string]BucketAnalysis {
	t.mu.Lock()
	defer t.mu.Unlock()

	analysis := make(map[string]BucketAnalysis, len(t.buckets))
	for bucket, observations := range t.buckets {
		if len(observations) == 0 {
			continue
		}

		correct := 0
		sum := 0.0
		for _, obs := range observations {
			// Fixed 0.5 midpoint: calibration of the raw score, not of
			// the operational threshold
			if (obs.Score > 0.5) == obs.ActualToxic {
				correct++
			}
			sum += obs.Score
		}

		total := len(observations)
		analysis[bucket] = BucketAnalysis{
			TotalPredictions: total,
			Accuracy:         float64(correct) / float64(total) * 100,
			AvgConfidence:    sum / float64(total),
		}
	}
	return analysis
}

// FeedbackSummary returns the most recent limit feedback records in
// insertion order.
func (t *Tracker) FeedbackSummary(limit int) []FeedbackRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || len(t.history) == 0 {
		return nil
	}
	start := len(t.history) - limit
	if start < 0 {
		start = 0
	}
	return append([]FeedbackRecord(nil), t.history[start:]...)
}

// ValidatePredictions cross-checks each prediction against stored ground
// truth. Predictions whose text has no recorded ground truth are silently
// excluded.
func (t *Tracker) ValidatePredictions(predictions []Prediction) ValidationResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result ValidationResult
	for _, pred := range predictions {
		fingerprint := fingerprintText(pred.Text)
		actual, ok := t.groundTruth[fingerprint]
		if !ok {
			continue
		}

		correct := pred.PredictedToxic == actual
		result.TotalValidated++
		if correct {
			result.Correct++
		}
		result.Details = append(result.Details, ValidationDetail{
			TextFingerprint: fingerprint,
			Predicted:       pred.PredictedToxic,
			Actual:          actual,
			Correct:         correct,
			EngineType:      pred.EngineType,
			Confidence:      pred.Confidence,
		})
	}

	if result.TotalValidated > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.TotalValidated) * 100
	}
	return result
}

// ExportGroundTruth returns a copy of the ground-truth table.
func (t *Tracker) ExportGroundTruth() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]bool, len(t.groundTruth))
	for fp, toxic := range t.groundTruth {
		out[fp] = toxic
	}
	return out
}

// ImportGroundTruth merges externally sourced ground truth. Existing
// entries are authoritative and never overwritten. Returns the number of
// entries actually imported.
func (t *Tracker) ImportGroundTruth(groundTruth map[string]bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	imported := 0
	for fp, toxic := range groundTruth {
		if _, exists := t.groundTruth[fp]; !exists {
			t.groundTruth[fp] = toxic
			imported++
		}
	}
	return imported, t.persistLocked()
}

// Reset drops one engine's metrics and feedback records, or clears all
// structures when engineType is empty.
func (t *Tracker) Reset(engineType string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if engineType != "" {
		delete(t.engineMetrics, engineType)
		kept := t.history[:0]
		for _, record := range t.history {
			if record.EngineType != engineType {
				kept = append(kept, record)
			}
		}
		t.history = kept
	} else {
		t.engineMetrics = make(map[string]*ConfusionMatrix)
		t.history = nil
		t.groundTruth = make(map[string]bool)
		t.buckets = make(map[string][]Observation)
	}
	return t.persistLocked()
}

// persistLocked writes through to the store. Caller holds the lock; the
// write-through is an accepted blocking cost of this component's write path.
func (t *Tracker) persistLocked() error {
	if t.store == nil {
		return nil
	}

	state := &State{
		EngineMetrics:     make(map[string]ConfusionMatrix, len(t.engineMetrics)),
		FeedbackHistory:   append([]FeedbackRecord(nil), t.history...),
		GroundTruth:       make(map[string]bool, len(t.groundTruth)),
		ConfidenceBuckets: make(map[string][]Observation, len(t.buckets)),
	}
	for engine, matrix := range t.engineMetrics {
		state.EngineMetrics[engine] = *matrix
	}
	for fp, toxic := range t.groundTruth {
		state.GroundTruth[fp] = toxic
	}
	for bucket, observations := range t.buckets {
		state.ConfidenceBuckets[bucket] = append([]Observation(nil), observations...)
	}

	if err := t.store.Save(state); err != nil {
		logging.Errorf("failed to save accuracy data: %v", err)
		return err
	}
	return nil
}

func deriveAccuracy(engineType string, m ConfusionMatrix) EngineAccuracy {
	return EngineAccuracy{
		EngineType:        engineType,
		TotalPredictions:  m.TotalPredictions(),
		Accuracy:          Accuracy(m),
		Precision:         Precision(m),
		Recall:            Recall(m),
		F1Score:           F1Score(m),
		FalsePositiveRate: FalsePositiveRate(m),
		ConfusionMatrix:   m,
	}
}

// fingerprintText digests raw text so ground truth never retains content.
func fingerprintText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// bucketFor maps a confidence score to its half-open 0.2-wide bucket; the
// top bucket is closed at 1.0.
func bucketFor(score float64) string {
	switch {
	case score < 0.2:
		return "0.0-0.2"
	case score < 0.4:
		return "0.2-0.4"
	case score < 0.6:
		return "0.4-0.6"
	case score < 0.8:
		return "0.6-0.8"
	default:
		return "0.8-1.0"
	}
}
