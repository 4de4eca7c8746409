// Package accuracy reconciles toxicity predictions against ground truth,
// maintaining per-engine confusion matrices and confidence calibration data.
package accuracy

// ConfusionMatrix holds the four-way prediction outcome counters for one
// engine.
type ConfusionMatrix struct {
	TruePositives  int64 `json:"true_positives"`
	TrueNegatives  int64 `json:"true_negatives"`
	FalsePositives int64 `json:"false_positives"`
	FalseNegatives int64 `json:"false_negatives"`
}

// TotalPredictions returns the total number of recorded predictions.
func (m ConfusionMatrix) TotalPredictions() int64 {
	return m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
}

// Accuracy returns the percentage of correct predictions, 0.0 with no data.
func Accuracy(m ConfusionMatrix) float64 {
	total := m.TotalPredictions()
	if total == 0 {
		return 0.0
	}
	return float64(m.TruePositives+m.TrueNegatives) / float64(total) * 100
}

// Precision returns TP/(TP+FP) as a percentage, 0.0 when nothing was
// predicted positive.
func Precision(m ConfusionMatrix) float64 {
	predicted := m.TruePositives + m.FalsePositives
	if predicted == 0 {
		return 0.0
	}
	return float64(m.TruePositives) / float64(predicted) * 100
}

// Recall returns TP/(TP+FN) as a percentage, 0.0 when nothing was actually
// positive.
func Recall(m ConfusionMatrix) float64 {
	actual := m.TruePositives + m.FalseNegatives
	if actual == 0 {
		return 0.0
	}
	return float64(m.TruePositives) / float64(actual) * 100
}

// F1Score returns the harmonic mean of precision and recall, 0.0 when both
// are zero.
func F1Score(m ConfusionMatrix) float64 {
	p := Precision(m)
	r := Recall(m)
	if p == 0 && r == 0 {
		return 0.0
	}
	return 2 * p * r / (p + r)
}

// FalsePositiveRate returns FP/(FP+TN) as a percentage, 0.0 when nothing
// was actually negative.
func FalsePositiveRate(m ConfusionMatrix) float64 {
	actualNegatives := m.TrueNegatives + m.FalsePositives
	if actualNegatives == 0 {
		return 0.0
	}
	return float64(m.FalsePositives) / float64(actualNegatives) * 100
}

// Outcome classifies a single prediction against ground truth.
type Outcome string

const (
	OutcomeCorrectPositive Outcome = "correct_positive"
	OutcomeCorrectNegative Outcome = "correct_negative"
	OutcomeFalsePositive   Outcome = "false_positive"
	OutcomeFalseNegative   Outcome = "false_negative"
)

// ClassifyOutcome maps (predicted, actual) to the matching outcome class.
func ClassifyOutcome(predictedToxic, actualToxic bool) Outcome {
	switch {
	case predictedToxic && actualToxic:
		return OutcomeCorrectPositive
	case !predictedToxic && !actualToxic:
		return OutcomeCorrectNegative
	case predictedToxic && !actualToxic:
		return OutcomeFalsePositive
	default:
		return OutcomeFalseNegative
	}
}

// apply increments the matrix counter matching the outcome.
func (m *ConfusionMatrix) apply(outcome Outcome) {
	switch outcome {
	case OutcomeCorrectPositive:
		m.TruePositives++
	case OutcomeCorrectNegative:
		m.TrueNegatives++
	case OutcomeFalsePositive:
		m.FalsePositives++
	case OutcomeFalseNegative:
		m.FalseNegatives++
	}
}
