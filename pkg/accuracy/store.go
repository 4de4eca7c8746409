package accuracy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Observation is one (confidence, ground truth) pair within a bucket.
type Observation struct {
	Score       float64 `json:"score"`
	ActualToxic bool    `json:"actual_toxic"`
}

// FeedbackRecord is one immutable entry in the feedback history.
type FeedbackRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	TextFingerprint string    `json:"text_fingerprint"`
	PredictedToxic  bool      `json:"predicted_toxic"`
	ActualToxic     bool      `json:"actual_toxic"`
	EngineType      string    `json:"engine_type"`
	Outcome         Outcome   `json:"outcome"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
}

// State is the full persistable tracker state. All fields are plain
// JSON-serializable collections.
type State struct {
	EngineMetrics     map[string]ConfusionMatrix `json:"engine_metrics"`
	FeedbackHistory   []FeedbackRecord           `json:"feedback_history"`
	GroundTruth       map[string]bool            `json:"ground_truth"`
	ConfidenceBuckets map[string][]Observation   `json:"confidence_buckets"`
}

// Store persists tracker state. Load returns (nil, nil) when no prior state
// exists.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStore persists tracker state as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read accuracy data: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode accuracy data: %w", err)
	}
	return &state, nil
}

func (s *FileStore) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accuracy data: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create accuracy data directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write accuracy data: %w", err)
	}
	return nil
}
