package engine

import (
	"context"
	"strings"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// HeuristicType identifies the keyword-based engine.
const HeuristicType = "heuristic"

// Keyword severity weights. Scores are normalized by text length and
// amplified before capping so short toxic messages still register.
var keywordWeights = map[float64][]string{
	0.8: {"hate", "kill", "die", "threat", "murder", "violence"},
	0.5: {"stupid", "idiot", "awful", "terrible", "worst", "pathetic"},
	0.2: {"suck", "fail", "loser", "annoying", "dumb"},
}

// HeuristicEngine scores text with weighted keyword matching. It performs no
// I/O and is primarily a fallback when no model-backed engine is available.
type HeuristicEngine struct{}

// NewHeuristicEngine creates a HeuristicEngine.
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{}
}

func (e *HeuristicEngine) Type() string { return HeuristicType }

func (e *HeuristicEngine) Analyze(_ context.Context, text string) (float64, error) {
	lowered := strings.ToLower(text)
	totalWords := len(strings.Fields(text))
	if totalWords == 0 {
		return 0.0, nil
	}

	score := 0.0
	for weight, keywords := range keywordWeights {
		count := 0
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				count++
			}
		}
		score += float64(count) / float64(totalWords) * weight
	}

	// Amplify for sensitivity, cap at 1.0
	score = score * 2.0
	if score > 1.0 {
		score = 1.0
	}

	logging.Debugf("heuristic toxicity score: %.3f for %d words", score, totalWords)
	return score, nil
}
