package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// PerspectiveType identifies the Comment Analyzer HTTP engine.
const PerspectiveType = "perspective"

const defaultPerspectiveURL = "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"

// ErrMissingAPIKey is returned when constructing a PerspectiveEngine
// without credentials.
var ErrMissingAPIKey = errors.New("perspective API key required")

// PerspectiveOptions configures a PerspectiveEngine.
type PerspectiveOptions struct {
	APIKey  string
	Timeout time.Duration
	// BaseURL overrides the production endpoint, mainly for tests.
	BaseURL string
	// Attribute selects the score to extract; defaults to TOXICITY.
	Attribute string
}

// PerspectiveEngine scores text through the Comment Analyzer HTTP API. It
// requests several toxicity attributes but reports a single configured one.
type PerspectiveEngine struct {
	apiKey    string
	baseURL   string
	attribute string
	client    *http.Client
}

// NewPerspectiveEngine creates a PerspectiveEngine.
func NewPerspectiveEngine(opts PerspectiveOptions) (*PerspectiveEngine, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultPerspectiveURL
	}
	attribute := opts.Attribute
	if attribute == "" {
		attribute = "TOXICITY"
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &PerspectiveEngine{
		apiKey:    opts.APIKey,
		baseURL:   baseURL,
		attribute: attribute,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (e *PerspectiveEngine) Type() string { return PerspectiveType }

type analyzeRequest struct {
	Comment struct {
		Text string `json:"text"`
	} `json:"comment"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
	Languages           []string            `json:"languages"`
	DoNotStore          bool                `json:"doNotStore"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

func (e *PerspectiveEngine) Analyze(ctx context.Context, text string) (float64, error) {
	reqBody := analyzeRequest{
		RequestedAttributes: map[string]struct{}{
			"TOXICITY":        {},
			"SEVERE_TOXICITY": {},
			"IDENTITY_ATTACK": {},
			"INSULT":          {},
			"PROFANITY":       {},
			"THREAT":          {},
		},
		Languages: []string{"en"},
		// Do not let the remote service retain user text
		DoNotStore: true,
	}
	reqBody.Comment.Text = text

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := e.baseURL + "?" + url.Values{"key": {e.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	attr, ok := parsed.AttributeScores[e.attribute]
	if !ok {
		return 0, fmt.Errorf("attribute %q missing from response", e.attribute)
	}

	score := attr.SummaryScore.Value
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	logging.Debugf("perspective toxicity score: %.3f", score)
	return score, nil
}
