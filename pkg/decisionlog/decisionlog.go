// Package decisionlog records anonymized user decisions to an append-only
// JSONL file for aggregate analytics. Identifying metadata is hashed or
// reduced before it touches disk.
package decisionlog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// Decision identifies the action a user took after seeing a prompt.
type Decision string

const (
	ContinuedSending Decision = "continued_sending"
	EditedMessage    Decision = "edited_message"
	CancelledMessage Decision = "cancelled_message"
	PromptViewed     Decision = "prompt_viewed"
	PromptIgnored    Decision = "prompt_ignored"
)

var validDecisions = map[Decision]bool{
	ContinuedSending: true,
	EditedMessage:    true,
	CancelledMessage: true,
	PromptViewed:     true,
	PromptIgnored:    true,
}

// Valid reports whether d is a known decision type.
func (d Decision) Valid() bool {
	return validDecisions[d]
}

// Entry is a single anonymized log record.
type Entry struct {
	EventID   string                 `json:"event_id"`
	Hash      string                 `json:"hash"`
	Decision  string                 `json:"decision"`
	Timestamp string                 `json:"timestamp"`
	Date      string                 `json:"date"`
	Hour      int                    `json:"hour"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Stats aggregates log entries over a time window.
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	Decisions    map[string]int `json:"decisions"`
	ByDate       map[string]int `json:"by_date"`
	ByHour       map[int]int    `json:"by_hour"`
}

// Logger appends anonymized decision records to a JSONL file. Safe for
// concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string

	now func() time.Time
}

// NewLogger creates a decision logger writing to path. An empty path selects
// ~/.reflectpause/decisions.jsonl. The parent directory is created if needed.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".reflectpause", "decisions.jsonl")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logging.Infof("decision logger initialized with file: %s", path)
	return &Logger{path: path, now: time.Now}, nil
}

// Log appends an anonymized entry for decision. Metadata is sanitized before
// writing; message text never reaches disk.
func (l *Logger) Log(decision Decision, metadata map[string]interface{}) error {
	if !decision.Valid() {
		return fmt.Errorf("invalid decision type: %q", decision)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	entry := Entry{
		EventID:   uuid.NewString(),
		Hash:      entryHash(ts, decision),
		Decision:  string(decision),
		Timestamp: ts.Format(time.RFC3339Nano),
		Date:      ts.Format("2006-01-02"),
		Hour:      ts.Hour(),
	}
	if len(metadata) > 0 {
		entry.Metadata = anonymizeMetadata(metadata)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode decision entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open decision log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append decision entry: %w", err)
	}

	logging.Debugf("logged decision: %s (hash: %s)", decision, entry.Hash)
	return nil
}

// Summary returns aggregate statistics for entries recorded within the last
// days days. A missing log file yields zero-valued stats.
func (l *Logger) Summary(days int) (Stats, error) {
	stats := Stats{
		Decisions: make(map[string]int),
		ByDate:    make(map[string]int),
		ByHour:    make(map[int]int),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to open decision log: %w", err)
	}
	defer f.Close()

	cutoff := l.now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			logging.Warnf("skipping malformed decision entry: %v", err)
			continue
		}
		if entry.Date != "" && entry.Date < cutoff {
			continue
		}

		stats.TotalEntries++
		decision := entry.Decision
		if decision == "" {
			decision = "unknown"
		}
		stats.Decisions[decision]++
		if entry.Date != "" {
			stats.ByDate[entry.Date]++
		}
		stats.ByHour[entry.Hour]++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan decision log: %w", err)
	}

	return stats, nil
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

func entryHash(ts time.Time, decision Decision) string {
	sum := sha256.Sum256([]byte(ts.Format(time.RFC3339Nano) + string(decision)))
	return hex.EncodeToString(sum[:])[:16]
}

// anonymizeMetadata hashes identifying fields, reduces message text to its
// length, and drops anything unrecognized.
func anonymizeMetadata(metadata map[string]interface{}) map[string]interface{} {
	anonymized := make(map[string]interface{})

	for key, value := range metadata {
		switch key {
		case "user_id", "username", "channel_id", "guild_id":
			s := fmt.Sprintf("%v", value)
			if s != "" && value != nil {
				sum := sha256.Sum256([]byte(s))
				anonymized[key+"_hash"] = hex.EncodeToString(sum[:])[:8]
			}
		case "message_length", "toxicity_score", "locale", "engine_type":
			anonymized[key] = value
		case "message_text":
			if s, ok := value.(string); ok && s != "" {
				anonymized["message_length"] = len(s)
			}
		default:
			logging.Warnf("unknown metadata key %q, skipping", key)
		}
	}

	return anonymized
}
