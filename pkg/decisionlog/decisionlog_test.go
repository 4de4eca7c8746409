package decisionlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	logger, err := NewLogger(filepath.Join(t.TempDir(), "decisions.jsonl"))
	require.NoError(t, err)
	return logger
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestLog(t *testing.T) {
	t.Run("appends JSONL entries", func(t *testing.T) {
		logger := newTestLogger(t)

		require.NoError(t, logger.Log(ContinuedSending, nil))
		require.NoError(t, logger.Log(CancelledMessage, nil))

		entries := readEntries(t, logger.Path())
		require.Len(t, entries, 2)
		assert.Equal(t, "continued_sending", entries[0].Decision)
		assert.Equal(t, "cancelled_message", entries[1].Decision)
		assert.Len(t, entries[0].Hash, 16)
		assert.NotEmpty(t, entries[0].EventID)
		assert.NotEqual(t, entries[0].EventID, entries[1].EventID)
	})

	t.Run("rejects invalid decision", func(t *testing.T) {
		logger := newTestLogger(t)
		err := logger.Log(Decision("deleted_account"), nil)
		assert.Error(t, err)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deep", "decisions.jsonl")
		logger, err := NewLogger(path)
		require.NoError(t, err)
		require.NoError(t, logger.Log(PromptViewed, nil))
		assert.FileExists(t, path)
	})
}

func TestMetadataAnonymization(t *testing.T) {
	logger := newTestLogger(t)

	require.NoError(t, logger.Log(EditedMessage, map[string]interface{}{
		"user_id":      "12345",
		"channel_id":   "67890",
		"message_text": "you are terrible",
		"locale":       "en",
		"engine_type":  "heuristic",
		"ip_address":   "10.0.0.1",
	}))

	entries := readEntries(t, logger.Path())
	require.Len(t, entries, 1)
	md := entries[0].Metadata

	assert.NotContains(t, md, "user_id")
	assert.NotContains(t, md, "channel_id")
	assert.NotContains(t, md, "message_text")
	assert.NotContains(t, md, "ip_address")

	assert.Len(t, md["user_id_hash"], 8)
	assert.Len(t, md["channel_id_hash"], 8)
	assert.Equal(t, float64(len("you are terrible")), md["message_length"])
	assert.Equal(t, "en", md["locale"])
	assert.Equal(t, "heuristic", md["engine_type"])
}

func TestSummary(t *testing.T) {
	t.Run("missing file yields empty stats", func(t *testing.T) {
		logger := newTestLogger(t)
		stats, err := logger.Summary(30)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalEntries)
		assert.Empty(t, stats.Decisions)
	})

	t.Run("aggregates by decision, date and hour", func(t *testing.T) {
		logger := newTestLogger(t)
		fixed := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
		logger.now = func() time.Time { return fixed }

		require.NoError(t, logger.Log(ContinuedSending, nil))
		require.NoError(t, logger.Log(ContinuedSending, nil))
		require.NoError(t, logger.Log(CancelledMessage, nil))

		stats, err := logger.Summary(30)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalEntries)
		assert.Equal(t, 2, stats.Decisions["continued_sending"])
		assert.Equal(t, 1, stats.Decisions["cancelled_message"])
		assert.Equal(t, 3, stats.ByDate["2024-06-15"])
		assert.Equal(t, 3, stats.ByHour[14])
	})

	t.Run("excludes entries older than the window", func(t *testing.T) {
		logger := newTestLogger(t)

		old := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		logger.now = func() time.Time { return old }
		require.NoError(t, logger.Log(PromptViewed, nil))

		recent := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
		logger.now = func() time.Time { return recent }
		require.NoError(t, logger.Log(PromptViewed, nil))

		stats, err := logger.Summary(30)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalEntries)
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		logger := newTestLogger(t)
		require.NoError(t, logger.Log(PromptIgnored, nil))

		f, err := os.OpenFile(logger.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.WriteString("not json\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		stats, err := logger.Summary(30)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalEntries)
	})
}

func TestLogConcurrent(t *testing.T) {
	logger := newTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, logger.Log(PromptViewed, nil))
			}
		}()
	}
	wg.Wait()

	entries := readEntries(t, logger.Path())
	assert.Len(t, entries, 200)
}
