package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillycarz/reflectpause/pkg/cache"
	"github.com/sillycarz/reflectpause/pkg/config"
	"github.com/sillycarz/reflectpause/pkg/engine"
	"github.com/sillycarz/reflectpause/pkg/metrics"
)

type stubEngine struct {
	score float64
	err   error
	calls int
}

func (s *stubEngine) Type() string { return "stub" }

func (s *stubEngine) Analyze(ctx context.Context, text string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

func newTestDetector(t *testing.T, eng engine.Engine) (*Detector, *cache.ResultCache, *metrics.Collector) {
	t.Helper()
	cfg := config.Default()
	resultCache := cache.New(cache.Options{MaxSize: 100, TTL: time.Hour})
	collector := metrics.NewCollector(1000)
	d, err := NewDetector(cfg, eng, resultCache, collector)
	require.NoError(t, err)
	return d, resultCache, collector
}

func TestNewDetector(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewDetector(nil, &stubEngine{}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("requires engine", func(t *testing.T) {
		_, err := NewDetector(config.Default(), nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("cache and collector are optional", func(t *testing.T) {
		d, err := NewDetector(config.Default(), &stubEngine{}, nil, nil)
		require.NoError(t, err)

		result, err := d.Check(context.Background(), "hello there", Options{})
		require.NoError(t, err)
		assert.False(t, result.ShouldPrompt)
	})
}

func TestCheckValidation(t *testing.T) {
	d, _, _ := newTestDetector(t, &stubEngine{})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := d.Check(context.Background(), "", Options{})
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects whitespace-only text", func(t *testing.T) {
		_, err := d.Check(context.Background(), "   \t\n", Options{})
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects out-of-range threshold", func(t *testing.T) {
		for _, bad := range []float64{-0.1, 1.5} {
			threshold := bad
			_, err := d.Check(context.Background(), "hello", Options{Threshold: &threshold})
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		}
	})

	t.Run("rejects oversized text", func(t *testing.T) {
		long := make([]byte, config.Default().Toxicity.MaxTextLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := d.Check(context.Background(), string(long), Options{})
		assert.ErrorIs(t, err, ErrTextTooLong)
	})
}

func TestCheck(t *testing.T) {
	t.Run("score above threshold should prompt", func(t *testing.T) {
		d, _, _ := newTestDetector(t, &stubEngine{score: 0.9})
		result, err := d.Check(context.Background(), "some message", Options{})
		require.NoError(t, err)
		assert.True(t, result.ShouldPrompt)
		assert.Equal(t, 0.9, result.Score)
		assert.Equal(t, "stub", result.EngineType)
	})

	t.Run("score equal to threshold should not prompt", func(t *testing.T) {
		threshold := 0.5
		d, _, _ := newTestDetector(t, &stubEngine{score: 0.5})
		result, err := d.Check(context.Background(), "some message", Options{Threshold: &threshold})
		require.NoError(t, err)
		assert.False(t, result.ShouldPrompt)
	})

	t.Run("always-prompt short-circuits analysis", func(t *testing.T) {
		eng := &stubEngine{score: 0.0}
		d, _, _ := newTestDetector(t, eng)
		always := true
		result, err := d.Check(context.Background(), "friendly note", Options{AlwaysPrompt: &always})
		require.NoError(t, err)
		assert.True(t, result.ShouldPrompt)
		assert.Zero(t, eng.calls)
	})

	t.Run("second check hits the cache", func(t *testing.T) {
		eng := &stubEngine{score: 0.3}
		d, resultCache, _ := newTestDetector(t, eng)

		first, err := d.Check(context.Background(), "same text", Options{})
		require.NoError(t, err)
		assert.False(t, first.WasCached)

		second, err := d.Check(context.Background(), "same text", Options{})
		require.NoError(t, err)
		assert.True(t, second.WasCached)
		assert.Equal(t, first.Score, second.Score)
		assert.Equal(t, 1, eng.calls)

		stats := resultCache.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
	})

	t.Run("engine failure is wrapped and recorded", func(t *testing.T) {
		cause := errors.New("model unavailable")
		d, _, collector := newTestDetector(t, &stubEngine{err: cause})

		_, err := d.Check(context.Background(), "some message", Options{})
		require.Error(t, err)

		var engErr *engine.Error
		require.ErrorAs(t, err, &engErr)
		assert.Equal(t, "stub", engErr.EngineType)
		assert.ErrorIs(t, err, cause)

		summary := collector.Summary()
		assert.Equal(t, int64(1), summary.Toxicity.TotalChecks)
		assert.Equal(t, int64(1), summary.Toxicity.EngineErrors)
	})

	t.Run("metrics capture cached and analyzed checks", func(t *testing.T) {
		d, _, collector := newTestDetector(t, &stubEngine{score: 0.8})

		_, err := d.Check(context.Background(), "rude message", Options{})
		require.NoError(t, err)
		_, err = d.Check(context.Background(), "rude message", Options{})
		require.NoError(t, err)

		summary := collector.Summary()
		assert.Equal(t, int64(2), summary.Toxicity.TotalChecks)
		assert.Equal(t, int64(2), summary.Toxicity.ToxicDetected)
		assert.Equal(t, int64(1), summary.Toxicity.CacheHits)
		assert.Equal(t, int64(1), summary.Toxicity.CacheMisses)
	})
}
