// Package cache provides a thread-safe, TTL-bounded result cache for
// toxicity scores, keyed by a fingerprint of engine type and text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

// Entry is a single cached toxicity score. Entries are owned by the cache
// and mutated only under its lock.
type Entry struct {
	Fingerprint  string
	Score        float64
	EngineType   string
	InsertedAt   time.Time
	LastAccessAt time.Time
	HitCount     int
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Evictions     int64   `json:"evictions"`
	Expired       int64   `json:"expired"`
	Size          int     `json:"size"`
	HitRate       float64 `json:"hit_rate"`
	TotalRequests int64   `json:"total_requests"`
}

// Options configures a ResultCache.
type Options struct {
	MaxSize int
	TTL     time.Duration
	// Policy selects the eviction victim at capacity. Defaults to LRU.
	Policy EvictionPolicy
}

// ResultCache is a bounded TTL cache for toxicity scores. All operations are
// internally synchronized; no I/O happens while the lock is held.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	maxSize int
	ttl     time.Duration
	policy  EvictionPolicy

	hits      int64
	misses    int64
	evictions int64
	expired   int64

	// now is swappable so TTL behavior is testable without sleeping
	now func() time.Time
}

// New creates a ResultCache with the given options.
func New(opts Options) *ResultCache {
	policy := opts.Policy
	if policy == nil {
		policy = &LRUPolicy{}
	}
	return &ResultCache{
		entries: make(map[string]*Entry),
		maxSize: opts.MaxSize,
		ttl:     opts.TTL,
		policy:  policy,
		now:     time.Now,
	}
}

// Fingerprint returns the collision-resistant digest used as the cache key.
// The engine type participates so the same text scored by different engines
// occupies distinct entries.
func Fingerprint(text, engineType string) string {
	sum := sha256.Sum256([]byte(engineType + ":" + text))
	return hex.EncodeToString(sum[:])
}

// Get looks up a cached score. The second return value reports whether a
// live entry was found; an expired entry is removed and counted as both
// expired and a miss.
func (c *ResultCache) Get(text, engineType string) (float64, bool) {
	key := Fingerprint(text, engineType)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return 0, false
	}

	if c.isExpired(entry) {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return 0, false
	}

	entry.LastAccessAt = c.now()
	entry.HitCount++
	c.hits++

	logging.Debugf("cache hit for %s... (score: %.3f)", key[:8], entry.Score)
	return entry.Score, true
}

// Put stores a score, evicting one entry per the configured policy when the
// cache is full and the key is not already present.
func (c *ResultCache) Put(text, engineType string, score float64) {
	key := Fingerprint(text, engineType)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOne()
	}

	now := c.now()
	c.entries[key] = &Entry{
		Fingerprint:  key,
		Score:        score,
		EngineType:   engineType,
		InsertedAt:   now,
		LastAccessAt: now,
	}

	logging.Debugf("cached result for %s... (score: %.3f)", key[:8], score)
}

// Invalidate removes entries. With both text and engineType it removes one
// entry; with only engineType it removes that engine's entries; with neither
// it clears the cache. The number of removed entries is returned.
func (c *ResultCache) Invalidate(text, engineType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if text != "" {
		key := Fingerprint(text, engineType)
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			return 1
		}
		return 0
	}

	if engineType != "" {
		removed := 0
		for key, entry := range c.entries {
			if entry.EngineType == engineType {
				delete(c.entries, key)
				removed++
			}
		}
		return removed
	}

	count := len(c.entries)
	c.entries = make(map[string]*Entry)
	return count
}

// CleanupExpired sweeps all currently expired entries, independent of access
// pattern. Intended to be driven by an external scheduler.
func (c *ResultCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.isExpired(entry) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		c.expired += int64(removed)
		logging.Debugf("cleaned up %d expired cache entries", removed)
	}
	return removed
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled.
// Callers run this in its own goroutine.
func (c *ResultCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CleanupExpired()
		}
	}
}

// Stats returns a consistent snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Expired:       c.expired,
		Size:          len(c.entries),
		HitRate:       hitRate,
		TotalRequests: total,
	}
}

// ResetStats clears the counters without touching cached entries.
func (c *ResultCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions, c.expired = 0, 0, 0, 0
}

func (c *ResultCache) isExpired(entry *Entry) bool {
	return c.now().Sub(entry.InsertedAt) > c.ttl
}

// evictOne removes the victim chosen by the eviction policy. Caller holds
// the lock.
func (c *ResultCache) evictOne() {
	if len(c.entries) == 0 {
		return
	}

	// Walk keys in sorted order so policy tie-breaks are deterministic
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	candidates := make([]Entry, 0, len(keys))
	for _, key := range keys {
		candidates = append(candidates, *c.entries[key])
	}

	victim := c.policy.SelectVictim(candidates)
	if victim < 0 {
		return
	}

	delete(c.entries, keys[victim])
	c.evictions++
	logging.Debugf("evicted cache entry %s...", keys[victim][:8])
}
