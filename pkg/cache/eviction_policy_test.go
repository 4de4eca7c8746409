package cache

import (
	"testing"
	"time"
)

func TestFIFOPolicy(t *testing.T) {
	policy := &FIFOPolicy{}

	// Test empty entries
	if victim := policy.SelectVictim([]Entry{}); victim != -1 {
		t.Errorf("Expected -1 for empty entries, got %d", victim)
	}

	now := time.Now()
	entries := []Entry{
		{Fingerprint: "f1", InsertedAt: now.Add(-3 * time.Second)},
		{Fingerprint: "f2", InsertedAt: now.Add(-1 * time.Second)},
		{Fingerprint: "f3", InsertedAt: now.Add(-2 * time.Second)},
	}

	victim := policy.SelectVictim(entries)
	if victim != 0 {
		t.Errorf("Expected victim index 0 (oldest), got %d", victim)
	}
}

func TestLRUPolicy(t *testing.T) {
	policy := &LRUPolicy{}

	// Test empty entries
	if victim := policy.SelectVictim([]Entry{}); victim != -1 {
		t.Errorf("Expected -1 for empty entries, got %d", victim)
	}

	now := time.Now()
	entries := []Entry{
		{Fingerprint: "f1", LastAccessAt: now.Add(-1 * time.Second)},
		{Fingerprint: "f2", LastAccessAt: now.Add(-3 * time.Second)},
		{Fingerprint: "f3", LastAccessAt: now.Add(-2 * time.Second)},
	}

	victim := policy.SelectVictim(entries)
	if victim != 1 {
		t.Errorf("Expected victim index 1 (least recently used), got %d", victim)
	}
}

func TestLRUPolicyTieBreak(t *testing.T) {
	policy := &LRUPolicy{}

	now := time.Now()
	entries := []Entry{
		{Fingerprint: "f1", LastAccessAt: now},
		{Fingerprint: "f2", LastAccessAt: now},
		{Fingerprint: "f3", LastAccessAt: now},
	}

	// Equal timestamps keep the first-encountered entry
	if victim := policy.SelectVictim(entries); victim != 0 {
		t.Errorf("Expected first entry on tie, got %d", victim)
	}
}

func TestLFUPolicy(t *testing.T) {
	policy := &LFUPolicy{}

	// Test empty entries
	if victim := policy.SelectVictim([]Entry{}); victim != -1 {
		t.Errorf("Expected -1 for empty entries, got %d", victim)
	}

	now := time.Now()
	entries := []Entry{
		{Fingerprint: "f1", HitCount: 5, LastAccessAt: now},
		{Fingerprint: "f2", HitCount: 1, LastAccessAt: now},
		{Fingerprint: "f3", HitCount: 3, LastAccessAt: now},
	}

	victim := policy.SelectVictim(entries)
	if victim != 1 {
		t.Errorf("Expected victim index 1 (fewest hits), got %d", victim)
	}

	// Equal hit counts fall back to LRU
	entries = []Entry{
		{Fingerprint: "f1", HitCount: 2, LastAccessAt: now.Add(-1 * time.Second)},
		{Fingerprint: "f2", HitCount: 2, LastAccessAt: now.Add(-5 * time.Second)},
	}
	if victim := policy.SelectVictim(entries); victim != 1 {
		t.Errorf("Expected LRU tiebreaker to pick index 1, got %d", victim)
	}
}
