package cache

// EvictionPolicy selects the entry to remove when the cache is at capacity.
// SelectVictim returns an index into entries, or -1 when entries is empty.
type EvictionPolicy interface {
	SelectVictim(entries []Entry) int
}

// FIFOPolicy evicts the entry that was inserted first.
type FIFOPolicy struct{}

func (p *FIFOPolicy) SelectVictim(entries []Entry) int {
	if len(entries) == 0 {
		return -1
	}

	oldestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].InsertedAt.Before(entries[oldestIdx].InsertedAt) {
			oldestIdx = i
		}
	}
	return oldestIdx
}

// LRUPolicy evicts the entry with the oldest last access. Ties keep the
// first-encountered entry, which makes eviction deterministic.
type LRUPolicy struct{}

func (p *LRUPolicy) SelectVictim(entries []Entry) int {
	if len(entries) == 0 {
		return -1
	}

	oldestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].LastAccessAt.Before(entries[oldestIdx].LastAccessAt) {
			oldestIdx = i
		}
	}
	return oldestIdx
}

// LFUPolicy evicts the least frequently hit entry.
type LFUPolicy struct{}

func (p *LFUPolicy) SelectVictim(entries []Entry) int {
	if len(entries) == 0 {
		return -1
	}

	victimIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].HitCount < entries[victimIdx].HitCount {
			victimIdx = i
		} else if entries[i].HitCount == entries[victimIdx].HitCount {
			// Use LRU as tiebreaker to avoid random selection
			if entries[i].LastAccessAt.Before(entries[victimIdx].LastAccessAt) {
				victimIdx = i
			}
		}
	}
	return victimIdx
}
