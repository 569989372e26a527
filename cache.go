package bright

import (
	"sync"
	"time"
)

// snapshotCache memoizes registry snapshots for a short TTL so that a burst
// of operations (e.g. a fade driving many set calls) does not re-enumerate
// every backend on each step. The cache is an optimization only: a zero TTL
// disables it entirely, and any enumeration failure invalidates it.
type snapshotCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	records []DisplayInfo
	expires time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *snapshotCache) get(key string) ([]DisplayInfo, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}

	out := make([]DisplayInfo, len(e.records))
	copy(out, e.records)
	return out, true
}

func (c *snapshotCache) put(key string, records []DisplayInfo) {
	if c.ttl <= 0 {
		return
	}

	stored := make([]DisplayInfo, len(records))
	copy(stored, records)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{records: stored, expires: c.now().Add(c.ttl)}
}

func (c *snapshotCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
