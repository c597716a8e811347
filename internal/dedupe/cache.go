package dedupe

import (
	"sync"
	"time"
)

type record struct {
	fingerprint string
	ts          time.Time
}

type entry struct {
	key string
	ts  time.Time
}

// Cache remembers the last fingerprint applied per key for a bounded time, so
// repeated identical updates can be skipped while changed ones always pass.
type Cache struct {
	mu       sync.Mutex
	items    map[string]record
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]record, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Unchanged reports whether fingerprint is what was last recorded for key
// inside the ttl window. It does not record anything; use Record for that.
func (c *Cache) Unchanged(key, fingerprint string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.items[key]
	if !ok {
		return false
	}
	return rec.fingerprint == fingerprint && now.Sub(rec.ts) <= c.ttl
}

// Record stores fingerprint as the latest value applied for key.
func (c *Cache) Record(key, fingerprint string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = record{fingerprint: fingerprint, ts: now}
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

// Len returns the number of keys currently tracked.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A key recorded again later has a newer order entry; keep it.
		if rec, ok := c.items[oldest.key]; ok && rec.ts.Equal(oldest.ts) {
			delete(c.items, oldest.key)
		}
	}
}
