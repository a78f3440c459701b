// Package cache is a bounded in-memory response cache with per-entry TTL.
// Eviction is FIFO by insertion order, not LRU: no access-time bookkeeping.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no capacity is configured.
const DefaultMaxEntries = 500

// entry stores one cached payload with its expiry.
type entry struct {
	payload   any
	expiresAt time.Time
}

// Cache maps caller-built keys to opaque payloads. Callers must keep keys
// injective over (provider, endpoint path, query parameters); colliding keys
// would return stale cross-request data and the cache does not validate them.
//
// Get, Set, Size and Clear are safe for concurrent use; the
// read-check-evict-insert sequence holds the lock as a unit.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]entry
	order   []string // insertion order, oldest first

	now func() time.Time
}

func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		max:     maxEntries,
		entries: make(map[string]entry, maxEntries),
		now:     time.Now,
	}
}

// Get returns the payload for key, or false when absent. Expiry is lazy:
// an entry past its deadline is removed on read and never returned, but there
// is no background sweep, so dead entries may hold capacity until read or
// evicted by FIFO pressure.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.remove(key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key for ttl. On a full cache it first evicts
// exactly one entry, the oldest by insertion order. Overwriting an existing
// key keeps its original insertion position.
func (c *Cache) Set(key string, payload any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.remove(c.order[0])
	}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry{payload: payload, expiresAt: c.now().Add(ttl)}
		return
	}
	c.entries[key] = entry{payload: payload, expiresAt: c.now().Add(ttl)}
	c.order = append(c.order, key)
}

// Size reports the number of physically present entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry, c.max)
	c.order = c.order[:0]
}

// remove deletes key from both the map and the order slice. Caller holds the
// lock.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
