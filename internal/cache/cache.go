package cache

import "sync"

// Cache is a concurrency-safe keyed cache with a soft entry limit.
// Inserting past the limit evicts the stalest entries in a batch, so
// steady-state churn does not pay an eviction on every Set.
//
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	limit   int
	tick    uint64
}

type entry[V any] struct {
	value V
	atime uint64
}

// New creates a cache. A limit of 0 disables eviction.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]entry[V]), limit: limit}
}

// Get returns the value stored under key and refreshes its recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	e.atime = c.tick
	c.entries[key] = e
	return e.value, true
}

// Set stores value under key, evicting stale entries once the soft
// limit is exceeded.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = entry[V]{value: value, atime: c.tick}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evict()
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict drops least recently touched entries until the cache sits at
// three quarters of the limit. Caller holds c.mu.
func (c *Cache[K, V]) evict() {
	target := c.limit * 3 / 4
	if target < 1 {
		target = 1
	}
	for len(c.entries) > target {
		var (
			oldest K
			min    uint64
			found  bool
		)
		for k, e := range c.entries {
			if !found || e.atime < min {
				oldest, min, found = k, e.atime, true
			}
		}
		delete(c.entries, oldest)
	}
}
