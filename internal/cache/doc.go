// Package cache provides the generic caching primitives shared by the
// glcore resource stores.
//
// # Cache[K, V]
//
// A simple thread-safe keyed cache with a soft limit and 25% batch
// eviction when capacity is exceeded. The shader store uses it for
// compiled variant lookup.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// # LRU[K]
//
// An intrusive doubly-linked recency list with O(1) touch and unlink.
// The buffer and texture stores use it as their eviction chain: head is
// most recently used, tail is the next eviction candidate.
//
// # Thread Safety
//
// Cache is safe for concurrent use. LRU is not; its owners serialize
// access behind their own mutex. Neither may be copied after creation.
package cache
