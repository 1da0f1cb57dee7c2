// Package cache provides a small time-boxed memoization map.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	storedAt time.Time
	value    V
}

// TTL is a mutex-guarded map whose entries expire lazily: an entry older than
// the TTL is treated as absent and evicted on the next lookup. There is no
// size bound and no background sweep; cardinality stays small because keys
// only live for one TTL window.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

// NewTTL creates a cache with the given lifetime. The now func is injectable
// for deterministic tests; nil means time.Now.
func NewTTL[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if it is still fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(ent.storedAt) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return ent.value, true
}

// Set stores a value unconditionally, timestamped at call time.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{storedAt: c.now(), value: value}
}

// Len reports the number of entries, including any not yet evicted.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
