// Package cache provides a mutex-guarded TTL map with get-or-compute
// semantics. Entries expire lazily; invalidation is explicit and driven by
// the mutation paths that know what they changed.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[K]entry[V]

	// nowFn is swapped out by tests.
	nowFn func() time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		nowFn:   time.Now,
	}
}

// SetNowFunc overrides the cache's clock. Test hook.
func (c *TTL[K, V]) SetNowFunc(nowFn func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowFn = nowFn
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	now := c.nowFn()
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if now.Sub(e.storedAt) >= c.ttl {
		c.Delete(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. compute runs without the lock held; concurrent callers may
// compute the same value, which is harmless for pure computations.
func (c *TTL[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}

func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.nowFn()}
}

func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeleteFunc removes every entry whose key matches the predicate.
func (c *TTL[K, V]) DeleteFunc(match func(K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
		}
	}
}

func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
