// Package cache provides a thread-safe in-memory TTL cache.
// Entries expire after TTL without a Set; removal happens only when
// EvictExpired runs, so the owner decides when sweeps happen.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Option configures an InMemory cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// InMemory is a thread-safe in-memory cache with sliding TTL.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration
	now   func() time.Time
}

// New creates a new in-memory cache with the given TTL.
func New[T any](ttl time.Duration, opts ...Option) *InMemory[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		now:   o.now,
	}
}

// TTL returns the configured inactivity threshold.
func (c *InMemory[T]) TTL() time.Duration { return c.ttl }

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value and pushes its expiry TTL into the future.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Touch extends the expiry of an existing, unexpired key.
func (c *InMemory[T]) Touch(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok || c.now().After(e.expiresAt) {
		return false
	}
	e.expiresAt = c.now().Add(c.ttl)
	c.items[key] = e
	return true
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// EvictExpired removes every expired entry and returns the removed keys.
func (c *InMemory[T]) EvictExpired() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var removed []string
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
			removed = append(removed, k)
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Values returns every unexpired value.
func (c *InMemory[T]) Values() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if !now.After(v.expiresAt) {
			out = append(out, v.value)
		}
	}
	return out
}
