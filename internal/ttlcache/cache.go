// Package ttlcache is a thread-safe in-memory key/value cache with optional
// per-entry expiry. Expired entries are invisible to readers immediately and
// are swept by a background goroutine.
package ttlcache

import (
	"sync"
	"time"
)

const DefaultSweepInterval = time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero: never expires
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache holds values of type V keyed by string.
type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	now     func() time.Time
	done    chan struct{}
	closed  bool
	sweepWG sync.WaitGroup
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	sweepInterval time.Duration
	now           func() time.Time
}

// WithSweepInterval sets how often expired entries are removed.
// Zero or negative disables the background sweeper.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New[V any](opts ...Option) *Cache[V] {
	o := options{sweepInterval: DefaultSweepInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		items: make(map[string]entry[V]),
		now:   o.now,
		done:  make(chan struct{}),
	}
	if o.sweepInterval > 0 {
		c.sweepWG.Add(1)
		go c.sweepLoop(o.sweepInterval)
	}
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. A zero expiresAt keeps the entry until it is
// overwritten or deleted.
func (c *Cache[V]) Set(key string, value V, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
}

// Delete removes key. Missing keys are ignored.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) sweepLoop(interval time.Duration) {
	defer c.sweepWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.done:
			return
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.sweepWG.Wait()
}
