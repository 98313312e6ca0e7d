// Package cache provides the small keyed result cache the engine uses to
// memoize due-set and session queries between writes.
package cache

import (
	"sync"
	"time"
)

// Cache is the engine-facing contract. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// Purge drops every entry. Called synchronously after any outcome is
	// written; correctness favors staleness-avoidance over hit rate.
	Purge()
}

// Disabled is a Cache that stores nothing. It is the default for a freshly
// constructed engine and handy in tests.
type Disabled struct{}

func (Disabled) Get(string) (any, bool) { return nil, false }
func (Disabled) Set(string, any)        {}
func (Disabled) Purge()                 {}

// Config configures a TTL cache. Zero values produce sensible defaults.
type Config struct {
	TTL        time.Duration    // zero -> 60s
	MaxEntries int              // zero -> 128
	Clock      func() time.Time // zero -> time.Now
}

// TTL is an in-memory Cache whose entries expire after a fixed duration.
// When full it evicts the oldest entry.
type TTL struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]entry
}

type entry struct {
	value    any
	storedAt time.Time
}

// NewTTL creates a TTL cache from the given config.
func NewTTL(cfg Config) *TTL {
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * time.Second
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 128
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &TTL{
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        cfg.Clock,
		entries:    make(map[string]entry),
	}
}

// Get returns the cached value for key if it exists and has not expired.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry if the cache is full.
func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Purge drops all entries.
func (c *TTL) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// evictOldest removes the entry with the earliest store time.
// Caller must hold c.mu.
func (c *TTL) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldest) {
			oldestKey, oldest = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
