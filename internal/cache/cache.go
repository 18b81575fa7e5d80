// Package cache implements the result cache: a TTL-bounded map of
// scraped URL to final result, shared by the scrape pipeline so repeated
// requests for the same URL short-circuit straight to a cached answer.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	storedAt time.Time
	data     map[string]any
}

// ResultCache is a thread-safe URL-keyed cache with a fixed TTL. Entries
// older than the TTL are treated as absent and lazily evicted on read.
type ResultCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a ResultCache whose entries expire after ttl.
func New(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached result for url, if present and not expired.
func (c *ResultCache) Get(url string) (map[string]any, bool) {
	c.mu.RLock()
	e, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, url)
		c.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

// Set stores data for url, replacing any existing entry.
func (c *ResultCache) Set(url string, data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = entry{storedAt: time.Now(), data: data}
}

// Len reports the number of entries currently stored, including any that
// are expired but not yet evicted. Useful for diagnostics and tests.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
