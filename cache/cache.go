// Package cache provides memoization of task outputs keyed by input and
// search point. Repeated evaluations of the same pair, as happen when an
// exploration strategy revisits points on a stable input stream, are served
// from memory instead of re-running the task.
package cache

import "sync"

// OutputCache stores computed outputs under string keys.
type OutputCache[V any] struct {
	mu        sync.RWMutex
	entries   map[string]V
	order     []string
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache bounded to maxSize entries, evicting oldest-first.
// A maxSize of 0 means unbounded.
func New[V any](maxSize int) *OutputCache[V] {
	return &OutputCache[V]{
		entries: make(map[string]V),
		maxSize: maxSize,
	}
}

// Key joins an input key and a point key into a cache key.
func Key(inputKey, pointKey string) string {
	return inputKey + "|" + pointKey
}

// Get retrieves the output stored under key.
func (c *OutputCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put stores an output under key, evicting the oldest entry if full.
func (c *OutputCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if c.maxSize > 0 && len(c.entries) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			c.evictions++
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *OutputCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Stats returns a snapshot of the counters.
func (c *OutputCache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions, Size: len(c.entries)}
}

// Clear drops all entries, keeping the counters.
func (c *OutputCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
	c.order = nil
}
