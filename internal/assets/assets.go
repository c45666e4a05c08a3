// Package assets handles viewer asset fetching and caching.
package assets

import (
	"context"
	"fmt"
	"sync"
)

// Manager fetches assets from a source and caches the bytes.
type Manager struct {
	source Source
	cache  *Cache
}

// NewManager creates a manager. A nil cache disables caching.
func NewManager(src Source, cache *Cache) *Manager {
	return &Manager{
		source: src,
		cache:  cache,
	}
}

// Load returns the asset bytes, from the cache when present.
func (m *Manager) Load(ctx context.Context, name string) ([]byte, error) {
	if m.cache != nil {
		if data, ok := m.cache.Get(name); ok {
			return data, nil
		}
	}

	data, err := m.source.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", name, m.source, err)
	}
	if m.cache != nil {
		m.cache.Set(name, data)
	}
	return data, nil
}

// Close drops cached data.
func (m *Manager) Close() {
	if m.cache != nil {
		m.cache.Clear()
	}
}

// Cache is an in-memory byte cache bounded by total size.
// Oldest entries are evicted first.
type Cache struct {
	data  map[string][]byte
	order []string
	size  int64
	limit int64
	mu    sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache holding at most limit bytes. A limit <= 0 means
// unbounded.
func NewCache(limit int64) *Cache {
	return &Cache{
		data:  make(map[string][]byte),
		limit: limit,
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache. Items larger than the limit are not kept.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit > 0 && int64(len(data)) > c.limit {
		return
	}
	c.remove(key)
	c.data[key] = data
	c.order = append(c.order, key)
	c.size += int64(len(data))

	for c.limit > 0 && c.size > c.limit && len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

func (c *Cache) remove(key string) {
	data, ok := c.data[key]
	if !ok {
		return
	}
	delete(c.data, key)
	c.size -= int64(len(data))
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.order = nil
	c.size = 0
	c.hits = 0
	c.misses = 0
}

// Size returns the cached byte total.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
