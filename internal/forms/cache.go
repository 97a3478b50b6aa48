package forms

import "sync"

// Cache is an in-memory entry map cache keyed by the caller's raw form
// URL. Forms change rarely and the working set is small, so there is no
// eviction.
type Cache struct {
	mu sync.RWMutex
	m  map[string]*EntryMap
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]*EntryMap)}
}

// Get returns the cached entry map for rawURL, or nil.
func (c *Cache) Get(rawURL string) *EntryMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[rawURL]
}

// Set stores the entry map for rawURL.
func (c *Cache) Set(rawURL string, em *EntryMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[rawURL] = em
}

// Len returns the number of cached forms.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
