package media

import (
	"sync"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

type cacheKey struct {
	kind model.MediaKind
	id   string
}

// Cache holds prefetched collections for the life of a session.
type Cache struct {
	mu    sync.RWMutex
	items map[cacheKey][]model.MediaItem
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{items: make(map[cacheKey][]model.MediaItem)}
}

func (c *Cache) Put(kind model.MediaKind, id string, items []model.MediaItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey{kind, id}] = items
}

func (c *Cache) Get(kind model.MediaKind, id string) ([]model.MediaItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.items[cacheKey{kind, id}]
	return items, ok
}

func (c *Cache) Evict(kind model.MediaKind, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, cacheKey{kind, id})
}

// Len reports the number of cached collections.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
