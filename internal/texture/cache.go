package texture

import (
	"image"
	"strings"
	"sync"
)

// Cache is a concurrency-safe memo in front of a Resolver. Failures are
// cached as well, so each name is decoded at most once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	src   Resolver
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache wraps src.
func NewCache(src Resolver) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		src:   src,
	}
}

// Resolve loads and caches a texture by name, ignoring case.
func (c *Cache) Resolve(texName string) (*image.NRGBA, error) {
	key := strings.ToLower(texName)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: decode
	img, err := c.src.Resolve(texName)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img, entry.err
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of names resolved so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
