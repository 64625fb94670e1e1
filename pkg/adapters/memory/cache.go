package memory

import (
	"context"
	"sync"

	"github.com/ofekfell/mediaflow/pkg/ports"
)

// Cache implements ports.AssetCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewCache creates an empty in-memory asset cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get returns the local path recorded for ref.
func (c *Cache) Get(ctx context.Context, ref string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path, ok := c.data[ref]
	if !ok {
		return "", ports.ErrCacheMiss
	}
	return path, nil
}

// Put records the local path for ref.
func (c *Cache) Put(ctx context.Context, ref, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[ref] = path
	return nil
}

// Delete forgets ref.
func (c *Cache) Delete(ctx context.Context, ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, ref)
	return nil
}

// Len returns the number of cached references.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

var _ ports.AssetCache = (*Cache)(nil)
