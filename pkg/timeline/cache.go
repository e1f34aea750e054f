package timeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache owns built indexes keyed by normalized file path. Concurrent
// requests for the same path share one build.
type Cache struct {
	mu      sync.RWMutex
	indexes map[string]*Index
	group   singleflight.Group
	opts    []BuildOption
}

// NewCache creates a cache whose builds use the given options.
func NewCache(opts ...BuildOption) *Cache {
	return &Cache{
		indexes: make(map[string]*Index),
		opts:    opts,
	}
}

// NormalizePath returns the cache key for path: absolute, cleaned and
// case-folded.
func NormalizePath(path string) string {
	p := strings.TrimSpace(path)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ToLower(filepath.Clean(p))
}

// Get returns the index for path, building it on first use. The shared
// build ignores the starting caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (c *Cache) Get(ctx context.Context, path string) (*Index, error) {
	key := NormalizePath(path)
	if ix, ok := c.lookup(key); ok {
		return ix, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if ix, ok := c.lookup(key); ok {
			return ix, nil
		}
		ix, err := Build(context.WithoutCancel(ctx), path, c.opts...)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.indexes[key] = ix
		c.mu.Unlock()
		return ix, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

// Lookup returns the cached index for path without building.
func (c *Cache) Lookup(path string) (*Index, bool) {
	return c.lookup(NormalizePath(path))
}

// Forget drops the cached index for path so the next Get rebuilds it.
func (c *Cache) Forget(path string) {
	key := NormalizePath(path)
	c.mu.Lock()
	delete(c.indexes, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Len returns the number of cached indexes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indexes)
}

func (c *Cache) lookup(key string) (*Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ix, ok := c.indexes[key]
	return ix, ok
}
