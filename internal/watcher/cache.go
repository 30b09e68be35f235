package watcher

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/reposcan/internal/scanner"
)

// Cache is a bounded per-file result cache shared across rescans.
type Cache struct {
	inner *lru.Cache[string, scanner.FileResult]
}

// NewCache creates a cache holding at most size results.
func NewCache(size int) (*Cache, error) {
	inner, err := lru.New[string, scanner.FileResult](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (scanner.FileResult, bool) {
	return c.inner.Get(key)
}

// Add stores a result under key, evicting the least recently used entry
// when full.
func (c *Cache) Add(key string, result scanner.FileResult) {
	c.inner.Add(key, result)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.inner.Len()
}
