package textutil

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultVariantCacheSize = 4096

// VariantCache memoizes Normalize. It is safe for concurrent use and hands
// out copies so callers may modify the returned slices.
type VariantCache struct {
	cache *lru.Cache[string, []string]
}

// NewVariantCache creates a cache holding up to size basenames. A size <= 0
// uses the default.
func NewVariantCache(size int) *VariantCache {
	if size <= 0 {
		size = defaultVariantCacheSize
	}
	cache, err := lru.New[string, []string](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		return &VariantCache{}
	}
	return &VariantCache{cache: cache}
}

// Variants returns Normalize(basename), consulting the cache first. A nil
// cache degrades to calling Normalize directly.
func (c *VariantCache) Variants(basename string) []string {
	if c == nil || c.cache == nil {
		return Normalize(basename)
	}
	if cached, ok := c.cache.Get(basename); ok {
		return append([]string(nil), cached...)
	}
	variants := Normalize(basename)
	c.cache.Add(basename, variants)
	return append([]string(nil), variants...)
}

// Len returns the number of cached basenames.
func (c *VariantCache) Len() int {
	if c == nil || c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
