package runner

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mtc-analytics/patlens/pkg/types"
)

const (
	DefaultCacheTTL     = 30 * time.Minute // DefaultCacheTTL bounds how long cached results are served
	DefaultCacheEntries = 512              // DefaultCacheEntries is the maximum number of cached results
)

// ResultCache stores executed result tables keyed by fingerprint. At most
// one entry exists per fingerprint; entries expire by TTL or process exit.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*types.CachedResult, bool, error)
	Set(ctx context.Context, fingerprint string, result *types.CachedResult) error
}

// MemoryCache is the process-local result cache: an expirable LRU, so a
// future eviction-policy change never touches call sites.
type MemoryCache struct {
	lru *expirable.LRU[string, *types.CachedResult]
}

// NewMemoryCache creates a memory cache with the given TTL and entry bound.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *types.CachedResult](maxEntries, nil, ttl),
	}
}

func (c *MemoryCache) Get(ctx context.Context, fingerprint string) (*types.CachedResult, bool, error) {
	entry, ok := c.lru.Get(fingerprint)
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, fingerprint string, result *types.CachedResult) error {
	c.lru.Add(fingerprint, result)
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
