package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// MemoryCache is the in-process ResultCache: a bounded map with TTL expiry
// and least-recently-used eviction. It is the only shared mutable state in
// the recognizer; one mutex serializes map access and is held only for the
// duration of the map operation, never across a processor invocation.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[ports.CacheKey]*ports.CacheEntry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache builds a cache with the given capacity and entry TTL.
// Both must be positive.
func NewMemoryCache(maxSize int, ttl time.Duration) (*MemoryCache, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("cache max size must be positive, got %d", maxSize)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	return &MemoryCache{
		entries: make(map[ports.CacheKey]*ports.CacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Get implements ports.ResultCache. Expired entries are purged lazily here
// rather than by a background sweep.
func (c *MemoryCache) Get(_ context.Context, key ports.CacheKey) (*ports.CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	now := c.now()
	if now.Sub(entry.CreatedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false, nil
	}

	entry.LastAccessAt = now
	cp := *entry
	return &cp, true, nil
}

// Put implements ports.ResultCache. When the cache is at capacity exactly one
// entry is evicted: the one with the smallest LastAccessAt.
func (c *MemoryCache) Put(_ context.Context, key ports.CacheKey, result, paramsDigest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}

	now := c.now()
	c.entries[key] = &ports.CacheEntry{
		Result:       result,
		ParamsDigest: paramsDigest,
		CreatedAt:    now,
		LastAccessAt: now,
	}
	return nil
}

// evictLRU removes the least-recently-accessed entry. Caller holds the lock.
func (c *MemoryCache) evictLRU() {
	var (
		victim ports.CacheKey
		oldest time.Time
		found  bool
	)
	for key, entry := range c.entries {
		if !found || entry.LastAccessAt.Before(oldest) {
			victim = key
			oldest = entry.LastAccessAt
			found = true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

// Clear implements ports.ResultCache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[ports.CacheKey]*ports.CacheEntry)
	return nil
}

// Stats implements ports.ResultCache. Expired-but-unpurged entries are
// counted separately from active ones.
func (c *MemoryCache) Stats(_ context.Context) (ports.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for _, entry := range c.entries {
		if now.Sub(entry.CreatedAt) > c.ttl {
			expired++
		}
	}
	return ports.CacheStats{
		Total:   len(c.entries),
		Expired: expired,
		Active:  len(c.entries) - expired,
		MaxSize: c.maxSize,
		TTL:     c.ttl,
	}, nil
}
