package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// RedisCache implements ports.ResultCache on a Redis backend for deployments
// that want recognition results shared across replicas. Entry TTL maps onto
// Redis key expiry; capacity bounding is delegated to the server's maxmemory
// eviction policy rather than enforced per-entry.
type RedisCache struct {
	r      redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed result cache.
func NewRedisCache(r redis.Cmdable, prefix string, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if prefix == "" {
		prefix = "captcha"
	}
	return &RedisCache{r: r, prefix: prefix, ttl: ttl}, nil
}

func (c *RedisCache) keyFor(key ports.CacheKey) string {
	return fmt.Sprintf("%s:result:%s:%s", c.prefix, key.ContentHash, key.ChallengeType)
}

// Get implements ports.ResultCache. The recency refresh rewrites the entry
// while keeping the original expiry.
func (c *RedisCache) Get(ctx context.Context, key ports.CacheKey) (*ports.CacheEntry, bool, error) {
	raw, err := c.r.Get(ctx, c.keyFor(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry ports.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupted entry: drop it and report a miss.
		_ = c.r.Del(ctx, c.keyFor(key)).Err()
		return nil, false, nil
	}

	entry.LastAccessAt = time.Now()
	if data, err := json.Marshal(&entry); err == nil {
		_ = c.r.Set(ctx, c.keyFor(key), data, redis.KeepTTL).Err()
	}
	return &entry, true, nil
}

// Put implements ports.ResultCache.
func (c *RedisCache) Put(ctx context.Context, key ports.CacheKey, result, paramsDigest string) error {
	now := time.Now()
	entry := ports.CacheEntry{
		Result:       result,
		ParamsDigest: paramsDigest,
		CreatedAt:    now,
		LastAccessAt: now,
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.r.Set(ctx, c.keyFor(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear implements ports.ResultCache by deleting every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.r.Scan(ctx, 0, c.prefix+":result:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.r.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Stats implements ports.ResultCache. Redis expires entries server-side, so
// everything still present counts as active.
func (c *RedisCache) Stats(ctx context.Context) (ports.CacheStats, error) {
	total := 0
	iter := c.r.Scan(ctx, 0, c.prefix+":result:*", 100).Iterator()
	for iter.Next(ctx) {
		total++
	}
	if err := iter.Err(); err != nil {
		return ports.CacheStats{}, fmt.Errorf("redis scan: %w", err)
	}
	return ports.CacheStats{Total: total, Active: total, TTL: c.ttl}, nil
}
