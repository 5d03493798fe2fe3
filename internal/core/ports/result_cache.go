package ports

import (
	"context"
	"time"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

// CacheKey addresses one cached recognition outcome: the content digest of
// the image bytes plus the challenge type they were interpreted as.
type CacheKey struct {
	ContentHash   string
	ChallengeType captcha.ChallengeType
}

// CacheEntry is a cached recognition outcome. ParamsDigest records the
// configuration the result was computed under; an entry must never be served
// for a request with a different digest.
type CacheEntry struct {
	Result       string    `json:"result"`
	ParamsDigest string    `json:"params_digest"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessAt time.Time `json:"last_access_at"`
}

// CacheStats is a point-in-time summary of cache occupancy.
type CacheStats struct {
	Total   int           `json:"total_entries"`
	Expired int           `json:"expired_entries"`
	Active  int           `json:"active_entries"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl_seconds"`
}

// ResultCache is a bounded, TTL-expiring store of recognition outcomes.
// Implementations should degrade gracefully (returning an error without
// crashing callers) so the recognizer can fall back to recomputation.
type ResultCache interface {
	// Get returns the entry for key, refreshing its recency. ok=false when
	// absent or expired; expired entries are purged lazily on lookup.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, bool, error)
	// Put stores a fresh entry, evicting the least-recently-used entry first
	// when the cache is at capacity.
	Put(ctx context.Context, key CacheKey, result, paramsDigest string) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}
