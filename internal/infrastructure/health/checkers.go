package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// cacheHealthChecker probes the result cache by asking for stats.
type cacheHealthChecker struct{ cache ports.ResultCache }

func (c *cacheHealthChecker) Name() string { return "result_cache" }
func (c *cacheHealthChecker) Check(ctx context.Context) error {
	_, err := c.cache.Stats(ctx)
	return err
}

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// ocrHealthChecker verifies the OCR engine can classify a minimal payload
// probe. Engines that reject the probe bytes but respond are still healthy;
// only transport-level failures matter here, so the check defers to the
// engine's own error contract.
type ocrHealthChecker struct {
	engine ports.OCREngine
	probe  []byte
}

func (o *ocrHealthChecker) Name() string { return "ocr_engine" }
func (o *ocrHealthChecker) Check(ctx context.Context) error {
	if len(o.probe) == 0 {
		return nil
	}
	_, err := o.engine.Classify(ctx, o.probe)
	return err
}

// NewCacheHealthChecker creates a health checker for the result cache.
func NewCacheHealthChecker(cache ports.ResultCache) ports.HealthChecker {
	return &cacheHealthChecker{cache: cache}
}

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewOCRHealthChecker creates a health checker for the OCR engine. probe may
// be nil to make the check a no-op.
func NewOCRHealthChecker(engine ports.OCREngine, probe []byte) ports.HealthChecker {
	return &ocrHealthChecker{engine: engine, probe: probe}
}
