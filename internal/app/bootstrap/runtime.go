package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/leadcapture-api/internal/config"
	"github.com/wolfman30/leadcapture-api/internal/http/middleware"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter shares the submission limit across instances through Redis
// when a client is available and falls back to a per-process token bucket.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) middleware.Limiter {
	if logger == nil {
		logger = logging.Default()
	}
	perMinute := 30
	if cfg != nil && cfg.RateLimitPerMinute > 0 {
		perMinute = cfg.RateLimitPerMinute
	}
	if redisClient != nil {
		logger.Info("rate limiting via redis", "per_minute", perMinute)
		return middleware.NewRedisRateLimiter(redisClient, perMinute, time.Minute)
	}
	logger.Info("rate limiting in memory", "per_minute", perMinute)
	return middleware.NewPerMinuteLimiter(perMinute)
}

// CORSOrigins returns the configured allowlist, plus the local storefront
// origins outside production.
func CORSOrigins(cfg *appconfig.Config) []string {
	var origins []string
	if cfg != nil {
		origins = append(origins, cfg.CORSAllowedOrigins...)
	}
	if cfg == nil || !cfg.IsProduction() {
		origins = append(origins, middleware.DevOrigins...)
	}
	return origins
}
