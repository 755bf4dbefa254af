// Package ratelimit implements a fixed-window request limiter keyed by
// client IP. Counter state lives in Redis so admission decisions stay
// consistent across service instances; counters expire with their window
// and need no explicit cleanup.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit gating.
var (
	rateLimitAllowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_allowed_total",
		Help: "Total number of requests admitted by the rate limiter",
	})

	rateLimitBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_blocked_total",
		Help: "Total number of requests rejected with 429",
	})
)

const (
	// keyPrefix namespaces rate limit counters in Redis.
	keyPrefix = "rl-ip-"

	// internalPrefix marks docker-internal traffic that bypasses limiting.
	internalPrefix = "172."
)

// IsInternal reports whether a client identifier belongs to the internal
// network and is exempt from rate limiting.
func IsInternal(clientID string) bool {
	return strings.HasPrefix(clientID, internalPrefix)
}

// Key returns the Redis counter key for a client identifier. An empty
// identifier collapses all unidentifiable clients onto a single bucket;
// that imprecision is accepted.
func Key(clientID string) string {
	return keyPrefix + clientID
}

// Limiter admits or rejects requests based on a per-client counter over a
// fixed time window.
type Limiter struct {
	redis  *redis.Client
	window time.Duration
	max    int
	logger zerolog.Logger
}

// NewLimiter creates a new limiter. max is the number of requests admitted
// per client per window.
func NewLimiter(redisClient *redis.Client, window time.Duration, max int, logger zerolog.Logger) *Limiter {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Limiter{
		redis:  redisClient,
		window: window,
		max:    max,
		logger: logger,
	}
}

// Allow increments the client's counter for the current window and reports
// whether the request is admitted. The increment is atomic (Redis INCR) so
// concurrent instances never undercount; the window TTL is attached when
// the counter is first created.
func (l *Limiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := Key(clientID)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}

	if count > int64(l.max) {
		l.logger.Warn().
			Str("client_ip", clientID).
			Int64("count", count).
			Int("max", l.max).
			Msg("Rate limit exceeded")
		rateLimitBlockedTotal.Inc()
		return false, nil
	}

	rateLimitAllowedTotal.Inc()
	return true, nil
}
