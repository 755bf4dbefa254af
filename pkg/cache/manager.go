package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates that the body key, the header key, or a
	// parseable header value was not found for the target URL.
	ErrCacheMiss = errors.New("cache miss")
)

// Manager handles image caching operations with a Redis backend.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a new cache manager. All entries are written with the
// given TTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get retrieves the cached entry for a target URL.
// Returns ErrCacheMiss unless both the body and a parseable header value
// are present; a half-written or corrupted pair is never served.
func (m *Manager) Get(ctx context.Context, targetURL string) (*Entry, error) {
	pipe := m.redis.Pipeline()
	bodyCmd := pipe.Get(ctx, Key(targetURL))
	headerCmd := pipe.Get(ctx, HeaderKey(targetURL))

	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	body, err := bodyCmd.Bytes()
	if err != nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	var headers ResponseHeaders
	if err := json.Unmarshal([]byte(headerCmd.Val()), &headers); err != nil {
		// Corrupted header JSON degrades to a miss, not an error.
		CacheErrors.WithLabelValues("get").Inc()
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.Inc()
	return &Entry{Body: body, Headers: headers}, nil
}

// Set stores an entry under both keys in a single pipeline so a writer
// never leaves a partial pair behind. Writes are last-writer-wins;
// concurrent duplicate fetches simply overwrite each other.
func (m *Manager) Set(ctx context.Context, targetURL string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	headerJSON, err := json.Marshal(entry.Headers)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cached headers: %w", err)
	}

	pipe := m.redis.Pipeline()
	pipe.Set(ctx, Key(targetURL), entry.Body, m.ttl)
	pipe.Set(ctx, HeaderKey(targetURL), headerJSON, m.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.Add(float64(len(entry.Body)))
	return nil
}

// Delete removes both keys for a target URL.
func (m *Manager) Delete(ctx context.Context, targetURL string) error {
	if err := m.redis.Del(ctx, Key(targetURL), HeaderKey(targetURL)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping reports connectivity to the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.redis.Ping(ctx).Err()
}
