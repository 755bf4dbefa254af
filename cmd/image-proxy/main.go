// Command image-proxy runs the CORS image proxy: it fetches images named by
// the request path, caches them in Redis, and serves them with permissive
// CORS headers.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pixelproxy/image-proxy/pkg/cache"
	"github.com/pixelproxy/image-proxy/pkg/config"
	"github.com/pixelproxy/image-proxy/pkg/logging"
	"github.com/pixelproxy/image-proxy/pkg/ratelimit"
	"github.com/pixelproxy/image-proxy/pkg/server"
	"github.com/pixelproxy/image-proxy/pkg/upstream"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger = logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Output: os.Stderr,
	})

	redisClient := redis.NewClient(redisOptions(cfg.RedisURL))

	// Connectivity is reported, not required: the proxy degrades to
	// uncached fetches while Redis is down and /health says so.
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("redis_url", cfg.RedisURL).Msg("Redis not reachable at startup")
	} else {
		logger.Info().Str("redis_url", cfg.RedisURL).Msg("Connected to Redis")
	}
	cancel()

	srv := server.New(server.Options{
		Cache:   cache.NewManager(redisClient, cfg.CacheTTL()),
		Limiter: ratelimit.NewLimiter(redisClient, cfg.Window(), cfg.RateLimitMax, logging.NewLogger("ratelimit")),
		Fetcher: upstream.NewClient(cfg.UpstreamTimeout(), cfg.UserAgent, logging.NewLogger("upstream")),
		Logger:  logging.NewLogger("proxy"),
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("environment", cfg.Environment).
		Msg("CORS image proxy listening")
	logger.Info().Msgf("Usage: http://0.0.0.0:%d/https://example.com/image.png", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	// Abrupt shutdown: stop accepting connections and close the store;
	// in-flight requests are not drained.
	logger.Info().Msg("Shutting down server")
	httpServer.Close()
	redisClient.Close()
}

// redisOptions accepts either a redis:// connection URL or a plain
// host:port address. Client timeouts and retry backoff are bounded the
// same way regardless of form.
func redisOptions(rawURL string) *redis.Options {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		opts = &redis.Options{Addr: rawURL}
	}
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.MinRetryBackoff = 50 * time.Millisecond
	opts.MaxRetryBackoff = 2 * time.Second
	return opts
}
