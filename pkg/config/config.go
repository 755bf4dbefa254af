// Package config loads service configuration from the process environment.
// Every field is required; the service must not start with a partial
// configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Values are read once at startup and
// never mutated afterwards.
type Config struct {
	// Environment is the deployment environment name (e.g. "production").
	Environment string `env:"ENVIRONMENT,required,notEmpty"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL,required,notEmpty"`

	// Port is the HTTP listen port.
	Port int `env:"PORT,required,notEmpty"`

	// RedisURL is the cache store connection string. Accepts either a
	// redis:// URL or a plain host:port address.
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// CacheDuration is the image cache TTL in seconds.
	CacheDuration int `env:"CACHE_DURATION,required,notEmpty"`

	// Timeout is the upstream fetch timeout in milliseconds.
	Timeout int `env:"TIMEOUT,required,notEmpty"`

	// RateLimitWindow is the rate limit window width in seconds.
	RateLimitWindow int `env:"RATE_LIMIT_WINDOW,required,notEmpty"`

	// RateLimitMax is the maximum number of requests per client per window.
	RateLimitMax int `env:"RATE_LIMIT_MAX,required,notEmpty"`

	// UserAgent is sent on every outbound fetch.
	UserAgent string `env:"USER_AGENT,required,notEmpty"`
}

// Load reads the configuration from the environment. It returns an error
// naming the first missing, empty, or malformed variable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CacheTTL returns the cache duration as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Second
}

// UpstreamTimeout returns the upstream fetch timeout as a time.Duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// Window returns the rate limit window as a time.Duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}
