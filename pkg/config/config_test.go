package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CACHE_DURATION", "3600")
	t.Setenv("TIMEOUT", "5000")
	t.Setenv("RATE_LIMIT_WINDOW", "60")
	t.Setenv("RATE_LIMIT_MAX", "100")
	t.Setenv("USER_AGENT", "image-proxy/1.0")
}

func TestLoad(t *testing.T) {
	setFullEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 3600, cfg.CacheDuration)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.Equal(t, 60, cfg.RateLimitWindow)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, "image-proxy/1.0", cfg.UserAgent)
}

func TestLoad_MissingVariable(t *testing.T) {
	setFullEnv(t)
	// t.Setenv registered the cleanup; unsetting here simulates absence.
	os.Unsetenv("USER_AGENT")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_AGENT")
}

func TestLoad_EmptyVariable(t *testing.T) {
	setFullEnv(t)
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_NonNumericValue(t *testing.T) {
	setFullEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	// env reports parse failures by struct field name.
	assert.Contains(t, err.Error(), "Port")
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{
		Port:            9090,
		CacheDuration:   300,
		Timeout:         2500,
		RateLimitWindow: 60,
	}

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 2500*time.Millisecond, cfg.UpstreamTimeout())
	assert.Equal(t, time.Minute, cfg.Window())
}
