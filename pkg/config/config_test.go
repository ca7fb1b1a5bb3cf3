package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.SQLitePath, "the backing store is opt-in")
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LEXWEAVE_LOG_LEVEL", "DEBUG")
	t.Setenv("LEXWEAVE_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("LEXWEAVE_REDIS_ADDR", "localhost:6380")
	t.Setenv("LEXWEAVE_CACHE_TTL_SECONDS", "90")

	cfg := Load()
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoadIgnoresBadTTL(t *testing.T) {
	t.Setenv("LEXWEAVE_CACHE_TTL_SECONDS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)

	t.Setenv("LEXWEAVE_CACHE_TTL_SECONDS", "-5")
	cfg = Load()
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}
