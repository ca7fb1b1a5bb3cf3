// Package config loads runtime configuration from environment
// variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs for the lexweave CLI and any embedding
// service. Library callers construct engines directly and can ignore
// this entirely.
type Config struct {
	LogLevel string

	// SQLitePath, when set, layers a SQLite clause database under the
	// library: slugs the library lacks fall through to it.
	SQLitePath string

	// DatabaseURL, when set, selects the Postgres store as the backing
	// layer instead of SQLite.
	DatabaseURL string

	// RedisAddr, when set, puts the read-through cache in front of the
	// backing store.
	RedisAddr string
	CacheTTL  time.Duration

	// OTLPEndpoint, when set, enables telemetry export.
	OTLPEndpoint string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	cfg := &Config{
		LogLevel:     getenv("LEXWEAVE_LOG_LEVEL", "INFO"),
		SQLitePath:   os.Getenv("LEXWEAVE_SQLITE_PATH"),
		DatabaseURL:  os.Getenv("LEXWEAVE_DATABASE_URL"),
		RedisAddr:    os.Getenv("LEXWEAVE_REDIS_ADDR"),
		CacheTTL:     5 * time.Minute,
		OTLPEndpoint: os.Getenv("LEXWEAVE_OTLP_ENDPOINT"),
	}

	if raw := os.Getenv("LEXWEAVE_CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.CacheTTL = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
