package bridge

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig holds connection settings for the Redis pub/sub bridge.
type RedisConfig struct {
	Addr     string // Redis address, default "localhost:6379"
	Password string // Redis password, default ""
	DB       int    // Redis database number, default 0
	Prefix   string // Channel prefix, default "wsforge:ws:"

	// ReconnectMinDelay is the delay before the first resubscribe attempt
	// after the Redis subscription drops. Default 500ms.
	ReconnectMinDelay time.Duration
	// ReconnectMaxDelay caps the exponentially growing delay between
	// resubscribe attempts. Default 30s.
	ReconnectMaxDelay time.Duration
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:              "localhost:6379",
		Prefix:            "wsforge:ws:",
		ReconnectMinDelay: 500 * time.Millisecond,
		ReconnectMaxDelay: 30 * time.Second,
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables.
// Falls back to defaults for any missing or malformed values.
func RedisConfigFromEnv() *RedisConfig {
	cfg := DefaultRedisConfig()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_WS_PREFIX"); prefix != "" {
		cfg.Prefix = prefix
	}
	if msStr := os.Getenv("REDIS_RECONNECT_MIN_MS"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil {
			cfg.ReconnectMinDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if msStr := os.Getenv("REDIS_RECONNECT_MAX_MS"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil {
			cfg.ReconnectMaxDelay = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}
