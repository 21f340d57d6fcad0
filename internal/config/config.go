package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabaseURL string // sqlite DSN, ex: "file:linkdeck.db"
	JWTSecret   string // HMAC secret for bearer token verification

	SeedFile           string        // path to the curated links.yaml (optional, empty = seed reload disabled)
	SeedReloadInterval time.Duration // interval to re-check the seed file (default: 24h)
	DedupSweepInterval time.Duration // interval for the maintenance dedup pass (default: 24h)

	// Redis (optional snapshot cache; empty addr = disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts
	SnapshotCacheTTL    time.Duration // TTL for the cached active snapshot
}

func Load() *Config {
	_ = godotenv.Load() // .env is optional; env vars win in prod

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKDECK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKDECK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKDECK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKDECK_PRETTY_LOG", true),

		// Storage & auth
		DatabaseURL: getenv("LINKDECK_DATABASE_URL", "file:linkdeck.db"),
		JWTSecret:   requireEnv("LINKDECK_JWT_SECRET"),

		// Catalog maintenance
		SeedFile:           getenv("LINKDECK_SEED_FILE", ""), // Optional, empty = seed reload disabled
		SeedReloadInterval: mustDuration("LINKDECK_SEED_RELOAD_INTERVAL", 24*time.Hour),
		DedupSweepInterval: mustDuration("LINKDECK_DEDUP_SWEEP_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:           getenv("LINKDECK_REDIS_ADDR", ""),
		RedisUser:           getenv("LINKDECK_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("LINKDECK_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LINKDECK_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		SnapshotCacheTTL:    mustDuration("LINKDECK_SNAPSHOT_CACHE_TTL", 5*time.Minute),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.JWTSecret = "***REDACTED***"
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
