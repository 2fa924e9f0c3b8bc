package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8787"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Backend API
	APIBaseURL string        // ex: "https://api.shelf.ext"
	APIToken   string        // bearer token, optional for public instances
	APITimeout time.Duration // per-request timeout (default: 10s)

	// Cache / pagination behavior
	PageSize            int           // items per fetched page (default: 50)
	SettleDelay         time.Duration // delay before a confirmed mutation marks views stale (default: 2s)
	RevalidateInterval  time.Duration // interval between stale-view refresh passes (default: 1m)
	EvictInterval       time.Duration // interval between memory eviction passes (default: 10m)
	EvictAge            time.Duration // age after which an untouched view is evicted (default: 30m)
	PrefetchDebounce    time.Duration // how long an id must stay in view before prefetch (default: 250ms)
	PrefetchConcurrency int           // max simultaneous prefetch fetches (default: 4)

	// Warm start
	ExportFile string // path to a bookmarks export yaml (optional, empty = no seed)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries (ex: 2s, grows exponentially)

	// Access restrictions. The daemon serves a local frontend and the
	// browser extension; defaults lock it to loopback.
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	// Rate limiting for the extension bridge
	RateLimitBurst  int // bucket capacity per client IP
	RateLimitPerMin int // refill per client IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8787"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Backend API
		APIBaseURL: requireEnv("SHELF_API_URL"),
		APIToken:   getenv("SHELF_API_TOKEN", ""),
		APITimeout: mustDuration("SHELF_API_TIMEOUT", 10*time.Second),

		// Cache behavior
		PageSize:            getenvInt("SHELF_PAGE_SIZE", 50),
		SettleDelay:         mustDuration("SHELF_SETTLE_DELAY", 2*time.Second),
		RevalidateInterval:  mustDuration("SHELF_REVALIDATE_INTERVAL", time.Minute),
		EvictInterval:       mustDuration("SHELF_EVICT_INTERVAL", 10*time.Minute),
		EvictAge:            mustDuration("SHELF_EVICT_AGE", 30*time.Minute),
		PrefetchDebounce:    mustDuration("SHELF_PREFETCH_DEBOUNCE", 250*time.Millisecond),
		PrefetchConcurrency: getenvInt("SHELF_PREFETCH_CONCURRENCY", 4),

		// Warm start
		ExportFile: getenv("SHELF_EXPORT_FILE", ""), // Optional, empty = no seed

		// Redis settings
		RedisAddr:             requireEnv("SHELF_REDIS_ADDR"),
		RedisUser:             getenv("SHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELF_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("SHELF_ALLOWED_CIDRS", "127.0.0.1/32,::1/128")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", false),

		// Rate limiting
		RateLimitBurst:  getenvInt("SHELF_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("SHELF_RATE_LIMIT_PER_MIN", 60),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.PageSize < 1 {
		panic(fmt.Sprintf("❌ FATAL: SHELF_PAGE_SIZE must be >= 1, got %d", cfg.PageSize))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.APIToken = "***REDACTED***"
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

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
