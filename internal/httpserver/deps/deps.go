package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfd/shelf/internal/bridge"
	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/pager"
	"github.com/shelfd/shelf/internal/prefetch"
	redisstore "github.com/shelfd/shelf/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to access the server
	AllowedCIDRS []string // IPs allowed to reach the daemon (default: loopback)
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	RateLimitBurst  int
	RateLimitPerMin int

	RedisClient *redis.Client      // Redis client connection
	Store       *redisstore.Store  // layout prefs + detail persistence
	Cache       *cache.Cache       // normalized in-memory view cache
	Pager       *pager.Controller  // per-view pagination state
	Dispatcher  *bridge.Dispatcher // extension message routing
	Prefetcher  *prefetch.Prefetcher

	RevalidateTrigger chan struct{} // channel to force a stale-view refresh pass
}
