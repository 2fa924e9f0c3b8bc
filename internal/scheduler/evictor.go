package scheduler

import (
	"context"
	"time"

	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/logger"
	redisstore "github.com/shelfd/shelf/internal/store/redis"
)

const (
	// DefaultEvictionAge is how long an untouched view survives in memory
	DefaultEvictionAge = 30 * time.Minute
)

// Evictor drops cached views that have not been written in a while and
// prunes the Redis detail index of entries whose values have expired.
type Evictor struct {
	cache    *cache.Cache
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

// NewEvictor creates a new evictor
func NewEvictor(
	c *cache.Cache,
	store *redisstore.Store,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *Evictor {
	if maxAge == 0 {
		maxAge = DefaultEvictionAge
	}

	return &Evictor{
		cache:    c,
		store:    store,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic eviction process
func (e *Evictor) Start(ctx context.Context) error {
	// Run immediately on start
	if err := e.Collect(ctx); err != nil {
		e.logger.Warn("initial eviction pass failed", logger.Error(err))
	}

	ticker := time.NewTicker(e.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := e.Collect(ctx); err != nil {
					e.logger.Error("eviction pass failed", logger.Error(err))
				}
			case <-e.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the evictor
func (e *Evictor) Stop() {
	close(e.stopCh)
}

// Collect evicts aged-out views from memory and dangling ids from the
// Redis detail index.
func (e *Evictor) Collect(ctx context.Context) error {
	evicted := e.cache.EvictOlderThan(e.maxAge)
	pruned := e.pruneDetailIndex(ctx)

	if evicted+pruned > 0 {
		e.logger.Info("eviction pass completed",
			logger.Int("views_evicted", evicted),
			logger.Int("details_pruned", pruned))
	} else {
		e.logger.Debug("nothing to evict")
	}

	return nil
}

// pruneDetailIndex removes ids from the detail set whose detail values
// have hit their TTL. Best effort; Redis being down only delays cleanup.
func (e *Evictor) pruneDetailIndex(ctx context.Context) int {
	if e.store == nil {
		return 0
	}

	ids, err := e.store.AllDetailIDs(ctx)
	if err != nil {
		e.logger.Warn("failed to list detail ids", logger.Error(err))
		return 0
	}

	pruned := 0
	for _, id := range ids {
		ok, err := e.store.HasDetail(ctx, id)
		if err != nil {
			e.logger.Warn("failed to check detail",
				logger.String("id", id),
				logger.Error(err))
			continue
		}
		if ok {
			continue
		}

		if err := e.store.DeleteDetail(ctx, id); err != nil {
			e.logger.Warn("failed to prune detail index entry",
				logger.String("id", id),
				logger.Error(err))
			continue
		}
		pruned++
	}

	return pruned
}
