package scheduler

import (
	"context"
	"time"

	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/pager"
)

// Revalidator periodically refetches views the cache has marked stale,
// so that stale-while-revalidate reads converge without the reader doing
// anything. A manual trigger channel forces a pass outside the ticker.
type Revalidator struct {
	cache         *cache.Cache
	pager         *pager.Controller
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRevalidator creates a new revalidator
func NewRevalidator(
	c *cache.Cache,
	p *pager.Controller,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Revalidator {
	return &Revalidator{
		cache:         c,
		pager:         p,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic revalidation process
func (r *Revalidator) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.runPass(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual revalidation triggered")
				r.runPass(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the revalidator
func (r *Revalidator) Stop() {
	close(r.stopCh)
}

// runPass refreshes every view currently marked stale. Failures are
// per-view; one unreachable fetch does not block the rest.
func (r *Revalidator) runPass(ctx context.Context) {
	stale := r.cache.StaleIdentities()
	if len(stale) == 0 {
		r.logger.Debug("no stale views to revalidate")
		return
	}

	r.logger.Info("revalidating stale views", logger.Int("count", len(stale)))

	refreshed := 0
	for _, q := range stale {
		if err := r.refresh(ctx, q); err != nil {
			r.logger.Warn("failed to revalidate view",
				logger.String("view", q.Key()),
				logger.Error(err))
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		r.logger.Info("revalidation pass completed",
			logger.Int("refreshed", refreshed),
			logger.Int("failed", len(stale)-refreshed))
	}
}

func (r *Revalidator) refresh(ctx context.Context, q domain.QueryIdentity) error {
	return r.pager.Refresh(ctx, q)
}
