package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfd/shelf/internal/api"
	"github.com/shelfd/shelf/internal/bridge"
	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/config"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/httpserver"
	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/mutate"
	"github.com/shelfd/shelf/internal/pager"
	"github.com/shelfd/shelf/internal/prefetch"
	"github.com/shelfd/shelf/internal/redis"
	"github.com/shelfd/shelf/internal/scheduler"
	"github.com/shelfd/shelf/internal/sources/export"
	redisstore "github.com/shelfd/shelf/internal/store/redis"
	"github.com/shelfd/shelf/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	viewCache   *cache.Cache
	mutator     *mutate.Coordinator
	prefetcher  *prefetch.Prefetcher
	revalidator *scheduler.Revalidator
	evictor     *scheduler.Evictor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis early - fail fast if unavailable
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	store := redisstore.NewStore(redisClient)
	viewCache := cache.New()

	apiClient := api.NewClient(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		AuthToken: cfg.APIToken,
		UserAgent: "shelfd/" + version.Version,
	}, loggerClient)

	pageCtl := pager.New(viewCache, apiClient, cfg.PageSize, loggerClient)
	mutator := mutate.New(viewCache, apiClient, cfg.SettleDelay, loggerClient)
	dispatcher := bridge.NewDispatcher(mutator, viewCache, loggerClient)

	prefetcher := prefetch.New(
		detailFetch(apiClient, store),
		detailSatisfied(store),
		cfg.PrefetchDebounce,
		cfg.PrefetchConcurrency,
		loggerClient,
	)

	// Seed the default list view from an export file, if one is configured.
	// Network fetches replace the seed as soon as they land.
	if cfg.ExportFile != "" {
		seedFromExport(cfg.ExportFile, cfg.PageSize, viewCache, store, loggerClient)
	}

	revalidateTrigger := make(chan struct{}, 1)
	revalidator := scheduler.NewRevalidator(
		viewCache, pageCtl, loggerClient, cfg.RevalidateInterval, revalidateTrigger)
	evictor := scheduler.NewEvictor(
		viewCache, store, loggerClient, cfg.EvictInterval, cfg.EvictAge)

	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		RateLimitBurst:    cfg.RateLimitBurst,
		RateLimitPerMin:   cfg.RateLimitPerMin,
		RedisClient:       redisClient,
		Store:             store,
		Cache:             viewCache,
		Pager:             pageCtl,
		Dispatcher:        dispatcher,
		Prefetcher:        prefetcher,
		RevalidateTrigger: revalidateTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		viewCache:   viewCache,
		mutator:     mutator,
		prefetcher:  prefetcher,
		revalidator: revalidator,
		evictor:     evictor,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting shelfd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("shelfd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.revalidator.Start(ctx); err != nil {
		return fmt.Errorf("failed to start revalidator: %w", err)
	}
	a.logger.Info("revalidator started",
		logger.Duration("interval", a.cfg.RevalidateInterval))

	if err := a.evictor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start evictor: %w", err)
	}
	a.logger.Info("evictor started",
		logger.Duration("interval", a.cfg.EvictInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.revalidator.Stop()
	a.evictor.Stop()
	a.prefetcher.Stop()
	a.mutator.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("✅ shelfd stopped cleanly")
	return nil
}

// detailFetch loads a bookmark detail from the API and lands it in the
// Redis detail cache.
func detailFetch(client *api.Client, store *redisstore.Store) prefetch.FetchFunc {
	return func(ctx context.Context, id string) error {
		b, err := client.GetBookmark(ctx, id)
		if err != nil {
			return err
		}
		return store.SaveDetail(ctx, b)
	}
}

// detailSatisfied reports whether a detail is already cached. Errors count
// as unsatisfied; worst case is a redundant fetch.
func detailSatisfied(store *redisstore.Store) prefetch.SatisfiedFunc {
	return func(id string) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		ok, err := store.HasDetail(ctx, id)
		return err == nil && ok
	}
}

// seedFromExport fills the default bookmark view and the detail store from
// an export file. Best effort: a broken file only costs the warm start.
func seedFromExport(path string, pageSize int, c *cache.Cache, store *redisstore.Store, log logger.Logger) {
	f, err := export.NewLoader(path).Load()
	if err != nil {
		log.Warn("failed to load export file", logger.String("path", path), logger.Error(err))
		return
	}

	bookmarks, err := export.NewMapper().MapBookmarks(f)
	if err != nil {
		log.Warn("export file has no usable bookmarks", logger.Error(err))
		return
	}

	items := make([]domain.Entity, 0, len(bookmarks))
	for _, b := range bookmarks {
		items = append(items, b)
	}

	defaultView := domain.QueryIdentity{Kind: domain.KindBookmark}
	c.Set(defaultView, []domain.Page{{
		Items: items,
		Limit: pageSize,
		Total: domain.TotalUnknown,
	}})
	// Seeded data is immediately stale; the revalidator replaces it with
	// server truth on its first pass.
	c.Invalidate(defaultView)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.SaveDetailsMany(ctx, bookmarks); err != nil {
		log.Warn("failed to persist export seed", logger.Error(err))
	}

	log.Info("seeded bookmarks from export file",
		logger.String("path", path),
		logger.Int("count", len(bookmarks)))
}
