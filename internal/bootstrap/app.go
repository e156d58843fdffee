// Package bootstrap handles application initialization and lifecycle
// management for the price-tracker service.
//
// The bootstrap process follows these phases:
//   - Phase 1: Config & Logger - Load configuration and create logger
//   - Phase 2: Database - Connect to PostgreSQL, migrate, create repositories
//   - Phase 3: Cache - Connect to Redis
//   - Phase 4: Scraping - Connector registry, worker pool, dispatcher
//   - Phase 5: Read side - Status tracker and HTTP handlers
//   - Phase 6: Background - Periodic price refresher
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/api"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/cache"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/connector"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/dispatcher"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/refresh"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/vision"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/worker"
)

// App holds the wired components of a running service instance.
type App struct {
	Config *config.Config
	Logger logger.Interface

	DB    *sqlx.DB
	Redis *redis.Client
	Cache cache.Service

	PlatformRepo      database.PlatformRepositoryInterface
	ProductRepo       database.ProductRepositoryInterface
	ListingRepo       database.ListingRepositoryInterface
	PriceHistoryRepo  database.PriceHistoryRepositoryInterface
	JobRepo           database.JobRepositoryInterface
	SearchHistoryRepo database.SearchHistoryRepositoryInterface

	Registry    *connector.Registry
	Pool        *worker.Pool
	PoolMonitor *worker.HealthMonitor
	Dispatcher  *dispatcher.Dispatcher
	Tracker     *status.Tracker
	Identifier  vision.Identifier
	Refresher   *refresh.Refresher
	Server      *api.Server
}

// Build wires the full application. Callers own the returned App and must
// Close it.
func Build(ctx context.Context) (*App, error) {
	// Phase 1: config and logger
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{Config: cfg, Logger: log}

	// Phase 2: database and repositories
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	app.PlatformRepo = database.NewPlatformRepository(db)
	app.ProductRepo = database.NewProductRepository(db)
	app.ListingRepo = database.NewListingRepository(db)
	app.PriceHistoryRepo = database.NewPriceHistoryRepository(db)
	app.JobRepo = database.NewJobRepository(db)
	app.SearchHistoryRepo = database.NewSearchHistoryRepository(db)

	// Phase 3: cache
	redisClient, err := cache.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.Redis = redisClient
	app.Cache = cache.NewRedisCache(redisClient)

	// Phase 4: scraping pipeline
	app.Registry = connector.NewDefaultRegistry(connector.Config{
		UserAgent:      cfg.Scraper.UserAgent,
		RequestTimeout: cfg.Scraper.RequestTimeout,
	}, log)

	cons := consolidator.New(app.ProductRepo, app.ListingRepo, app.PriceHistoryRepo, log)

	app.Dispatcher = dispatcher.New(
		app.JobRepo, app.PlatformRepo, app.Registry, nil, cons,
		app.Cache, cfg.Scraper, cfg.Redis.CacheTTL, log,
	)

	poolCfg := worker.DefaultConfig()
	poolCfg.PoolSize = cfg.Scraper.PoolSize
	poolCfg.JobTimeout = cfg.Scraper.JobTimeout
	poolCfg.DrainTimeout = cfg.Scraper.DrainTimeout

	pool, err := worker.NewPool(poolCfg, app.Dispatcher.Execute, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	app.Pool = pool
	app.Dispatcher.SetPool(pool)
	app.PoolMonitor = worker.NewHealthMonitor(pool, poolCfg.HealthCheckInterval, log)

	// Phase 5: read side and HTTP surface
	app.Tracker = status.NewTracker(
		app.Cache, app.JobRepo, app.ProductRepo, app.ListingRepo,
		cfg.Redis.CacheTTL, log,
	)
	app.Identifier = vision.NewGeminiClient(cfg.Vision, log)

	handler := api.NewHandler(
		app.Dispatcher, app.Tracker, app.Identifier,
		app.PlatformRepo, app.ProductRepo, app.ListingRepo,
		app.PriceHistoryRepo, app.SearchHistoryRepo,
		cfg.Server.MaxUploadSize, log,
	)
	app.Server = api.NewServer(cfg.Server, handler, log)

	// Phase 6: background refresh
	app.Refresher = refresh.New(
		app.Dispatcher, app.ProductRepo, app.PlatformRepo,
		cfg.Scraper.RefreshSchedule, cfg.Scraper.RefreshTopN, log,
	)

	return app, nil
}

// SeedPlatforms upserts the default marketplace catalog rows.
func (a *App) SeedPlatforms(ctx context.Context) error {
	for _, platform := range connector.DefaultPlatforms() {
		if err := a.PlatformRepo.Upsert(ctx, platform); err != nil {
			return fmt.Errorf("failed to seed platform %s: %w", platform.Name, err)
		}
	}
	return nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close Redis client", "error", err.Error())
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("failed to close database", "error", err.Error())
		}
	}
}
