package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"showdeck/internal/catalog"
	"showdeck/internal/config"
	"showdeck/internal/gateway"
	"showdeck/internal/localcache"
	"showdeck/internal/provider/omdb"
	"showdeck/internal/provider/tmdb"
	"showdeck/internal/provider/watchmode"
	"showdeck/internal/ratings"
	"showdeck/internal/seed"
	"showdeck/internal/store"
	syncsvc "showdeck/internal/sync"
	"showdeck/internal/watchlist"
)

// Container bundles the assembled services for constructing the runtime App.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	appDeps *Dependencies
}

// NewApp instantiates the runtime using the pre-built dependency graph.
func (c *Container) NewApp() (*App, error) {
	if c == nil || c.appDeps == nil {
		return nil, fmt.Errorf("app dependencies not initialized")
	}
	return NewApp(c.appDeps), nil
}

// Build assembles all infrastructure services. Heavy-weight initialization
// (store, seed database, local cache) happens here so that the runtime App
// stays focused on orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Local durable cache, read synchronously before anything else so
	// bootstrap values are available immediately.
	cache, err := localcache.New(afero.NewOsFs(), cfg.Cache.Path, cfg.Cache.MaxRecentSearches, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	// Remote document store
	docs, err := store.NewRedisStore(store.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}
	closers = append(closers, func() {
		_ = docs.Close()
	})

	// Seed database
	postgres, err := seed.NewPostgresService(seed.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect seed database: %w", err)
	}
	closers = append(closers, func() {
		_ = postgres.Close()
	})
	seeds := seed.NewRepository(postgres, logger)

	// Provider clients share one bounded-timeout HTTP client.
	httpClient := &http.Client{Timeout: cfg.Catalog.RequestTimeout}

	tmdbClient, err := tmdb.NewClient(httpClient, tmdb.Config{
		APIKey:   cfg.TMDB.APIKey,
		BaseURL:  cfg.TMDB.BaseURL,
		ImageURL: cfg.TMDB.ImageURL,
		Language: cfg.TMDB.Language,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog provider client: %w", err)
	}

	omdbClient := omdb.NewClient(httpClient, omdb.Config{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
	}, logger)

	watchmodeClient := watchmode.NewClient(httpClient, watchmode.Config{
		APIKey:  cfg.Watchmode.APIKey,
		BaseURL: cfg.Watchmode.BaseURL,
		Region:  cfg.Watchmode.Region,
	}, logger)

	// Sync layer and mutators
	configSync := syncsvc.NewConfigSync(docs, cache, logger)
	profileSync := syncsvc.NewProfileSync(docs, logger)
	watchlistSvc := watchlist.NewService(docs, profileSync, logger)

	// Aggregation
	catalogSvc := catalog.NewService(
		tmdbClient,
		omdbClient,
		watchmodeClient,
		seeds,
		configSync,
		cache,
		cfg.Catalog.EnrichHeadSize,
		logger,
	)
	ratingsSvc := ratings.NewService(tmdbClient, logger)

	// View-facing gateway
	hub := gateway.NewHub(logger)
	server := gateway.NewServer(cfg.Gateway.Addr, hub, logger)

	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Cache:      cache,
		Store:      docs,
		Seeds:      seeds,
		ConfigSync: configSync,
		Profiles:   profileSync,
		Watchlist:  watchlistSvc,
		Catalog:    catalogSvc,
		Ratings:    ratingsSvc,
		Hub:        hub,
		Server:     server,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		appDeps: deps,
	}, nil
}
