package app

import (
	"context"

	"go.uber.org/zap"

	"showdeck/internal/catalog"
	"showdeck/internal/config"
	"showdeck/internal/domain"
	"showdeck/internal/gateway"
	"showdeck/internal/localcache"
	"showdeck/internal/ratings"
	"showdeck/internal/seed"
	"showdeck/internal/store"
	syncsvc "showdeck/internal/sync"
	"showdeck/internal/watchlist"
)

// Dependencies is the wired service graph handed to the runtime.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Cache      *localcache.Store
	Store      store.DocumentStore
	Seeds      *seed.Repository
	ConfigSync *syncsvc.ConfigSync
	Profiles   *syncsvc.ProfileSync
	Watchlist  *watchlist.Service
	Catalog    *catalog.Service
	Ratings    *ratings.Service
	Hub        *gateway.Hub
	Server     *gateway.Server
}

// App is the runtime: it bridges the sync layer's push channels onto the
// gateway hub and owns startup and shutdown ordering.
type App struct {
	deps *Dependencies
}

func NewApp(deps *Dependencies) *App {
	return &App{deps: deps}
}

// Start bootstraps the configuration, attaches the live subscriptions and
// serves the gateway. It blocks until the gateway stops or ctx ends.
func (a *App) Start(ctx context.Context) error {
	d := a.deps

	bootstrap := d.ConfigSync.Bootstrap()
	d.Logger.Info("Configuration bootstrapped",
		zap.String("site", bootstrap.NameFirst+bootstrap.NameSecond),
	)

	if err := d.ConfigSync.Start(ctx, func(cfg domain.SiteConfiguration) {
		d.Hub.Broadcast("config_updated", cfg)
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Server.Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// SetIdentity switches the profile subscription to a new identity (nil clears
// it) and forwards pushed profiles to connected views.
func (a *App) SetIdentity(ctx context.Context, identity *domain.Identity) error {
	d := a.deps
	return d.Profiles.SetIdentity(ctx, identity, func(profile *domain.UserProfile) {
		d.Hub.Broadcast("profile_updated", profile)
	})
}

// GetRatings serves a rating table, loading the static seed rows for the
// category first. A seed read failure is tolerated; the ratings service
// falls back to a live fetch when handed an empty seed.
func (a *App) GetRatings(ctx context.Context, category domain.RatingCategory) ([]domain.RatingRecord, error) {
	d := a.deps

	seedRows, err := d.Seeds.RatingSeed(ctx, category)
	if err != nil {
		d.Logger.Warn("Rating seed unavailable",
			zap.String("category", string(category)),
			zap.Error(err),
		)
	}

	return d.Ratings.GetRatings(ctx, category, seedRows)
}

// Shutdown tears subscriptions and the gateway down in reverse start order.
func (a *App) Shutdown(ctx context.Context) error {
	d := a.deps

	d.Profiles.Stop()
	d.ConfigSync.Stop()

	return d.Server.Shutdown(ctx)
}
