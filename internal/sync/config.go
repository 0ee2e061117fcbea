package sync

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/internal/localcache"
	"showdeck/internal/store"
	"showdeck/pkg/errors"
)

// configCacheKey is the local-cache slot holding the last remotely observed
// site configuration.
const configCacheKey = "site_configuration"

// ConfigSync keeps the process-wide site configuration in step with the
// remote store. Bootstrap serves the cached (or default) value synchronously
// so consumers never observe an undefined state; Start attaches the single
// live subscription, writing every pushed document through to the local cache.
type ConfigSync struct {
	store  store.DocumentStore
	cache  *localcache.Store
	logger *zap.Logger

	mu      sync.Mutex
	cancel  func()
	current domain.SiteConfiguration
}

func NewConfigSync(docs store.DocumentStore, cache *localcache.Store, logger *zap.Logger) *ConfigSync {
	return &ConfigSync{
		store:  docs,
		cache:  cache,
		logger: logger,
	}
}

// Bootstrap returns the best-effort configuration snapshot without touching
// the network: the last cached value, or the hard-coded default when no cache
// exists (or it fails to parse).
func (c *ConfigSync) Bootstrap() domain.SiteConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := domain.DefaultSiteConfiguration()
	if raw, ok := c.cache.Read(configCacheKey); ok {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			c.logger.Warn("Cached configuration unreadable, using default", zap.Error(err))
			cfg = domain.DefaultSiteConfiguration()
		}
	}

	c.current = cfg
	return cfg
}

// Start attaches the live subscription. Every pushed update overwrites the
// local cache and is handed to onUpdate. If the remote document does not
// exist yet, the default is persisted upstream so subsequent readers observe
// it; that write flows back through the subscription like any other update.
func (c *ConfigSync) Start(ctx context.Context, onUpdate func(domain.SiteConfiguration)) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return errors.NewServiceError("configuration subscription already active", "config_sync", "start", nil)
	}
	c.mu.Unlock()

	cancel, err := c.store.Subscribe(ctx, store.CollectionConfig, store.ConfigDocID, func(doc json.RawMessage) {
		var cfg domain.SiteConfiguration
		if err := json.Unmarshal(doc, &cfg); err != nil {
			c.logger.Error("Pushed configuration unreadable, keeping last value", zap.Error(err))
			return
		}

		if err := c.cache.Write(configCacheKey, string(doc)); err != nil {
			c.logger.Warn("Failed to persist configuration to local cache", zap.Error(err))
		}

		c.mu.Lock()
		c.current = cfg
		c.mu.Unlock()

		if onUpdate != nil {
			onUpdate(cfg)
		}
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.seedRemoteIfAbsent(ctx); err != nil {
		c.logger.Warn("Failed to seed remote configuration", zap.Error(err))
	}

	return nil
}

// seedRemoteIfAbsent persists the default configuration upstream on first run.
func (c *ConfigSync) seedRemoteIfAbsent(ctx context.Context) error {
	_, exists, err := c.store.Get(ctx, store.CollectionConfig, store.ConfigDocID)
	if err != nil || exists {
		return err
	}

	fields, err := structFields(domain.DefaultSiteConfiguration())
	if err != nil {
		return err
	}

	c.logger.Info("Remote configuration absent, persisting default")
	return c.store.SetMerge(ctx, store.CollectionConfig, store.ConfigDocID, fields)
}

// Stop tears the subscription down. Safe to call more than once.
func (c *ConfigSync) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Current returns the latest observed configuration.
func (c *ConfigSync) Current() domain.SiteConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// structFields flattens a struct into the field map shape SetMerge expects.
func structFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
