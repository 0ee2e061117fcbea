package catalog

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/internal/provider/tmdb"
	"showdeck/internal/util"
)

// DiscoveryProvider is the primary catalog provider surface the orchestrator
// needs.
type DiscoveryProvider interface {
	Discover(ctx context.Context, q tmdb.Query) ([]domain.CatalogItem, error)
	GetDetail(ctx context.Context, id string, kind domain.MediaKind) (*domain.CatalogItem, error)
	ResolveExternalID(ctx context.Context, id string, kind domain.MediaKind) (string, error)
}

// ReceptionProvider is the secondary enrichment provider surface.
type ReceptionProvider interface {
	FetchReception(ctx context.Context, externalID string) (*domain.Reception, error)
}

// AvailabilityProvider is the streaming-availability provider surface.
type AvailabilityProvider interface {
	Sources(ctx context.Context, externalID string) ([]domain.StreamingSource, error)
}

// SeedSource supplies the static fallback catalog used when the primary
// provider is entirely unreachable.
type SeedSource interface {
	CatalogSeed(ctx context.Context) ([]domain.CatalogItem, error)
}

// ConfigSource exposes the latest site configuration, whose provider flags
// gate enrichment and availability lookups.
type ConfigSource interface {
	Current() domain.SiteConfiguration
}

// SearchRecorder persists recent search terms.
type SearchRecorder interface {
	AddRecentSearch(term string) error
}

// Service is the enrichment orchestrator. LoadCategory returns a coarse list
// immediately and republishes a richer one after a bounded background merge
// pass; LoadDetail assembles one fully enriched item.
type Service struct {
	discovery    DiscoveryProvider
	reception    ReceptionProvider
	availability AvailabilityProvider
	seeds        SeedSource
	siteConfig   ConfigSource
	searches     SearchRecorder
	headSize     int
	logger       *zap.Logger

	// Generations orders LoadCategory invocations: tokens from Next gate
	// phase-2 publication.
	Generations Generations
}

func NewService(
	discovery DiscoveryProvider,
	reception ReceptionProvider,
	availability AvailabilityProvider,
	seeds SeedSource,
	siteConfig ConfigSource,
	searches SearchRecorder,
	headSize int,
	logger *zap.Logger,
) *Service {
	return &Service{
		discovery:    discovery,
		reception:    reception,
		availability: availability,
		seeds:        seeds,
		siteConfig:   siteConfig,
		searches:     searches,
		headSize:     headSize,
		logger:       logger,
	}
}

// LoadCategory runs the two-phase load. The returned slice is the immediate
// phase-1 result and is authoritative for ordering and item count; the
// channel delivers at most one enriched list (same items, same order, a
// bounded prefix gaining extra fields) and is then closed. If tok is
// superseded before phase 2 settles, nothing is published.
func (s *Service) LoadCategory(ctx context.Context, q tmdb.Query, tok *Token) ([]domain.CatalogItem, <-chan []domain.CatalogItem) {
	enriched := make(chan []domain.CatalogItem, 1)

	items, err := s.discovery.Discover(ctx, q)
	if err != nil {
		s.logger.Warn("Discovery failed, falling back to catalog seed",
			zap.String("query", q.CacheKey()),
			zap.Error(err),
		)
		items = s.seedFallback(ctx)
	}

	if q.Search != "" && s.searches != nil && len(items) > 0 {
		if err := s.searches.AddRecentSearch(q.Search); err != nil {
			s.logger.Warn("Failed to record search term", zap.Error(err))
		}
	}

	if len(items) == 0 || !s.enrichmentEnabled() || s.headSize == 0 {
		close(enriched)
		return items, enriched
	}

	// Phase 2 is scheduled strictly after phase 1 resolved, so consumers
	// always observe the coarse list first.
	go func() {
		defer close(enriched)

		merged := s.enrichHead(ctx, items)

		if !tok.Live() {
			s.logger.Debug("Enrichment result superseded, discarding",
				zap.String("query", q.CacheKey()),
			)
			return
		}

		enriched <- merged
	}()

	return items, enriched
}

// enrichHead resolves secondary attributes for the first headSize items
// concurrently and merges them in place-order; tail items pass through
// untouched. The batch completes as a unit.
func (s *Service) enrichHead(ctx context.Context, items []domain.CatalogItem) []domain.CatalogItem {
	head := util.Min(s.headSize, len(items))

	merged := make([]domain.CatalogItem, len(items))
	copy(merged, items)

	p := pool.New().WithMaxGoroutines(head)
	for i := 0; i < head; i++ {
		i := i
		p.Go(func() {
			merged[i] = s.enrichItem(ctx, items[i])
		})
	}
	p.Wait()

	return merged
}

// enrichItem attaches critical-reception attributes to one item. Every
// failure path keeps the original item: identifier missing, resolution
// failing, or the secondary provider having no record are all "no enrichment
// for this item", never an error and never a dropped item.
func (s *Service) enrichItem(ctx context.Context, item domain.CatalogItem) domain.CatalogItem {
	externalID := item.ExternalID
	if externalID == "" {
		resolved, err := s.discovery.ResolveExternalID(ctx, item.ID, item.Kind)
		if err != nil {
			s.logger.Debug("External id resolution failed",
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
			return item
		}
		externalID = resolved
	}
	if externalID == "" {
		return item
	}

	rec, err := s.reception.FetchReception(ctx, externalID)
	if err != nil {
		s.logger.Debug("Reception lookup failed",
			zap.String("item_id", item.ID),
			zap.String("external_id", externalID),
			zap.Error(err),
		)
		return item
	}
	if rec == nil {
		return item
	}

	item.ExternalID = externalID
	return domain.MergeReception(item, rec)
}

// LoadDetail assembles the full record for one title: provider detail plus
// reception attributes and where-to-watch sources, each tolerated
// independently when it fails.
func (s *Service) LoadDetail(ctx context.Context, id string, kind domain.MediaKind) (*domain.CatalogItem, error) {
	detail, err := s.discovery.GetDetail(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}

	item := *detail

	if s.enrichmentEnabled() && item.ExternalID != "" {
		if rec, err := s.reception.FetchReception(ctx, item.ExternalID); err == nil && rec != nil {
			item = domain.MergeReception(item, rec)
		} else if err != nil {
			s.logger.Debug("Reception lookup failed", zap.String("item_id", id), zap.Error(err))
		}
	}

	if s.availabilityEnabled() && item.ExternalID != "" {
		sources, err := s.availability.Sources(ctx, item.ExternalID)
		if err != nil {
			s.logger.Debug("Availability lookup failed", zap.String("item_id", id), zap.Error(err))
		} else {
			item.Sources = sources
		}
	}

	return &item, nil
}

func (s *Service) seedFallback(ctx context.Context) []domain.CatalogItem {
	if s.seeds == nil {
		return []domain.CatalogItem{}
	}

	seed, err := s.seeds.CatalogSeed(ctx)
	if err != nil {
		s.logger.Error("Catalog seed unavailable", zap.Error(err))
		return []domain.CatalogItem{}
	}
	return seed
}

func (s *Service) enrichmentEnabled() bool {
	if s.siteConfig == nil {
		return true
	}
	return s.siteConfig.Current().Providers.EnrichmentEnabled
}

func (s *Service) availabilityEnabled() bool {
	if s.siteConfig == nil {
		return true
	}
	return s.siteConfig.Current().Providers.AvailabilityEnabled
}
