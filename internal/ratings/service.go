package ratings

import (
	"context"

	"go.uber.org/zap"

	"showdeck/internal/domain"
)

// displaySize is the fixed length of every rating table.
const displaySize = 10

// TrendingProvider is the live source of trending titles.
type TrendingProvider interface {
	Trending(ctx context.Context, window string, kind domain.MediaKind) ([]domain.CatalogItem, error)
}

// Service merges a statically-seeded rating table with live trending queries,
// switched wholesale per category tab; seed and live rows are never merged
// field-by-field.
type Service struct {
	trending TrendingProvider
	logger   *zap.Logger
}

func NewService(trending TrendingProvider, logger *zap.Logger) *Service {
	return &Service{
		trending: trending,
		logger:   logger,
	}
}

// GetRatings returns the top-10 table for a category. For daily-tv a
// caller-supplied seed is preferred (zero additional latency) and the live
// fetch is only a fallback for an empty seed; the weekly categories always
// fetch live.
func (s *Service) GetRatings(ctx context.Context, category domain.RatingCategory, seed []domain.RatingRecord) ([]domain.RatingRecord, error) {
	if category == domain.CategoryDailyTV && len(seed) > 0 {
		return rank(seed, category), nil
	}

	window, kind := categoryQuery(category)

	items, err := s.trending.Trending(ctx, window, kind)
	if err != nil {
		s.logger.Error("Trending fetch failed",
			zap.String("category", string(category)),
			zap.Error(err),
		)
		// A stale seed beats an empty table.
		if len(seed) > 0 {
			return rank(seed, category), nil
		}
		return nil, err
	}

	records := make([]domain.RatingRecord, 0, len(items))
	for _, item := range items {
		records = append(records, domain.RatingRecord{
			Category: category,
			ItemID:   item.ID,
			Title:    item.Name,
			Score:    item.Score,
		})
	}

	return rank(records, category), nil
}

func categoryQuery(category domain.RatingCategory) (window string, kind domain.MediaKind) {
	switch category {
	case domain.CategoryWeeklyMovies:
		return "week", domain.KindMovie
	case domain.CategoryWeeklyTV:
		return "week", domain.KindSeries
	default:
		return "day", domain.KindSeries
	}
}

// rank truncates to the display size and assigns rank by position. The trend
// marker is classified purely from rank position (top third up, bottom third
// down, middle stable): a display heuristic, not a measurement against
// historical data.
func rank(records []domain.RatingRecord, category domain.RatingCategory) []domain.RatingRecord {
	n := len(records)
	if n > displaySize {
		n = displaySize
	}

	ranked := make([]domain.RatingRecord, n)
	for i := 0; i < n; i++ {
		ranked[i] = records[i]
		ranked[i].Rank = i + 1
		ranked[i].Category = category
		ranked[i].Trend = trendForRank(i+1, n)
	}

	return ranked
}

func trendForRank(rank, size int) domain.Trend {
	switch {
	case rank <= size/3:
		return domain.TrendUp
	case rank > size-size/3:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}
