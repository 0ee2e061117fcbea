package seed

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"showdeck/internal/domain"
)

// Repository reads the operator-maintained static seed tables: the daily
// rating seed and the fallback catalog shown when the primary provider is
// unreachable.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// RatingSeed returns the static rating rows for one category, ordered by
// rank. An empty table is an empty slice, not an error.
func (r *Repository) RatingSeed(ctx context.Context, category domain.RatingCategory) ([]domain.RatingRecord, error) {
	query := `
		SELECT rank, item_id, title, score, audience_share
		FROM rating_seeds
		WHERE category = $1
		ORDER BY rank
	`

	rows, err := r.db.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query rating seeds: %w", err)
	}
	defer rows.Close()

	var records []domain.RatingRecord
	for rows.Next() {
		var (
			rank          int
			itemID        string
			title         string
			score         float64
			audienceShare sql.NullFloat64
		)

		if err := rows.Scan(&rank, &itemID, &title, &score, &audienceShare); err != nil {
			r.logger.Warn("Failed to scan rating seed row", zap.Error(err))
			continue
		}

		record := domain.RatingRecord{
			Rank:     rank,
			Category: category,
			ItemID:   itemID,
			Title:    title,
			Score:    score,
		}
		if audienceShare.Valid {
			record.AudienceShare = audienceShare.Float64
		}

		records = append(records, record)
	}

	return records, nil
}

// CatalogSeed returns the static fallback catalog items.
func (r *Repository) CatalogSeed(ctx context.Context) ([]domain.CatalogItem, error) {
	query := `
		SELECT id, name, original_name, synopsis, status, network,
		       poster_url, score, episodes_aired, episodes_total, kind
		FROM catalog_seeds
		ORDER BY score DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog seeds: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var (
			id            string
			name          string
			originalName  sql.NullString
			synopsis      sql.NullString
			status        string
			network       sql.NullString
			posterURL     sql.NullString
			score         float64
			episodesAired int
			episodesTotal int
			kind          string
		)

		if err := rows.Scan(&id, &name, &originalName, &synopsis, &status, &network,
			&posterURL, &score, &episodesAired, &episodesTotal, &kind); err != nil {
			r.logger.Warn("Failed to scan catalog seed row", zap.Error(err))
			continue
		}

		item := domain.CatalogItem{
			ID:            id,
			Name:          name,
			Synopsis:      domain.FallbackSynopsis,
			Status:        domain.LifecycleStatus(status),
			PosterURL:     domain.FallbackPoster,
			Score:         score,
			EpisodesAired: episodesAired,
			EpisodesTotal: episodesTotal,
			Kind:          domain.MediaKind(kind),
		}
		if originalName.Valid {
			item.OriginalName = originalName.String
		}
		if synopsis.Valid && synopsis.String != "" {
			item.Synopsis = synopsis.String
		}
		if network.Valid {
			item.Network = network.String
		}
		if posterURL.Valid && posterURL.String != "" {
			item.PosterURL = posterURL.String
		}

		items = append(items, item)
	}

	return items, nil
}
