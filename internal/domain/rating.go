package domain

// RatingCategory selects which trending table is shown.
type RatingCategory string

const (
	CategoryDailyTV      RatingCategory = "daily-tv"
	CategoryWeeklyTV     RatingCategory = "weekly-tv"
	CategoryWeeklyMovies RatingCategory = "weekly-movies"
)

// Trend is a display classification derived purely from rank position. It is a
// presentation heuristic, not a measurement against historical data.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendStable Trend = "stable"
	TrendDown   Trend = "down"
)

type RatingRecord struct {
	Rank          int            `json:"rank"`
	Category      RatingCategory `json:"category"`
	ItemID        string         `json:"item_id"`
	Title         string         `json:"title"`
	Score         float64        `json:"score"`
	AudienceShare float64        `json:"audience_share"`
	Trend         Trend          `json:"trend"`
}
