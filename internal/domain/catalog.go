package domain

// MediaKind distinguishes the two title shapes the providers serve.
type MediaKind string

const (
	KindSeries MediaKind = "tv"
	KindMovie  MediaKind = "movie"
)

// LifecycleStatus is the airing state of a title.
type LifecycleStatus string

const (
	StatusAiring LifecycleStatus = "Airing"
	StatusEnded  LifecycleStatus = "Ended"
)

// Fallbacks applied when a provider record is missing required fields, so a
// malformed upstream record still yields a renderable item.
const (
	FallbackTitle    = "Untitled"
	FallbackSynopsis = "No synopsis available"
	FallbackPoster   = "https://placehold.co/500x750?text=No+Image"
)

type Season struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
	PosterURL    string `json:"poster_url,omitempty"`
}

type Episode struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Synopsis string `json:"synopsis,omitempty"`
	AirDate  string `json:"air_date,omitempty"`
	StillURL string `json:"still_url,omitempty"`
}

type Review struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// CatalogItem is one title in the catalog. Values are replaced wholesale on
// every update; the only mutation an item ever sees after mapping is the single
// enrichment merge performed through MergeReception.
type CatalogItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	OriginalName  string          `json:"original_name,omitempty"`
	Synopsis      string          `json:"synopsis"`
	Status        LifecycleStatus `json:"status"`
	Network       string          `json:"network,omitempty"`
	PosterURL     string          `json:"poster_url"`
	BackdropURL   string          `json:"backdrop_url,omitempty"`
	Score         float64         `json:"score"`
	EpisodesAired int             `json:"episodes_aired"`
	EpisodesTotal int             `json:"episodes_total"`
	Kind          MediaKind       `json:"kind"`

	// Extended attributes, absent until detail lookup or enrichment succeeds.
	Genres     []string          `json:"genres,omitempty"`
	Runtime    int               `json:"runtime,omitempty"`
	TrailerURL string            `json:"trailer_url,omitempty"`
	Seasons    []Season          `json:"seasons,omitempty"`
	Reviews    []Review          `json:"reviews,omitempty"`
	Cast       []CastMember      `json:"cast,omitempty"`
	ExternalID string            `json:"external_id,omitempty"`
	Sources    []StreamingSource `json:"sources,omitempty"`

	// Critical-reception attributes from the secondary provider.
	Awards         string  `json:"awards,omitempty"`
	Director       string  `json:"director,omitempty"`
	Writer         string  `json:"writer,omitempty"`
	CriticScore    int     `json:"critic_score,omitempty"`
	ExternalRating float64 `json:"external_rating,omitempty"`
	ExternalVotes  int     `json:"external_votes,omitempty"`
	Enriched       bool    `json:"enriched,omitempty"`
}

// Reception holds the secondary-provider critical-reception attributes for one
// cross-reference identifier. It is an ephemeral value; it is never persisted.
type Reception struct {
	Awards         string
	Director       string
	Writer         string
	CriticScore    int
	ExternalRating float64
	ExternalVotes  int
}

// MergeReception returns item shallow-merged with the reception attributes.
// Core identity fields (id, names, episode counts, kind) always win; a nil
// reception returns the item unchanged. The merge is idempotent: applying the
// same reception twice yields the same value.
func MergeReception(item CatalogItem, rec *Reception) CatalogItem {
	if rec == nil {
		return item
	}

	merged := item
	if rec.Awards != "" {
		merged.Awards = rec.Awards
	}
	if rec.Director != "" {
		merged.Director = rec.Director
	}
	if rec.Writer != "" {
		merged.Writer = rec.Writer
	}
	if rec.CriticScore > 0 {
		merged.CriticScore = rec.CriticScore
	}
	if rec.ExternalRating > 0 {
		merged.ExternalRating = rec.ExternalRating
	}
	if rec.ExternalVotes > 0 {
		merged.ExternalVotes = rec.ExternalVotes
	}
	merged.Enriched = true

	return merged
}
