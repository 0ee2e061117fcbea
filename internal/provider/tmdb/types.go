package tmdb

// Raw wire shapes for the primary catalog provider. Pointers mark fields the
// provider is known to omit; mapping supplies fallbacks for all of them.

type rawGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type rawNetwork struct {
	Name string `json:"name"`
}

type rawSeason struct {
	SeasonNumber int     `json:"season_number"`
	Name         string  `json:"name"`
	EpisodeCount int     `json:"episode_count"`
	AirDate      *string `json:"air_date,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
}

type rawReview struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

type rawCast struct {
	Name        string  `json:"name"`
	Character   string  `json:"character,omitempty"`
	ProfilePath *string `json:"profile_path,omitempty"`
}

type rawVideo struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

type rawTitle struct {
	ID               int      `json:"id"`
	Name             *string  `json:"name,omitempty"`
	Title            *string  `json:"title,omitempty"`
	OriginalName     *string  `json:"original_name,omitempty"`
	OriginalTitle    *string  `json:"original_title,omitempty"`
	Overview         *string  `json:"overview,omitempty"`
	Status           *string  `json:"status,omitempty"`
	InProduction     *bool    `json:"in_production,omitempty"`
	PosterPath       *string  `json:"poster_path,omitempty"`
	BackdropPath     *string  `json:"backdrop_path,omitempty"`
	VoteAverage      *float64 `json:"vote_average,omitempty"`
	NumberOfEpisodes *int     `json:"number_of_episodes,omitempty"`
	LastEpisodeToAir *struct {
		EpisodeNumber int `json:"episode_number"`
	} `json:"last_episode_to_air,omitempty"`
	EpisodeRunTime []int        `json:"episode_run_time,omitempty"`
	Runtime        *int         `json:"runtime,omitempty"`
	Genres         []rawGenre   `json:"genres,omitempty"`
	Networks       []rawNetwork `json:"networks,omitempty"`
	Seasons        []rawSeason  `json:"seasons,omitempty"`
	Videos         *struct {
		Results []rawVideo `json:"results"`
	} `json:"videos,omitempty"`
	Reviews *struct {
		Results []rawReview `json:"results"`
	} `json:"reviews,omitempty"`
	Credits *struct {
		Cast []rawCast `json:"cast"`
	} `json:"credits,omitempty"`
	ExternalIDs *rawExternalIDs `json:"external_ids,omitempty"`
}

type rawExternalIDs struct {
	IMDBID *string `json:"imdb_id,omitempty"`
}

type rawDiscoverResponse struct {
	Page         int        `json:"page"`
	Results      []rawTitle `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type rawEpisode struct {
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       *string `json:"air_date,omitempty"`
	StillPath     *string `json:"still_path,omitempty"`
}

type rawSeasonDetail struct {
	SeasonNumber int          `json:"season_number"`
	Episodes     []rawEpisode `json:"episodes"`
}
