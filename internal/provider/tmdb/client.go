package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/pkg/errors"
)

const providerName = "tmdb"

// Query describes one discovery request: filter and sort criteria without
// per-item detail.
type Query struct {
	Kind    domain.MediaKind
	Genre   int
	Network int
	SortBy  string
	Page    int
	Search  string
}

// CacheKey is a stable identity for the query, used by callers to tell one
// in-flight discovery apart from another.
func (q Query) CacheKey() string {
	return fmt.Sprintf("%s:g%d:n%d:%s:p%d:%s", q.Kind, q.Genre, q.Network, q.SortBy, q.Page, q.Search)
}

type Config struct {
	APIKey   string
	BaseURL  string
	ImageURL string
	Language string
}

// Client is a stateless wrapper around the primary catalog provider. Calls are
// independent; no retries are performed here, callers decide whether absence
// is terminal or tolerable.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb API key is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.cfg.APIKey)
	if c.cfg.Language != "" {
		params.Set("language", c.cfg.Language)
	}

	reqURL := c.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("TMDB request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.NewAPIError("request failed", providerName, 502, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.NewAPIError("failed to read response body", providerName, 502, nil).WithCause(err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("TMDB non-success response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewAPIError(fmt.Sprintf("provider returned %d", resp.StatusCode), providerName, resp.StatusCode, map[string]any{
			"path": path,
		})
	}

	return body, nil
}

// Discover runs a discovery query and maps the results. A malformed payload
// (missing results field) yields an empty list, not an error; transport and
// non-success failures are returned typed so callers can choose a fallback.
func (c *Client) Discover(ctx context.Context, q Query) ([]domain.CatalogItem, error) {
	params := url.Values{}
	if q.Genre > 0 {
		params.Set("with_genres", strconv.Itoa(q.Genre))
	}
	if q.Network > 0 {
		params.Set("with_networks", strconv.Itoa(q.Network))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	kind := q.Kind
	if kind == "" {
		kind = domain.KindSeries
	}

	path := "/discover/" + string(kind)
	if q.Search != "" {
		path = "/search/" + string(kind)
		params.Set("query", q.Search)
	}

	body, err := c.doRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var raw rawDiscoverResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("TMDB discovery payload malformed", zap.String("path", path), zap.Error(err))
		return []domain.CatalogItem{}, nil
	}
	if raw.Results == nil {
		c.logger.Warn("TMDB discovery payload missing results", zap.String("path", path))
		return []domain.CatalogItem{}, nil
	}

	items := make([]domain.CatalogItem, len(raw.Results))
	for i, r := range raw.Results {
		items[i] = c.mapTitle(&r, kind)
	}

	return items, nil
}

// GetDetail fetches the full record for one title, with cast, seasons,
// reviews, trailer and cross-reference identifier appended.
func (c *Client) GetDetail(ctx context.Context, id string, kind domain.MediaKind) (*domain.CatalogItem, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos,reviews,external_ids")

	body, err := c.doRequest(ctx, "/"+string(kind)+"/"+id, params)
	if err != nil {
		return nil, err
	}

	var raw rawTitle
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("TMDB detail payload malformed", zap.String("id", id), zap.Error(err))
		return nil, nil
	}

	item := c.mapTitle(&raw, kind)

	if raw.Credits != nil {
		item.Cast = make([]domain.CastMember, 0, len(raw.Credits.Cast))
		for _, m := range raw.Credits.Cast {
			item.Cast = append(item.Cast, domain.CastMember{
				Name:      m.Name,
				Character: m.Character,
				PhotoURL:  c.imageURL(m.ProfilePath),
			})
		}
	}
	if raw.Reviews != nil {
		item.Reviews = make([]domain.Review, 0, len(raw.Reviews.Results))
		for _, r := range raw.Reviews.Results {
			item.Reviews = append(item.Reviews, domain.Review(r))
		}
	}
	if raw.Videos != nil {
		for _, v := range raw.Videos.Results {
			if v.Site == "YouTube" && v.Type == "Trailer" {
				item.TrailerURL = "https://www.youtube.com/watch?v=" + v.Key
				break
			}
		}
	}
	if raw.ExternalIDs != nil && raw.ExternalIDs.IMDBID != nil {
		item.ExternalID = *raw.ExternalIDs.IMDBID
	}

	return &item, nil
}

// ResolveExternalID resolves the cross-reference identifier for a title.
// An absent identifier is returned as an empty string with a nil error.
func (c *Client) ResolveExternalID(ctx context.Context, id string, kind domain.MediaKind) (string, error) {
	body, err := c.doRequest(ctx, "/"+string(kind)+"/"+id+"/external_ids", nil)
	if err != nil {
		return "", err
	}

	var raw rawExternalIDs
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("TMDB external ids payload malformed", zap.String("id", id), zap.Error(err))
		return "", nil
	}
	if raw.IMDBID == nil {
		return "", nil
	}

	return *raw.IMDBID, nil
}

// GetSeasonEpisodes fetches the episode list of one season.
func (c *Client) GetSeasonEpisodes(ctx context.Context, id string, season int) ([]domain.Episode, error) {
	body, err := c.doRequest(ctx, "/tv/"+id+"/season/"+strconv.Itoa(season), nil)
	if err != nil {
		return nil, err
	}

	var raw rawSeasonDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("TMDB season payload malformed", zap.String("id", id), zap.Int("season", season), zap.Error(err))
		return []domain.Episode{}, nil
	}

	episodes := make([]domain.Episode, len(raw.Episodes))
	for i, e := range raw.Episodes {
		episodes[i] = domain.Episode{
			Number:   e.EpisodeNumber,
			Name:     e.Name,
			Synopsis: e.Overview,
			StillURL: c.imageURL(e.StillPath),
		}
		if e.AirDate != nil {
			episodes[i].AirDate = *e.AirDate
		}
	}

	return episodes, nil
}

// Trending fetches the trending list for a window ("day" or "week").
func (c *Client) Trending(ctx context.Context, window string, kind domain.MediaKind) ([]domain.CatalogItem, error) {
	body, err := c.doRequest(ctx, "/trending/"+string(kind)+"/"+window, nil)
	if err != nil {
		return nil, err
	}

	var raw rawDiscoverResponse
	if err := json.Unmarshal(body, &raw); err != nil || raw.Results == nil {
		c.logger.Warn("TMDB trending payload malformed", zap.String("window", window))
		return []domain.CatalogItem{}, nil
	}

	items := make([]domain.CatalogItem, len(raw.Results))
	for i, r := range raw.Results {
		items[i] = c.mapTitle(&r, kind)
	}

	return items, nil
}

// mapTitle converts a raw provider record into a CatalogItem. The mapping is
// pure and total: every required field has a defined fallback.
func (c *Client) mapTitle(raw *rawTitle, kind domain.MediaKind) domain.CatalogItem {
	item := domain.CatalogItem{
		ID:       strconv.Itoa(raw.ID),
		Name:     domain.FallbackTitle,
		Synopsis: domain.FallbackSynopsis,
		Status:   domain.StatusEnded,
		Kind:     kind,
	}

	switch {
	case raw.Name != nil && *raw.Name != "":
		item.Name = *raw.Name
	case raw.Title != nil && *raw.Title != "":
		item.Name = *raw.Title
	}
	switch {
	case raw.OriginalName != nil:
		item.OriginalName = *raw.OriginalName
	case raw.OriginalTitle != nil:
		item.OriginalName = *raw.OriginalTitle
	}
	if raw.Overview != nil && *raw.Overview != "" {
		item.Synopsis = *raw.Overview
	}
	if raw.InProduction != nil && *raw.InProduction {
		item.Status = domain.StatusAiring
	} else if raw.Status != nil && (*raw.Status == "Returning Series" || *raw.Status == "In Production") {
		item.Status = domain.StatusAiring
	}

	item.PosterURL = c.imageURL(raw.PosterPath)
	if item.PosterURL == "" {
		item.PosterURL = domain.FallbackPoster
	}
	item.BackdropURL = c.imageURL(raw.BackdropPath)

	if raw.VoteAverage != nil {
		item.Score = *raw.VoteAverage
	}
	if raw.NumberOfEpisodes != nil {
		item.EpisodesTotal = *raw.NumberOfEpisodes
	}
	if raw.LastEpisodeToAir != nil {
		item.EpisodesAired = raw.LastEpisodeToAir.EpisodeNumber
	}
	// episodes_aired <= episodes_total whenever both are known
	if item.EpisodesTotal > 0 && item.EpisodesAired > item.EpisodesTotal {
		item.EpisodesAired = item.EpisodesTotal
	}

	if len(raw.EpisodeRunTime) > 0 {
		item.Runtime = raw.EpisodeRunTime[0]
	} else if raw.Runtime != nil {
		item.Runtime = *raw.Runtime
	}

	if len(raw.Genres) > 0 {
		item.Genres = make([]string, 0, len(raw.Genres))
		for _, g := range raw.Genres {
			item.Genres = append(item.Genres, g.Name)
		}
	}
	if len(raw.Networks) > 0 {
		item.Network = raw.Networks[0].Name
	}
	if len(raw.Seasons) > 0 {
		item.Seasons = make([]domain.Season, 0, len(raw.Seasons))
		for _, s := range raw.Seasons {
			season := domain.Season{
				Number:       s.SeasonNumber,
				Name:         s.Name,
				EpisodeCount: s.EpisodeCount,
				PosterURL:    c.imageURL(s.PosterPath),
			}
			if s.AirDate != nil {
				season.AirDate = *s.AirDate
			}
			item.Seasons = append(item.Seasons, season)
		}
	}

	return item
}

func (c *Client) imageURL(path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return c.cfg.ImageURL + *path
}
