package tmdb

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/pkg/errors"
)

// newTestClient spins up a stub provider returning the given payload and a
// client pointed at it. The last request is captured for assertions.
func newTestClient(t *testing.T, status int, payload string) (*Client, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.query = r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.Client(), Config{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		ImageURL: "https://img.example",
		Language: "en-US",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client, captured
}

type capturedRequest struct {
	path  string
	query url.Values
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(nil, Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a missing API key")
	}
}

func TestDiscoverMapsResultsWithFallbacks(t *testing.T) {
	payload := `{
		"page": 1,
		"results": [
			{
				"id": 100,
				"name": "Full Record",
				"original_name": "Furu Rekodo",
				"overview": "A well-formed record.",
				"in_production": true,
				"poster_path": "/poster.jpg",
				"vote_average": 8.2
			},
			{"id": 101}
		]
	}`
	client, _ := newTestClient(t, http.StatusOK, payload)

	items, err := client.Discover(context.Background(), Query{Kind: domain.KindSeries})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	full := items[0]
	if full.ID != "100" || full.Name != "Full Record" || full.Status != domain.StatusAiring {
		t.Fatalf("full record mapped wrong: %+v", full)
	}
	if full.PosterURL != "https://img.example/poster.jpg" {
		t.Fatalf("poster URL = %q", full.PosterURL)
	}

	// A near-empty record still maps totally, via fallbacks.
	sparse := items[1]
	if sparse.ID != "101" {
		t.Fatalf("sparse id = %q", sparse.ID)
	}
	if sparse.Name != domain.FallbackTitle || sparse.Synopsis != domain.FallbackSynopsis {
		t.Fatalf("sparse record missing text fallbacks: %+v", sparse)
	}
	if sparse.PosterURL != domain.FallbackPoster {
		t.Fatalf("sparse poster = %q", sparse.PosterURL)
	}
	if sparse.Status != domain.StatusEnded {
		t.Fatalf("sparse status = %q", sparse.Status)
	}
}

func TestDiscoverUsesSearchEndpointForSearchQueries(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{"results": []}`)

	if _, err := client.Discover(context.Background(), Query{Kind: domain.KindSeries, Search: "breaking"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.path != "/search/tv" {
		t.Fatalf("path = %q, want /search/tv", captured.path)
	}
	if got := captured.query.Get("query"); got != "breaking" {
		t.Fatalf("query param = %q", got)
	}
	if captured.query.Get("api_key") != "test-key" {
		t.Fatal("api key not attached")
	}
}

func TestDiscoverMissingResultsYieldsEmptyList(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"page": 1}`)

	items, err := client.Discover(context.Background(), Query{Kind: domain.KindSeries})
	if err != nil {
		t.Fatalf("missing results must not be an error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %v", items)
	}
}

func TestDiscoverMalformedPayloadYieldsEmptyList(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{broken`)

	items, err := client.Discover(context.Background(), Query{Kind: domain.KindSeries})
	if err != nil {
		t.Fatalf("malformed payload must not be an error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %v", items)
	}
}

func TestDiscoverReturnsTypedErrorOnServerFailure(t *testing.T) {
	client, _ := newTestClient(t, http.StatusInternalServerError, `{}`)

	_, err := client.Discover(context.Background(), Query{Kind: domain.KindSeries})
	var apiErr *errors.APIError
	if !goerrors.As(err, &apiErr) {
		t.Fatalf("expected an API error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
}

func TestGetDetailMapsAppendedData(t *testing.T) {
	payload := `{
		"id": 100,
		"name": "Detailed",
		"number_of_episodes": 10,
		"last_episode_to_air": {"episode_number": 12},
		"credits": {"cast": [{"name": "Actor One", "character": "Lead", "profile_path": "/a1.jpg"}]},
		"videos": {"results": [
			{"site": "Vimeo", "type": "Trailer", "key": "nope"},
			{"site": "YouTube", "type": "Clip", "key": "nope"},
			{"site": "YouTube", "type": "Trailer", "key": "abc123"}
		]},
		"reviews": {"results": [{"author": "Critic", "content": "Great.", "url": "https://r.example/1"}]},
		"external_ids": {"imdb_id": "tt0100100"}
	}`
	client, captured := newTestClient(t, http.StatusOK, payload)

	item, err := client.GetDetail(context.Background(), "100", domain.KindSeries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.path != "/tv/100" {
		t.Fatalf("path = %q", captured.path)
	}
	if got := captured.query.Get("append_to_response"); got != "credits,videos,reviews,external_ids" {
		t.Fatalf("append_to_response = %q", got)
	}

	if item.ExternalID != "tt0100100" {
		t.Fatalf("external id = %q", item.ExternalID)
	}
	if item.TrailerURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("trailer = %q, only YouTube trailers qualify", item.TrailerURL)
	}
	if len(item.Cast) != 1 || item.Cast[0].PhotoURL != "https://img.example/a1.jpg" {
		t.Fatalf("cast mapped wrong: %+v", item.Cast)
	}
	if len(item.Reviews) != 1 || item.Reviews[0].Author != "Critic" {
		t.Fatalf("reviews mapped wrong: %+v", item.Reviews)
	}

	// Aired count clamps to the known total.
	if item.EpisodesAired != 10 || item.EpisodesTotal != 10 {
		t.Fatalf("episode counts = %d/%d, want clamped to 10/10", item.EpisodesAired, item.EpisodesTotal)
	}
}

func TestResolveExternalIDAbsentIsNotAnError(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{}`)

	id, err := client.ResolveExternalID(context.Background(), "100", domain.KindSeries)
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if captured.path != "/tv/100/external_ids" {
		t.Fatalf("path = %q", captured.path)
	}
}

func TestTrendingRequestsWindowedPath(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{"results": [{"id": 1, "name": "Hot"}]}`)

	items, err := client.Trending(context.Background(), "week", domain.KindMovie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.path != "/trending/movie/week" {
		t.Fatalf("path = %q", captured.path)
	}
	if len(items) != 1 || items[0].Kind != domain.KindMovie {
		t.Fatalf("items mapped wrong: %+v", items)
	}
}

func TestGetSeasonEpisodesMapsList(t *testing.T) {
	payload := `{
		"season_number": 2,
		"episodes": [
			{"episode_number": 1, "name": "Opener", "overview": "It begins.", "air_date": "2024-01-01", "still_path": "/s1.jpg"},
			{"episode_number": 2, "name": "Second"}
		]
	}`
	client, captured := newTestClient(t, http.StatusOK, payload)

	episodes, err := client.GetSeasonEpisodes(context.Background(), "100", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.path != "/tv/100/season/2" {
		t.Fatalf("path = %q", captured.path)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if episodes[0].AirDate != "2024-01-01" || episodes[0].StillURL != "https://img.example/s1.jpg" {
		t.Fatalf("first episode mapped wrong: %+v", episodes[0])
	}
	if episodes[1].AirDate != "" {
		t.Fatalf("missing air date should stay empty, got %q", episodes[1].AirDate)
	}
}
