package watchmode

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"showdeck/pkg/errors"
)

// newTestClient wires a stub provider answering the search step and the
// per-title sources step separately.
func newTestClient(t *testing.T, searchPayload, sourcesPayload string) (*Client, *requestLog) {
	t.Helper()

	log := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.paths = append(log.paths, r.URL.Path)
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/"):
			log.searchField = r.URL.Query().Get("search_field")
			log.searchValue = r.URL.Query().Get("search_value")
			_, _ = w.Write([]byte(searchPayload))
		case strings.Contains(r.URL.Path, "/sources/"):
			log.regions = r.URL.Query().Get("regions")
			_, _ = w.Write([]byte(sourcesPayload))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return NewClient(server.Client(), Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Region:  "US",
	}, zap.NewNop()), log
}

type requestLog struct {
	paths       []string
	searchField string
	searchValue string
	regions     string
}

func TestSourcesEmptyIDShortCircuits(t *testing.T) {
	client, log := newTestClient(t, `{}`, `[]`)

	sources, err := client.Sources(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected no sources, got %v", sources)
	}
	if len(log.paths) != 0 {
		t.Fatalf("empty id must not hit the provider, got %v", log.paths)
	}
}

func TestSourcesResolvesThenFetches(t *testing.T) {
	client, log := newTestClient(t,
		`{"title_results": [{"id": 345}]}`,
		`[
			{"name": "StreamOne", "region": "US", "type": "sub", "web_url": "https://one.example/w"},
			{"name": "StreamTwo", "region": "US", "type": "sub"}
		]`,
	)

	sources, err := client.Sources(context.Background(), "tt0000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.searchField != "imdb_id" || log.searchValue != "tt0000001" {
		t.Fatalf("search step used %q=%q", log.searchField, log.searchValue)
	}
	if log.paths[1] != "/title/345/sources/" {
		t.Fatalf("sources path = %q", log.paths[1])
	}
	if log.regions != "US" {
		t.Fatalf("regions = %q", log.regions)
	}

	if len(sources) != 2 || sources[0].Name != "StreamOne" || sources[0].WebURL != "https://one.example/w" {
		t.Fatalf("sources mapped wrong: %+v", sources)
	}
}

func TestSourcesFiltersToSubscriptionType(t *testing.T) {
	client, _ := newTestClient(t,
		`{"title_results": [{"id": 345}]}`,
		`[
			{"name": "RentalPlace", "region": "US", "type": "rent"},
			{"name": "BuyPlace", "region": "US", "type": "buy"},
			{"name": "SubPlace", "region": "US", "type": "SUB"}
		]`,
	)

	sources, err := client.Sources(context.Background(), "tt0000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 1 || sources[0].Name != "SubPlace" {
		t.Fatalf("expected only the subscription source, got %+v", sources)
	}
}

func TestSourcesDeduplicatesByName(t *testing.T) {
	client, _ := newTestClient(t,
		`{"title_results": [{"id": 345}]}`,
		`[
			{"name": "StreamOne", "region": "US", "type": "sub"},
			{"name": "StreamOne", "region": "CA", "type": "sub"}
		]`,
	)

	sources, err := client.Sources(context.Background(), "tt0000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 1 || sources[0].Region != "US" {
		t.Fatalf("expected the first occurrence kept, got %+v", sources)
	}
}

func TestSourcesUnknownIdentifierYieldsEmptyList(t *testing.T) {
	client, log := newTestClient(t, `{"title_results": []}`, `[]`)

	sources, err := client.Sources(context.Background(), "tt9999999")
	if err != nil {
		t.Fatalf("unknown identifier must not be an error, got %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected no sources, got %v", sources)
	}
	if len(log.paths) != 1 {
		t.Fatalf("no sources fetch may follow a failed resolution, got %v", log.paths)
	}
}

func TestSourcesReturnsTypedErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	client := NewClient(server.Client(), Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

	_, err := client.Sources(context.Background(), "tt0000001")
	var apiErr *errors.APIError
	if !goerrors.As(err, &apiErr) {
		t.Fatalf("expected an API error, got %v", err)
	}
}
