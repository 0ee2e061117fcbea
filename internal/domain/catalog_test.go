package domain

import (
	"reflect"
	"testing"
)

func TestMergeReceptionPreservesIdentityFields(t *testing.T) {
	item := CatalogItem{
		ID:            "42",
		Name:          "Original",
		OriginalName:  "Orijinaru",
		EpisodesAired: 5,
		EpisodesTotal: 10,
		Kind:          KindSeries,
	}
	rec := &Reception{
		Awards:         "2 wins",
		Director:       "A Director",
		Writer:         "A Writer",
		CriticScore:    85,
		ExternalRating: 8.4,
		ExternalVotes:  12000,
	}

	merged := MergeReception(item, rec)

	if merged.ID != "42" || merged.Name != "Original" || merged.OriginalName != "Orijinaru" {
		t.Error("identity fields must not be overridden by enrichment")
	}
	if merged.EpisodesAired != 5 || merged.EpisodesTotal != 10 {
		t.Error("episode counts must not be overridden by enrichment")
	}
	if merged.Director != "A Director" || merged.CriticScore != 85 {
		t.Error("reception fields not merged")
	}
	if !merged.Enriched {
		t.Error("merged item must carry the enriched marker")
	}
}

func TestMergeReceptionNilLeavesItemUnchanged(t *testing.T) {
	item := CatalogItem{ID: "1", Name: "Thing", Score: 7}

	merged := MergeReception(item, nil)
	if !reflect.DeepEqual(merged, item) {
		t.Error("nil reception must return the item unchanged")
	}
}

func TestMergeReceptionIsIdempotent(t *testing.T) {
	item := CatalogItem{ID: "1", Name: "Thing"}
	rec := &Reception{Director: "D", ExternalRating: 9.1}

	once := MergeReception(item, rec)
	twice := MergeReception(once, rec)

	if !reflect.DeepEqual(once, twice) {
		t.Error("merging the same reception twice must be a fixed point")
	}
}

func TestMergeReceptionSkipsEmptyAttributes(t *testing.T) {
	item := CatalogItem{ID: "1", Director: "Existing"}

	merged := MergeReception(item, &Reception{Awards: "1 nomination"})
	if merged.Director != "Existing" {
		t.Error("empty reception attribute must not clear an existing field")
	}
	if merged.Awards != "1 nomination" {
		t.Error("non-empty reception attribute should merge")
	}
}

func TestHasInWatchlist(t *testing.T) {
	var nilProfile *UserProfile
	if nilProfile.HasInWatchlist("1") {
		t.Error("nil profile has no members")
	}

	p := &UserProfile{Watchlist: []string{"1", "7", "42"}}
	if !p.HasInWatchlist("42") {
		t.Error("expected membership for 42")
	}
	if p.HasInWatchlist("99") {
		t.Error("unexpected membership for 99")
	}
}
