package sync

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/internal/store"
)

func TestSetIdentityCreatesProfileOnFirstSignIn(t *testing.T) {
	docs := newFakeDocs()
	ps := NewProfileSync(docs, zap.NewNop())
	defer ps.Stop()

	var pushed []*domain.UserProfile
	identity := &domain.Identity{UID: "uid-1", Email: "ana@example.com"}
	if err := ps.SetIdentity(context.Background(), identity, func(p *domain.UserProfile) {
		pushed = append(pushed, p)
	}); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}

	if docs.mergeCount() != 1 {
		t.Fatalf("expected one profile creation write, got %d", docs.mergeCount())
	}

	// The creation write flows back through the subscription; no snapshot is
	// set out of band.
	if len(pushed) != 1 {
		t.Fatalf("expected the created profile delivered once, got %d deliveries", len(pushed))
	}
	snap := ps.Snapshot()
	if snap == nil || snap.UID != "uid-1" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.DisplayName != "ana" {
		t.Fatalf("display name should derive from the email local part, got %q", snap.DisplayName)
	}
	if len(snap.Watchlist) != 0 {
		t.Fatalf("fresh profile must start with an empty watchlist, got %v", snap.Watchlist)
	}
}

func TestSetIdentityKeepsExistingProfile(t *testing.T) {
	docs := newFakeDocs()
	existing, _ := json.Marshal(domain.UserProfile{
		UID:         "uid-1",
		DisplayName: "Returning User",
		Watchlist:   []string{"42"},
	})
	docs.push(store.CollectionProfiles, "uid-1", existing)

	ps := NewProfileSync(docs, zap.NewNop())
	defer ps.Stop()

	if err := ps.SetIdentity(context.Background(), &domain.Identity{UID: "uid-1"}, nil); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}

	if docs.mergeCount() != 0 {
		t.Fatalf("existing profile must not be rewritten, got %d writes", docs.mergeCount())
	}
	snap := ps.Snapshot()
	if snap == nil || snap.DisplayName != "Returning User" {
		t.Fatalf("expected the stored profile delivered on subscribe, got %+v", snap)
	}
}

func TestSwitchingIdentityTearsDownPreviousSubscription(t *testing.T) {
	docs := newFakeDocs()
	ps := NewProfileSync(docs, zap.NewNop())
	defer ps.Stop()

	if err := ps.SetIdentity(context.Background(), &domain.Identity{UID: "uid-1"}, nil); err != nil {
		t.Fatalf("first identity failed: %v", err)
	}
	if err := ps.SetIdentity(context.Background(), &domain.Identity{UID: "uid-2"}, nil); err != nil {
		t.Fatalf("second identity failed: %v", err)
	}

	if got := docs.cancelCount(store.CollectionProfiles, "uid-1"); got != 1 {
		t.Fatalf("previous subscription must be cancelled exactly once, got %d", got)
	}
	if got := docs.cancelCount(store.CollectionProfiles, "uid-2"); got != 0 {
		t.Fatalf("active subscription must stay attached, got %d cancellations", got)
	}

	snap := ps.Snapshot()
	if snap == nil || snap.UID != "uid-2" {
		t.Fatalf("snapshot must follow the active identity, got %+v", snap)
	}
}

func TestNilIdentityClearsSnapshotAndSubscription(t *testing.T) {
	docs := newFakeDocs()
	ps := NewProfileSync(docs, zap.NewNop())

	if err := ps.SetIdentity(context.Background(), &domain.Identity{UID: "uid-1"}, nil); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}
	if ps.Snapshot() == nil {
		t.Fatal("expected a snapshot while signed in")
	}

	if err := ps.SetIdentity(context.Background(), nil, nil); err != nil {
		t.Fatalf("clearing identity failed: %v", err)
	}

	if ps.Snapshot() != nil {
		t.Fatal("snapshot must be cleared on sign-out")
	}
	if got := docs.cancelCount(store.CollectionProfiles, "uid-1"); got != 1 {
		t.Fatalf("subscription must be cancelled on sign-out, got %d", got)
	}
}

func TestSnapshotReturnsIndependentCopy(t *testing.T) {
	docs := newFakeDocs()
	raw, _ := json.Marshal(domain.UserProfile{UID: "uid-1", Watchlist: []string{"1", "2"}})
	docs.push(store.CollectionProfiles, "uid-1", raw)

	ps := NewProfileSync(docs, zap.NewNop())
	defer ps.Stop()

	if err := ps.SetIdentity(context.Background(), &domain.Identity{UID: "uid-1"}, nil); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}

	first := ps.Snapshot()
	first.Watchlist[0] = "mutated"
	first.DisplayName = "mutated"

	second := ps.Snapshot()
	if second.Watchlist[0] != "1" || second.DisplayName == "mutated" {
		t.Fatalf("snapshot mutation leaked into shared state: %+v", second)
	}
}
