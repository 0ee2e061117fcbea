package watchlist

import (
	"context"
	goerrors "errors"
	"sync"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/internal/store"
	"showdeck/pkg/errors"
)

const watchlistField = "watchlist"

// ErrPending is returned when a toggle for the same (user, item) pair is
// already in flight. The remote mutation is idempotent set algebra either
// way; this just keeps a rapid double-tap from issuing a second round-trip.
var ErrPending = goerrors.New("watchlist mutation already pending")

// ProfileReader supplies the latest known profile snapshot.
type ProfileReader interface {
	Snapshot() *domain.UserProfile
}

// Service applies set-semantics add/remove mutations to the remote watchlist
// field. No optimistic state is committed locally; the authoritative
// post-mutation profile arrives through the sync layer's own channel.
type Service struct {
	store    store.DocumentStore
	profiles ProfileReader
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewService(docs store.DocumentStore, profiles ProfileReader, logger *zap.Logger) *Service {
	return &Service{
		store:    docs,
		profiles: profiles,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}
}

// Toggle adds itemID to the identity's watchlist when absent and removes it
// when present. Both directions go through atomic set-algebra writes, so
// repeating an add cannot duplicate an entry and removing an absent id is a
// no-op. Failures are surfaced; the caller decides how to signal them.
func (s *Service) Toggle(ctx context.Context, identity *domain.Identity, itemID string) error {
	if identity == nil || identity.UID == "" {
		return errors.NewValidationError("identity is required", "identity", nil)
	}
	if itemID == "" {
		return errors.NewValidationError("item id is required", "item_id", itemID)
	}

	key := identity.UID + "/" + itemID

	s.mu.Lock()
	if _, inFlight := s.pending[key]; inFlight {
		s.mu.Unlock()
		return ErrPending
	}
	s.pending[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}()

	// Membership comes from the last pushed profile; a not-yet-delivered
	// profile reads as an empty set.
	member := s.profiles.Snapshot().HasInWatchlist(itemID)

	var err error
	if member {
		err = s.store.RemoveFromSet(ctx, store.CollectionProfiles, identity.UID, watchlistField, itemID)
	} else {
		err = s.store.AddToSet(ctx, store.CollectionProfiles, identity.UID, watchlistField, itemID)
	}
	if err != nil {
		s.logger.Error("Watchlist mutation failed",
			zap.String("uid", identity.UID),
			zap.String("item_id", itemID),
			zap.Bool("removing", member),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("Watchlist mutation issued",
		zap.String("uid", identity.UID),
		zap.String("item_id", itemID),
		zap.Bool("removed", member),
	)

	return nil
}
