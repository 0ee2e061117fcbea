package sync

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/internal/store"
)

// ProfileSync mirrors the remote profile document of the current identity.
// The subscription is tied 1:1 to identity lifecycle: established when an
// identity becomes available, torn down when it is cleared or replaced, never
// doubled. Every pushed update replaces the whole local profile value.
type ProfileSync struct {
	store  store.DocumentStore
	logger *zap.Logger

	mu      sync.Mutex
	uid     string
	cancel  func()
	current *domain.UserProfile
}

func NewProfileSync(docs store.DocumentStore, logger *zap.Logger) *ProfileSync {
	return &ProfileSync{
		store:  docs,
		logger: logger,
	}
}

// SetIdentity switches the sync to a new identity. A nil identity clears the
// snapshot and stops the subscription. The previous subscription, if any, is
// always torn down before a new one is attached.
func (p *ProfileSync) SetIdentity(ctx context.Context, identity *domain.Identity, onUpdate func(*domain.UserProfile)) error {
	p.mu.Lock()
	previous := p.cancel
	p.cancel = nil
	p.current = nil
	p.uid = ""
	p.mu.Unlock()

	if previous != nil {
		previous()
	}

	if identity == nil {
		p.logger.Debug("Identity cleared, profile sync stopped")
		return nil
	}

	cancel, err := p.store.Subscribe(ctx, store.CollectionProfiles, identity.UID, func(doc json.RawMessage) {
		var profile domain.UserProfile
		if err := json.Unmarshal(doc, &profile); err != nil {
			p.logger.Error("Pushed profile unreadable, keeping last value",
				zap.String("uid", identity.UID),
				zap.Error(err),
			)
			return
		}

		p.mu.Lock()
		p.current = &profile
		p.mu.Unlock()

		if onUpdate != nil {
			onUpdate(&profile)
		}
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cancel = cancel
	p.uid = identity.UID
	p.mu.Unlock()

	if err := p.createIfAbsent(ctx, identity); err != nil {
		p.logger.Warn("Failed to create initial profile", zap.String("uid", identity.UID), zap.Error(err))
	}

	return nil
}

// createIfAbsent writes the first-sign-in profile document. The write flows
// back through the subscription, so no snapshot is set here directly.
func (p *ProfileSync) createIfAbsent(ctx context.Context, identity *domain.Identity) error {
	_, exists, err := p.store.Get(ctx, store.CollectionProfiles, identity.UID)
	if err != nil || exists {
		return err
	}

	displayName := identity.Email
	if at := strings.Index(displayName, "@"); at > 0 {
		displayName = displayName[:at]
	}
	if displayName == "" {
		displayName = identity.UID
	}

	p.logger.Info("Creating profile for first sign-in", zap.String("uid", identity.UID))
	return p.store.SetMerge(ctx, store.CollectionProfiles, identity.UID, map[string]any{
		"uid":          identity.UID,
		"display_name": displayName,
		"watchlist":    []string{},
	})
}

// Snapshot returns the latest known profile, or nil when no identity is
// active or no document has been delivered yet.
func (p *ProfileSync) Snapshot() *domain.UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	copied := *p.current
	copied.Watchlist = append([]string(nil), p.current.Watchlist...)
	return &copied
}

// Stop clears identity and subscription.
func (p *ProfileSync) Stop() {
	_ = p.SetIdentity(context.Background(), nil, nil)
}
