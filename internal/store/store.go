package store

import (
	"context"
	"encoding/json"
)

// Collections used by this deployment.
const (
	CollectionConfig   = "config"
	CollectionProfiles = "profiles"
)

// ConfigDocID is the single site-configuration document.
const ConfigDocID = "site"

// DocumentStore is the remote, push-capable document store. Point writes have
// merge semantics: only the given fields are written, others are left
// untouched. AddToSet and RemoveFromSet are atomic set-algebra mutations on a
// list-valued field: adding a present member and removing an absent one are
// both no-ops.
//
// Subscribe delivers the full current document once immediately (when it
// exists) and then on every change, in the order the store emits them. The
// returned cancel tears the subscription down; it is idempotent, and exactly
// one live subscription exists per call.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error)
	SetMerge(ctx context.Context, collection, id string, fields map[string]any) error
	AddToSet(ctx context.Context, collection, id, field, member string) error
	RemoveFromSet(ctx context.Context, collection, id, field, member string) error
	Subscribe(ctx context.Context, collection, id string, onUpdate func(json.RawMessage)) (func(), error)
}
