package core

import "context"

type (
	// RemoteMirror is a remote document store holding one document per entity,
	// keyed by id, under a collection named after the entity type.
	RemoteMirror interface {
		Put(ctx context.Context, collection, id string, doc map[string]interface{}) error
		Delete(ctx context.Context, collection, id string) error
	}

	// Outbox replicates local writes to a RemoteMirror on a best-effort basis.
	// Calls never block on the remote and never fail.
	Outbox interface {
		Put(collection, id string, entity interface{})
		Delete(collection, id string)
	}
)

// IdentityEvent is emitted by an external identity provider when a user signs in.
type IdentityEvent struct {
	Email       string
	DisplayName string
	PhotoURL    string
	ExternalID  string
}
