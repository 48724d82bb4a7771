// Package kv is the durable key-value substrate: every entity collection is
// persisted wholesale as one JSON document under a named key.
package kv

import (
	"context"

	"github.com/kat-co/vala"

	"github.com/owais185-web/LuminaLMSPush/core"
)

// Backend persists raw collection documents.
type Backend interface {
	// Get returns found=false when the key has never been written.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// Store is built once at process start and shared by all repositories.
type Store struct {
	backend Backend
	logger  core.Logger
}

func NewStore(backend Backend, logger core.Logger) *Store {
	vala.BeginValidation().Validate(
		vala.IsNotNil(backend, "backend"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Store{backend: backend, logger: logger}
}

// Collection is a typed view over one key of the Store.
type Collection[T any] struct {
	store *Store
	key   string
	seed  []T
}

func NewCollection[T any](store *Store, key string, seed []T) *Collection[T] {
	vala.BeginValidation().Validate(
		vala.IsNotNil(store, "store"),
		vala.StringNotEmpty(key, "key"),
	).CheckAndPanic()
	return &Collection[T]{store: store, key: key, seed: seed}
}

func (c *Collection[T]) Key() string { return c.key }

// Load returns the stored collection. On first use the seed is persisted and returned.
// Any failure is logged and the seed is returned without being persisted.
func (c *Collection[T]) Load(ctx context.Context) []T {
	data, found, err := c.store.backend.Get(ctx, c.key)
	if err != nil {
		c.store.logger.Error("kv: loading "+c.key, err)
		return c.seedCopy()
	}
	if !found {
		items := c.seedCopy()
		c.Save(ctx, items)
		return items
	}

	var items []T
	if err := Decode(data, &items); err != nil {
		c.store.logger.Error("kv: decoding "+c.key, err)
		return c.seedCopy()
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items
}

// Save replaces the stored collection. Failures are logged and swallowed.
func (c *Collection[T]) Save(ctx context.Context, items []T) {
	if items == nil {
		items = make([]T, 0)
	}
	data, err := Encode(items)
	if err != nil {
		c.store.logger.Error("kv: encoding "+c.key, err)
		return
	}
	if err := c.store.backend.Put(ctx, c.key, data); err != nil {
		c.store.logger.Error("kv: saving "+c.key, err)
	}
}

// seedCopy never hands out the seed slice itself, so callers may modify the result freely.
func (c *Collection[T]) seedCopy() []T {
	items := make([]T, 0, len(c.seed))
	data, err := Encode(c.seed)
	if err == nil {
		err = Decode(data, &items)
	}
	if err != nil {
		c.store.logger.Warn("kv: copying seed for "+c.key, err)
		items = append(items[:0], c.seed...)
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items
}
