// Package storage provides the durable key-value backends the session store
// persists through. Values are opaque byte blobs keyed by short string keys.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Backend is a string-keyed blob store. Implementations must return
// ErrNotFound from Load for absent keys and treat Delete of an absent key
// as a no-op.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
