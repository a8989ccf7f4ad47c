// Package storage defines the key/value persistence used to keep identity state across restarts.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when the key has never been written.
	ErrNotFound = errors.New("storage: key not found")
	// ErrClosed is returned once the persister has been closed.
	ErrClosed = errors.New("storage: persister closed")
)

// Persister stores opaque values under string keys.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
