// Package memory implements storage.Persister on an in-process cache.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/patrickmn/go-cache"

	"github.com/zhouzirui/kairn/backend/internal/storage"
)

// Persister keeps values for the lifetime of the process. Entries never expire.
type Persister struct {
	cache  *cache.Cache
	closed atomic.Bool
}

// New returns an empty in-memory persister.
func New() *Persister {
	return &Persister{cache: cache.New(cache.NoExpiration, 0)}
}

// Load returns a copy of the value stored under key.
func (p *Persister) Load(_ context.Context, key string) ([]byte, error) {
	if p.closed.Load() {
		return nil, storage.ErrClosed
	}
	x, found := p.cache.Get(key)
	if !found {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), x.([]byte)...), nil
}

// Save overwrites the value stored under key.
func (p *Persister) Save(_ context.Context, key string, value []byte) error {
	if p.closed.Load() {
		return storage.ErrClosed
	}
	p.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *Persister) Delete(_ context.Context, key string) error {
	if p.closed.Load() {
		return storage.ErrClosed
	}
	p.cache.Delete(key)
	return nil
}

// Close marks the persister unusable. Stored values are dropped.
func (p *Persister) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.cache.Flush()
	return nil
}

var _ storage.Persister = (*Persister)(nil)
