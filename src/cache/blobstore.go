package cache

import (
	"context"
	"errors"
	"sync"
)

// ErrMiss is returned by BlobStore.Get when no entry exists for the key.
// A miss is not a failure; the run proceeds with a full rebuild.
var ErrMiss = errors.New("cache miss")

// BlobStore is the two-operation cache entry store. Entries are opaque
// snapshots; the store never interprets them and never deletes them on its
// own (eviction, if any, is the store's policy, not the agent's).
type BlobStore interface {
	// Get returns the blob for an exact key match, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes or overwrites the entry for key. Last writer wins;
	// concurrent writers to the same key may race and that is accepted.
	Put(ctx context.Context, key string, blob []byte) error

	// Close releases store resources.
	Close() error
}

// MemoryBlobStore is a thread-safe in-memory BlobStore.
// Used for local mode and tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates a new in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get returns the stored blob or ErrMiss.
func (s *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrMiss
	}

	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

// Put overwrites the entry for key.
func (s *MemoryBlobStore) Put(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(blob))
	copy(cp, blob)
	s.blobs[key] = cp

	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryBlobStore) Close() error {
	return nil
}
