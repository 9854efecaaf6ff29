package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskBlobStore keeps one file per cache key under a root directory.
// Writes go through a temp file followed by a rename so a concurrent reader
// never observes a partial entry; the rename also gives the last-writer-wins
// semantics the key contract requires.
type DiskBlobStore struct {
	dir string
}

// NewDiskBlobStore creates a disk blob store rooted at dir, creating the
// directory if needed.
func NewDiskBlobStore(dir string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskBlobStore{dir: dir}, nil
}

func (s *DiskBlobStore) path(key string) string {
	return filepath.Join(s.dir, key+".tar.zst")
}

// Get returns the stored blob or ErrMiss when the entry file is absent.
func (s *DiskBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return blob, nil
}

// Put writes or overwrites the entry for key.
func (s *DiskBlobStore) Put(ctx context.Context, key string, blob []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	return nil
}

// Close is a no-op for the disk store.
func (s *DiskBlobStore) Close() error {
	return nil
}
