package cache

import (
	"context"
	"errors"
	"fmt"

	"kiln-agent/src/logger"
)

// Manager drives cache restore and save around a pipeline run. It owns the
// snapshot format; entry storage is delegated to the BlobStore.
type Manager struct {
	store    BlobStore
	buildDir string
	logger   logger.Logger
}

// NewManager creates a cache manager snapshotting buildDir into store.
func NewManager(store BlobStore, buildDir string, log logger.Logger) *Manager {
	return &Manager{
		store:    store,
		buildDir: buildDir,
		logger:   log,
	}
}

// Restore looks up the entry for key and unpacks it into the build dir.
// A miss leaves the build dir untouched and reports (false, nil): the run
// proceeds with a full rebuild. Only store and unpack failures return an
// error.
func (m *Manager) Restore(ctx context.Context, key Key) (bool, error) {
	blob, err := m.store.Get(ctx, key.String())
	if errors.Is(err, ErrMiss) {
		m.logger.Info("[Cache] Miss for key %s, starting from empty build dir", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache restore failed for key %s: %w", key, err)
	}

	if err := Unpack(blob, m.buildDir); err != nil {
		return false, fmt.Errorf("cache restore failed for key %s: %w", key, err)
	}

	m.logger.Info("[Cache] Restored %d bytes for key %s", len(blob), key)
	return true, nil
}

// Save snapshots the build dir and writes the entry for key, overwriting
// any previous entry. Called at the end of every run regardless of step
// outcome, so the entry always holds the last known build-output state.
func (m *Manager) Save(ctx context.Context, key Key) error {
	blob, err := Pack(m.buildDir)
	if err != nil {
		return fmt.Errorf("cache save failed for key %s: %w", key, err)
	}

	if err := m.store.Put(ctx, key.String(), blob); err != nil {
		return fmt.Errorf("cache save failed for key %s: %w", key, err)
	}

	m.logger.Info("[Cache] Saved %d bytes for key %s", len(blob), key)
	return nil
}
