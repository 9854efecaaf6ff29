// Package store provides an in-memory store implementation.
package store

import (
	"context"
	"sync"

	"kiln-agent/src/contracts"
)

// MemoryStore is a thread-safe in-memory implementation of RunStore.
// Used for local mode and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]*contracts.RunRecord
	order []string // run IDs in creation order
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*contracts.RunRecord),
	}
}

// CreateRun inserts a new run record. Existing run IDs are left untouched.
func (s *MemoryStore) CreateRun(ctx context.Context, record *contracts.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[record.RunID]; exists {
		return nil
	}

	cp := *record
	s.runs[record.RunID] = &cp
	s.order = append(s.order, record.RunID)

	return nil
}

// UpdateRun replaces the stored record.
func (s *MemoryStore) UpdateRun(ctx context.Context, record *contracts.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[record.RunID]; !exists {
		return NotFoundError{RunID: record.RunID}
	}

	cp := *record
	s.runs[record.RunID] = &cp

	return nil
}

// GetRun returns a copy of the stored record.
func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*contracts.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.runs[runID]
	if !exists {
		return nil, NotFoundError{RunID: runID}
	}

	cp := *record
	return &cp, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]contracts.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []contracts.RunRecord
	for i := len(s.order) - 1; i >= 0; i-- {
		records = append(records, *s.runs[s.order[i]])
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
