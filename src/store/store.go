// Package store defines the interface for persisting pipeline run records.
package store

import (
	"context"
	"fmt"

	"kiln-agent/src/contracts"
)

// RunStore persists run records for status queries and diagnostics.
// A run record is created when the trigger evaluator schedules the run and
// updated as the run progresses; once the state is terminal it no longer
// changes.
type RunStore interface {
	// CreateRun inserts a new run record. Creating an existing run ID is
	// a no-op so replayed run requests stay idempotent.
	CreateRun(ctx context.Context, record *contracts.RunRecord) error

	// UpdateRun replaces the stored record for the record's run ID.
	UpdateRun(ctx context.Context, record *contracts.RunRecord) error

	// GetRun returns the record for a run ID.
	GetRun(ctx context.Context, runID string) (*contracts.RunRecord, error)

	// ListRuns returns the most recent runs, newest first. limit <= 0
	// means no limit.
	ListRuns(ctx context.Context, limit int) ([]contracts.RunRecord, error)

	// Close closes the store connection.
	Close() error
}

// NotFoundError is returned when a run ID has no stored record.
type NotFoundError struct {
	RunID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}
