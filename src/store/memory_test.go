package store

import (
	"context"
	"errors"
	"testing"

	"kiln-agent/src/contracts"
)

func testRecord(runID string) *contracts.RunRecord {
	return &contracts.RunRecord{
		RunID: runID,
		Event: contracts.TriggerEvent{
			Kind:   contracts.EventPush,
			Repo:   "acme/widget",
			Branch: "master",
			SHA:    "abc123",
		},
		State: contracts.StateIdle,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateRun(ctx, testRecord("run-1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Event.Repo != "acme/widget" {
		t.Errorf("Expected repo 'acme/widget', got %q", got.Event.Repo)
	}
	if got.State != contracts.StateIdle {
		t.Errorf("Expected state idle, got %s", got.State)
	}
}

func TestMemoryStore_CreateIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateRun(ctx, testRecord("run-1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	// Second create with a different state must not clobber the record
	dup := testRecord("run-1")
	dup.State = contracts.StateFailed
	if err := s.CreateRun(ctx, dup); err != nil {
		t.Fatalf("Duplicate CreateRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.State != contracts.StateIdle {
		t.Errorf("Duplicate create clobbered the record: state %s", got.State)
	}
}

func TestMemoryStore_UpdateRun(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	record := testRecord("run-1")
	if err := s.CreateRun(ctx, record); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	record.State = contracts.StateSucceeded
	record.Steps = []contracts.StepResult{
		{Name: "build", Status: contracts.StepPassed},
		{Name: "test", Status: contracts.StepPassed},
	}
	if err := s.UpdateRun(ctx, record); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.State != contracts.StateSucceeded {
		t.Errorf("Expected state succeeded, got %s", got.State)
	}
	if len(got.Steps) != 2 {
		t.Errorf("Expected 2 steps, got %d", len(got.Steps))
	}
}

func TestMemoryStore_UpdateUnknownRun(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	err := s.UpdateRun(context.Background(), testRecord("missing"))
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestMemoryStore_GetUnknownRun(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.GetRun(context.Background(), "missing")
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestMemoryStore_ListRunsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := s.CreateRun(ctx, testRecord(id)); err != nil {
			t.Fatalf("CreateRun %s failed: %v", id, err)
		}
	}

	records, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].RunID != "run-3" || records[1].RunID != "run-2" {
		t.Errorf("Expected newest first [run-3 run-2], got [%s %s]", records[0].RunID, records[1].RunID)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateRun(ctx, testRecord("run-1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, _ := s.GetRun(ctx, "run-1")
	got.State = contracts.StateFailed

	again, _ := s.GetRun(ctx, "run-1")
	if again.State != contracts.StateIdle {
		t.Error("Mutating a returned record leaked into the store")
	}
}
