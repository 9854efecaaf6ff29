package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kiln-agent/src/contracts"
)

func TestWatcherForwardsEvents(t *testing.T) {
	w := NewWatcher()

	// Drain each event as a live viewer would
	w.OnState(contracts.StateBuilding)
	if state, ok := (<-w.Events()).(StateMsg); !ok || contracts.RunState(state) != contracts.StateBuilding {
		t.Errorf("Expected building StateMsg, got %v", state)
	}

	w.OnOutput("build", "Compiling widget")
	if out, ok := (<-w.Events()).(OutputMsg); !ok || out.Line != "Compiling widget" {
		t.Errorf("Expected output event, got %v", out)
	}

	w.Finish(&contracts.RunRecord{RunID: "run-1", State: contracts.StateSucceeded})
	if fin, ok := (<-w.Events()).(FinishedMsg); !ok || fin.Record.RunID != "run-1" {
		t.Errorf("Expected finished event, got %v", fin)
	}

	if _, open := <-w.Events(); open {
		t.Error("Expected channel closed after finish")
	}
}

func TestWatcherDropsOutputWhenBufferFull(t *testing.T) {
	w := NewWatcher()

	// No reader; progress events past the buffer are dropped, not blocked on
	for i := 0; i < 1000; i++ {
		w.OnOutput("build", fmt.Sprintf("line %d", i))
	}
}

func TestWatcherFinishReturnsWithoutViewer(t *testing.T) {
	w := NewWatcher()

	// Fill the buffer past capacity with nobody draining, as when the
	// viewer quits during a long build
	for i := 0; i < 1000; i++ {
		w.OnOutput("build", fmt.Sprintf("line %d", i))
	}

	finished := make(chan struct{})
	go func() {
		w.Finish(&contracts.RunRecord{RunID: "run-1", State: contracts.StateFailed})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Finish blocked with no viewer draining the channel")
	}

	// The terminal record survives the discard of stale progress events
	var last tea.Msg
	for msg := range w.Events() {
		last = msg
	}
	fin, ok := last.(FinishedMsg)
	if !ok {
		t.Fatalf("Expected final event to be FinishedMsg, got %T", last)
	}
	if fin.Record.State != contracts.StateFailed {
		t.Errorf("Unexpected record on finish: %+v", fin.Record)
	}
}
