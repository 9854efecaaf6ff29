package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"kiln-agent/src/contracts"
)

func newTestModel() RunModel {
	events := make(chan tea.Msg)
	return NewRunModel("run-1", "acme/widget", "abc1234567", events)
}

func update(t *testing.T, m RunModel, msg tea.Msg) RunModel {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(RunModel)
	if !ok {
		t.Fatalf("Update returned %T, expected RunModel", next)
	}
	return model
}

func TestRunModelStateTransitions(t *testing.T) {
	m := newTestModel()

	m = update(t, m, StateMsg(contracts.StateBuilding))
	if m.state != contracts.StateBuilding {
		t.Errorf("Expected building, got %s", m.state)
	}

	m = update(t, m, StateMsg(contracts.StateTesting))
	view := m.View()
	if !strings.Contains(view, "✓ build") {
		t.Errorf("Expected build marked passed once testing starts, got:\n%s", view)
	}
}

func TestRunModelOutputTail(t *testing.T) {
	m := newTestModel()

	for i := 0; i < outputTailLines+5; i++ {
		m = update(t, m, OutputMsg{Step: "build", Line: fmt.Sprintf("line %d", i)})
	}

	if len(m.output) != outputTailLines {
		t.Errorf("Expected tail of %d lines, got %d", outputTailLines, len(m.output))
	}
	if m.output[0] != "line 5" {
		t.Errorf("Expected oldest retained line 'line 5', got %q", m.output[0])
	}
}

func TestRunModelStripsColorCodes(t *testing.T) {
	m := newTestModel()
	m = update(t, m, OutputMsg{Step: "build", Line: "\x1b[32mCompiling\x1b[0m widget"})

	if m.output[0] != "Compiling widget" {
		t.Errorf("Expected stripped line, got %q", m.output[0])
	}
}

func TestRunModelFinishedSuccess(t *testing.T) {
	m := newTestModel()
	m = update(t, m, FinishedMsg{Record: &contracts.RunRecord{
		RunID: "run-1",
		State: contracts.StateSucceeded,
		Steps: []contracts.StepResult{
			{Name: "build", Status: contracts.StepPassed},
			{Name: "test", Status: contracts.StepPassed},
		},
		Tests: &contracts.TestSummary{Total: 42},
	}})

	if !m.done {
		t.Error("Expected done after FinishedMsg")
	}
	view := m.View()
	if !strings.Contains(view, "run succeeded, 42 tests passed") {
		t.Errorf("Expected success summary, got:\n%s", view)
	}
}

func TestRunModelFinishedBuildFailure(t *testing.T) {
	m := newTestModel()
	m = update(t, m, FinishedMsg{Record: &contracts.RunRecord{
		RunID: "run-1",
		State: contracts.StateFailed,
		Steps: []contracts.StepResult{
			{Name: "build", Status: contracts.StepFailed, ExitCode: 101},
			{Name: "test", Status: contracts.StepSkipped},
		},
	}})

	view := m.View()
	if !strings.Contains(view, "exit 101") {
		t.Errorf("Expected build exit code in view, got:\n%s", view)
	}
	if !strings.Contains(view, "skipped") {
		t.Errorf("Expected skipped test step in view, got:\n%s", view)
	}
}

func TestRunModelQuitsAfterFinish(t *testing.T) {
	m := newTestModel()
	m = update(t, m, FinishedMsg{Record: &contracts.RunRecord{State: contracts.StateSucceeded}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatal("Expected quit command after finish")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("Expected tea.Quit, got %v", msg)
	}
}
