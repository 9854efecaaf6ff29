package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kiln-agent/src/contracts"
	"kiln-agent/src/logger"
	"kiln-agent/src/sanitize"
)

// fakeRunner scripts exit codes and output per command name.
type fakeRunner struct {
	exitCodes map[string]int
	output    map[string][]string
	runErr    map[string]error
	calls     []string
}

func (f *fakeRunner) Run(ctx context.Context, spec CommandSpec, onLine func(string)) (int, error) {
	name := spec.Argv[0]
	f.calls = append(f.calls, strings.Join(spec.Argv, " "))

	if err := f.runErr[name]; err != nil {
		return -1, err
	}
	for _, line := range f.output[name] {
		onLine(line)
	}
	return f.exitCodes[name], nil
}

func TestRunBuildAndTestPass(t *testing.T) {
	fake := &fakeRunner{
		exitCodes: map[string]int{"cargo": 0},
		output:    map[string][]string{"cargo": {"Compiling widget", "Finished"}},
	}

	var states []contracts.RunState
	r := New(fake, Options{
		OnState: func(s contracts.RunState) { states = append(states, s) },
	}, logger.NewSilentLogger())

	steps, state := r.Run(context.Background(),
		Step{Name: StepBuild, Command: []string{"cargo", "build"}},
		Step{Name: StepTest, Command: []string{"cargo", "test"}},
	)

	if state != contracts.StateSucceeded {
		t.Errorf("Expected succeeded, got %s", state)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 step results, got %d", len(steps))
	}
	if steps[0].Status != contracts.StepPassed || steps[1].Status != contracts.StepPassed {
		t.Errorf("Expected both steps passed, got %s / %s", steps[0].Status, steps[1].Status)
	}
	if !strings.Contains(steps[0].Output, "Compiling widget") {
		t.Errorf("Build output not retained: %q", steps[0].Output)
	}

	expected := []contracts.RunState{
		contracts.StateBuilding,
		contracts.StateTesting,
		contracts.StateSucceeded,
	}
	if len(states) != len(expected) {
		t.Fatalf("Expected states %v, got %v", expected, states)
	}
	for i := range expected {
		if states[i] != expected[i] {
			t.Errorf("State %d: expected %s, got %s", i, expected[i], states[i])
		}
	}
}

func TestRunBuildFailureSkipsTest(t *testing.T) {
	fake := &fakeRunner{
		exitCodes: map[string]int{"cargo": 101},
		output:    map[string][]string{"cargo": {"error[E0308]: mismatched types"}},
	}

	r := New(fake, Options{}, logger.NewSilentLogger())
	steps, state := r.Run(context.Background(),
		Step{Name: StepBuild, Command: []string{"cargo", "build"}},
		Step{Name: StepTest, Command: []string{"cargo", "test"}},
	)

	if state != contracts.StateFailed {
		t.Errorf("Expected failed, got %s", state)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("Test step ran after build failure: calls %v", fake.calls)
	}
	if steps[0].Status != contracts.StepFailed {
		t.Errorf("Expected build failed, got %s", steps[0].Status)
	}
	if steps[0].ExitCode != 101 {
		t.Errorf("Expected exit code 101, got %d", steps[0].ExitCode)
	}
	if steps[1].Status != contracts.StepSkipped {
		t.Errorf("Expected test skipped, got %s", steps[1].Status)
	}
	// Failure output is retained for diagnostics
	if !strings.Contains(steps[0].Output, "mismatched types") {
		t.Errorf("Failed build output not retained: %q", steps[0].Output)
	}
}

func TestRunTestFailure(t *testing.T) {
	// Build passes, test fails: distinguish by argv
	fake := &scriptedRunner{results: []scripted{
		{exitCode: 0, lines: []string{"Finished"}},
		{exitCode: 1, lines: []string{"test result: FAILED"}},
	}}

	r := New(fake, Options{}, logger.NewSilentLogger())
	steps, state := r.Run(context.Background(),
		Step{Name: StepBuild, Command: []string{"cargo", "build"}},
		Step{Name: StepTest, Command: []string{"cargo", "test"}},
	)

	if state != contracts.StateFailed {
		t.Errorf("Expected failed, got %s", state)
	}
	if steps[1].Status != contracts.StepFailed {
		t.Errorf("Expected test failed, got %s", steps[1].Status)
	}
	if !strings.Contains(steps[1].Output, "FAILED") {
		t.Errorf("Test output not retained: %q", steps[1].Output)
	}
}

func TestRunCommandStartFailure(t *testing.T) {
	fake := &fakeRunner{
		runErr: map[string]error{"cargo": errors.New("executable not found")},
	}

	r := New(fake, Options{}, logger.NewSilentLogger())
	steps, state := r.Run(context.Background(),
		Step{Name: StepBuild, Command: []string{"cargo", "build"}},
		Step{Name: StepTest, Command: []string{"cargo", "test"}},
	)

	if state != contracts.StateFailed {
		t.Errorf("Expected failed, got %s", state)
	}
	if !strings.Contains(steps[0].Output, "executable not found") {
		t.Errorf("Start failure reason not retained: %q", steps[0].Output)
	}
}

func TestRunScrubsOutput(t *testing.T) {
	fake := &fakeRunner{
		exitCodes: map[string]int{"cargo": 0},
		output:    map[string][]string{"cargo": {"pushing with token tok-secret"}},
	}

	var streamed []string
	r := New(fake, Options{
		Scrubber: sanitize.NewScrubber("tok-secret"),
		OnOutput: func(step, line string) { streamed = append(streamed, line) },
	}, logger.NewSilentLogger())

	steps, _ := r.Run(context.Background(),
		Step{Name: StepBuild, Command: []string{"cargo", "build"}},
		Step{Name: StepTest, Command: []string{"cargo", "test"}},
	)

	if strings.Contains(steps[0].Output, "tok-secret") {
		t.Error("Secret leaked into retained output")
	}
	for _, line := range streamed {
		if strings.Contains(line, "tok-secret") {
			t.Error("Secret leaked into streamed output")
		}
	}
}

// scriptedRunner returns results in call order.
type scriptedRunner struct {
	results []scripted
	call    int
}

type scripted struct {
	exitCode int
	lines    []string
}

func (s *scriptedRunner) Run(ctx context.Context, spec CommandSpec, onLine func(string)) (int, error) {
	res := s.results[s.call]
	s.call++
	for _, line := range res.lines {
		onLine(line)
	}
	return res.exitCode, nil
}
