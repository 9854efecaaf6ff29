// Package runner executes the build-then-test step sequence of a pipeline
// run. It is a strict sequential state machine:
//
//	idle -> building -> testing -> succeeded | failed
//
// The building -> testing transition happens only when the build step exits
// zero; otherwise the run fails immediately and the test step is skipped.
// There are no retries.
package runner

import (
	"context"
	"strings"
	"time"

	"kiln-agent/src/contracts"
	"kiln-agent/src/logger"
	"kiln-agent/src/sanitize"
)

// Step names. Every run has exactly these two steps, in this order.
const (
	StepBuild = "build"
	StepTest  = "test"
)

// Step is one opaque external command in the pipeline. Kiln never
// interprets its output, only its exit status.
type Step struct {
	Name    string
	Command []string
}

// Options configures a Runner.
type Options struct {
	// WorkDir is the repository checkout steps run in.
	WorkDir string
	// Env entries are appended to each step's environment.
	Env []string
	// Scrubber sanitizes retained and streamed output. Nil disables
	// scrubbing.
	Scrubber *sanitize.Scrubber
	// OnState is called on every state transition. Optional.
	OnState func(contracts.RunState)
	// OnOutput is called with each sanitized output line while a step
	// runs. Optional.
	OnOutput func(step, line string)
}

// Runner executes pipeline steps sequentially.
type Runner struct {
	exec   CommandRunner
	opts   Options
	logger logger.Logger
}

// New creates a runner.
func New(exec CommandRunner, opts Options, log logger.Logger) *Runner {
	return &Runner{exec: exec, opts: opts, logger: log}
}

// Run executes the build step, then the test step if the build passed.
// Returns the step results in order and the terminal run state. Both step
// results are always present; a skipped test step is recorded with status
// "skipped".
func (r *Runner) Run(ctx context.Context, build, test Step) ([]contracts.StepResult, contracts.RunState) {
	r.setState(contracts.StateBuilding)
	buildResult := r.runStep(ctx, build)

	if buildResult.Status != contracts.StepPassed {
		r.logger.Error("[Runner] Build step failed with exit code %d, skipping test step", buildResult.ExitCode)
		r.setState(contracts.StateFailed)
		return []contracts.StepResult{
			buildResult,
			{Name: test.Name, Command: test.Command, Status: contracts.StepSkipped},
		}, contracts.StateFailed
	}

	r.setState(contracts.StateTesting)
	testResult := r.runStep(ctx, test)

	state := contracts.StateSucceeded
	if testResult.Status != contracts.StepPassed {
		state = contracts.StateFailed
	}
	r.setState(state)

	return []contracts.StepResult{buildResult, testResult}, state
}

// runStep executes one step and captures its full output stream.
func (r *Runner) runStep(ctx context.Context, step Step) contracts.StepResult {
	r.logger.Info("[Runner] Running %s step: %s", step.Name, strings.Join(step.Command, " "))

	var output strings.Builder
	onLine := func(line string) {
		line = r.scrub(line)
		output.WriteString(line)
		output.WriteByte('\n')
		if r.opts.OnOutput != nil {
			r.opts.OnOutput(step.Name, line)
		}
	}

	start := time.Now()
	exitCode, err := r.exec.Run(ctx, CommandSpec{
		Argv: step.Command,
		Dir:  r.opts.WorkDir,
		Env:  r.opts.Env,
	}, onLine)
	duration := time.Since(start)

	result := contracts.StepResult{
		Name:       step.Name,
		Command:    step.Command,
		ExitCode:   exitCode,
		DurationMS: duration.Milliseconds(),
	}

	if err != nil {
		// The command could not be run at all; retain the reason where
		// the output would be.
		onLine("kiln: " + err.Error())
		result.Status = contracts.StepFailed
		result.Output = output.String()
		return result
	}

	result.Output = output.String()
	if exitCode == 0 {
		result.Status = contracts.StepPassed
	} else {
		result.Status = contracts.StepFailed
	}

	return result
}

func (r *Runner) scrub(line string) string {
	if r.opts.Scrubber == nil {
		return line
	}
	return r.opts.Scrubber.Scrub(line)
}

func (r *Runner) setState(state contracts.RunState) {
	if r.opts.OnState != nil {
		r.opts.OnState(state)
	}
}
