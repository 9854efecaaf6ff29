package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"kiln-agent/src/broker"
	"kiln-agent/src/cache"
	"kiln-agent/src/contracts"
	"kiln-agent/src/forge"
	"kiln-agent/src/logger"
	"kiln-agent/src/report"
	"kiln-agent/src/runner"
	"kiln-agent/src/sanitize"
	"kiln-agent/src/store"
	"kiln-agent/src/toolchain"
)

// Hooks receive run progress for display. All fields are optional.
type Hooks struct {
	// OnState is called on every runner state transition.
	OnState func(contracts.RunState)
	// OnOutput is called with each sanitized step output line.
	OnOutput func(step, line string)
}

// Orchestrator executes one pipeline run end to end:
//
//	report pending -> provision toolchain -> restore cache ->
//	build -> test -> save cache -> report outcome
//
// The cache save happens at the end of every run regardless of step
// outcome, so the entry always holds the last known build-output state.
type Orchestrator struct {
	cfg      *Config
	exec     runner.CommandRunner
	blobs    cache.BlobStore
	runs     store.RunStore
	broker   broker.Broker
	reporter forge.StatusReporter
	logger   logger.Logger
	hooks    Hooks
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(cfg *Config, exec runner.CommandRunner, blobs cache.BlobStore,
	runs store.RunStore, brk broker.Broker, reporter forge.StatusReporter,
	log logger.Logger, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		exec:     exec,
		blobs:    blobs,
		runs:     runs,
		broker:   brk,
		reporter: reporter,
		logger:   log,
		hooks:    hooks,
	}
}

// Execute runs the full pipeline for a scheduled run request and returns
// the terminal run record. A failing run is a normal outcome, not an
// error; the error return is reserved for infrastructure failures that
// prevented recording the outcome.
func (o *Orchestrator) Execute(ctx context.Context, request contracts.RunRequest) (*contracts.RunRecord, error) {
	record := &contracts.RunRecord{
		RunID:     request.RunID,
		Event:     request.Event,
		State:     contracts.StateIdle,
		StartedAt: time.Now().Format(time.RFC3339),
	}

	o.logger.Info("[Pipeline] Starting %s for %s@%s", record.RunID, record.Event.Repo, record.Event.SHA)
	o.report(ctx, record, forge.StatusPending, "build and test running")

	// Toolchain provisioning failures abort before any step runs
	provisioner := toolchain.NewProvisioner(o.cfg.Toolchain, o.exec, o.logger)
	tc, err := provisioner.Ensure(ctx)
	if err != nil {
		o.logger.Error("[Pipeline] Provisioning failed for %s: %v", record.RunID, err)
		record.State = contracts.StateFailed
		record.Error = err.Error()
		return record, o.finish(ctx, record)
	}
	record.ToolchainVersion = tc.Version
	record.Fingerprint = tc.Fingerprint

	key := cache.NewKey(tc.Fingerprint)
	record.CacheKey = key.String()

	buildDir := filepath.Join(o.cfg.WorkDir, o.cfg.BuildDir)
	cacheManager := cache.NewManager(o.blobs, buildDir, o.logger)

	// A failed restore degrades to a full rebuild, same as a miss
	if _, err := cacheManager.Restore(ctx, key); err != nil {
		o.logger.Error("[Pipeline] Cache restore failed, rebuilding from scratch: %v", err)
	}

	manifest, err := LoadManifest(o.cfg.WorkDir)
	if err != nil {
		o.logger.Error("[Pipeline] Manifest error for %s: %v", record.RunID, err)
		record.State = contracts.StateFailed
		record.Error = err.Error()
		return record, o.finish(ctx, record)
	}
	build, test := manifest.Steps()

	stepRunner := runner.New(o.exec, runner.Options{
		WorkDir:  o.cfg.WorkDir,
		Scrubber: sanitize.NewScrubber(o.cfg.ForgeToken),
		OnState:  o.hooks.OnState,
		OnOutput: o.streamOutput(ctx, record.RunID),
	}, o.logger)

	record.Steps, record.State = stepRunner.Run(ctx, build, test)

	// Summarize the JUnit report when the test step actually ran
	if testStep := record.Step(runner.StepTest); testStep != nil && testStep.Status != contracts.StepSkipped {
		summary, err := report.ParseFile(filepath.Join(o.cfg.WorkDir, report.DefaultReportPath))
		if err != nil {
			o.logger.Error("[Pipeline] Test report unreadable for %s: %v", record.RunID, err)
		} else {
			record.Tests = summary
		}
	}

	// Save unconditionally: the entry keeps the last known build-output
	// state even when build or test failed
	if err := cacheManager.Save(ctx, key); err != nil {
		o.logger.Error("[Pipeline] Cache save failed for %s: %v", record.RunID, err)
	}

	return record, o.finish(ctx, record)
}

// finish stamps the record, persists it, reports the commit status, and
// publishes the terminal record on the status topic.
func (o *Orchestrator) finish(ctx context.Context, record *contracts.RunRecord) error {
	record.FinishedAt = time.Now().Format(time.RFC3339)

	switch record.State {
	case contracts.StateSucceeded:
		o.report(ctx, record, forge.StatusSuccess, "build and test passed")
	default:
		o.report(ctx, record, forge.StatusFailure, failureDescription(record))
	}

	if err := o.runs.UpdateRun(ctx, record); err != nil {
		// The run may not exist yet when executed outside the trigger
		// evaluator (one-shot local runs)
		if createErr := o.runs.CreateRun(ctx, record); createErr != nil {
			return fmt.Errorf("failed to persist run %s: %w", record.RunID, err)
		}
		if err := o.runs.UpdateRun(ctx, record); err != nil {
			return fmt.Errorf("failed to persist run %s: %w", record.RunID, err)
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := o.broker.Publish(ctx, contracts.TopicRunsStatus, record.RunID, data); err != nil {
		return fmt.Errorf("failed to publish run status: %w", err)
	}

	o.logger.Info("[Pipeline] Finished %s: %s", record.RunID, record.State)
	return nil
}

// report surfaces the run state on the triggering commit. Reporting is
// best-effort; a forge outage must not change the run outcome.
func (o *Orchestrator) report(ctx context.Context, record *contracts.RunRecord, status forge.Status, description string) {
	err := o.reporter.ReportStatus(ctx, record.Event.Repo, record.Event.SHA, status, description, record.Event.URL)
	if err != nil {
		// WrapError attaches the credential hint for auth failures
		o.logger.Error("[Pipeline] Status report failed for %s: %v", record.RunID, forge.WrapError(err))
	}
}

// streamOutput fans sanitized step output to the hooks and, best-effort,
// to the step output topic.
func (o *Orchestrator) streamOutput(ctx context.Context, runID string) func(step, line string) {
	return func(step, line string) {
		if o.hooks.OnOutput != nil {
			o.hooks.OnOutput(step, line)
		}

		msg := contracts.StepOutputLine{RunID: runID, Step: step, Line: line}
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := o.broker.Publish(ctx, contracts.TopicStepOutput, runID, data); err != nil {
			o.logger.Debug("[Pipeline] Step output publish failed: %v", err)
		}
	}
}

func failureDescription(record *contracts.RunRecord) string {
	if record.Error != "" {
		return "toolchain provisioning failed"
	}
	if step := record.Step(runner.StepBuild); step != nil && step.Status == contracts.StepFailed {
		return "build step failed"
	}
	if record.Tests != nil && len(record.Tests.Failed) > 0 {
		return fmt.Sprintf("%d of %d tests failed", record.Tests.Failures+record.Tests.Errors, record.Tests.Total)
	}
	return "test step failed"
}
