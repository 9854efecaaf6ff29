package contracts

// RunState is the pipeline runner state machine position.
// Transitions: idle -> building -> testing -> succeeded | failed.
// A build failure goes straight to failed; the test step never runs.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateBuilding  RunState = "building"
	StateTesting   RunState = "testing"
	StateSucceeded RunState = "succeeded"
	StateFailed    RunState = "failed"
)

// Terminal reports whether the state is an end state.
func (s RunState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one executed (or skipped) pipeline step.
type StepResult struct {
	// Name is "build" or "test".
	Name string `json:"name"`
	// Command is the argv the step ran.
	Command []string `json:"command"`
	// Status of the step.
	Status StepStatus `json:"status"`
	// ExitCode of the step command. Zero for skipped steps.
	ExitCode int `json:"exit_code"`
	// Output is the full combined stdout/stderr stream, sanitized.
	// Retained for diagnostics regardless of outcome.
	Output string `json:"output,omitempty"`
	// DurationMS is wall-clock step duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// TestSummary aggregates test report counts when the test step emits a
// JUnit XML report. Nil on the run record when no report was found.
type TestSummary struct {
	Total    int      `json:"total"`
	Failures int      `json:"failures"`
	Errors   int      `json:"errors"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// RunRecord is one execution of the build-then-test sequence. Created when
// an event qualifies, updated as the run progresses, immutable once the
// state is terminal.
type RunRecord struct {
	RunID string       `json:"run_id"`
	Event TriggerEvent `json:"event"`
	// ToolchainVersion is the resolved compiler version string.
	ToolchainVersion string `json:"toolchain_version,omitempty"`
	// Fingerprint identifies the toolchain for cache-key derivation.
	Fingerprint string `json:"fingerprint,omitempty"`
	// CacheKey the run restored from and saved to.
	CacheKey string `json:"cache_key,omitempty"`
	State    RunState `json:"state"`
	// Steps in execution order: build, then test.
	Steps []StepResult `json:"steps"`
	// Tests summarizes the JUnit report, when the test step produced one.
	Tests *TestSummary `json:"tests,omitempty"`
	// Error holds the fatal error for runs that failed before any step
	// (provisioning failures).
	Error string `json:"error,omitempty"`
	// StartedAt / FinishedAt, RFC3339.
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// Step returns the named step result, or nil if the run has none.
func (r *RunRecord) Step(name string) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}
