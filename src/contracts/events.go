// Package contracts defines the message and record types exchanged between
// the Kiln agents.
package contracts

// EventKind identifies how a trigger event reached us.
type EventKind string

const (
	// EventPush is a branch push.
	EventPush EventKind = "push"
	// EventPullRequest is a pull request open/update.
	EventPullRequest EventKind = "pull_request"
)

// TriggerEvent is an external repository notification carrying a branch
// reference. The trigger evaluator decides whether it schedules a run.
type TriggerEvent struct {
	// Kind of event ("push" or "pull_request").
	Kind EventKind `json:"kind"`
	// Repository in "owner/name" form.
	Repo string `json:"repo"`
	// Branch the event targets. Exact name, no patterns.
	Branch string `json:"branch"`
	// Commit SHA the run checks out and reports status against.
	SHA string `json:"sha"`
	// Link back to the commit or pull request, for humans.
	URL string `json:"url,omitempty"`
	// Pull request number. Zero for pushes.
	Number int `json:"number,omitempty"`
}

// RunRequest asks a run agent to execute a pipeline run for an event.
// Published to: kiln.runs.requested
// Key: {run_id}
type RunRequest struct {
	RunID string       `json:"run_id"`
	Event TriggerEvent `json:"event"`
	// Time the request was scheduled, RFC3339.
	Timestamp string `json:"timestamp"`
}

// StepOutputLine is a single line of step output streamed while a step runs.
// Published to: kiln.steps.output
// Key: {run_id}
type StepOutputLine struct {
	RunID string `json:"run_id"`
	Step  string `json:"step"`
	Line  string `json:"line"`
}

// TopicNames defines the broker topic names used between agents.
const (
	// TopicRunsRequested carries scheduled run requests.
	TopicRunsRequested = "kiln.runs.requested"

	// TopicRunsStatus carries terminal run status updates.
	TopicRunsStatus = "kiln.runs.status"

	// TopicStepOutput carries streamed step output lines.
	TopicStepOutput = "kiln.steps.output"
)
