// Package trigger decides whether incoming repository events schedule
// pipeline runs.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kiln-agent/src/broker"
	"kiln-agent/src/contracts"
	"kiln-agent/src/logger"
	"kiln-agent/src/store"
)

// Evaluator schedules a pipeline run if and only if an event's branch
// equals the watched branch. Exact string match, no patterns. Non-matching
// events are silently ignored; that is not an error.
type Evaluator struct {
	watchedBranch string
	broker        broker.Broker
	runs          store.RunStore
	logger        logger.Logger
}

// NewEvaluator creates an evaluator for the watched branch.
func NewEvaluator(watchedBranch string, brk broker.Broker, runs store.RunStore, log logger.Logger) *Evaluator {
	return &Evaluator{
		watchedBranch: watchedBranch,
		broker:        brk,
		runs:          runs,
		logger:        log,
	}
}

// Evaluate inspects one event. For a qualifying event it creates the run
// record and publishes exactly one run request; the returned run ID is
// empty when the event was ignored.
func (e *Evaluator) Evaluate(ctx context.Context, event contracts.TriggerEvent) (string, error) {
	if event.Branch != e.watchedBranch {
		e.logger.Debug("[Trigger] Ignoring %s event on branch %q (watching %q)",
			event.Kind, event.Branch, e.watchedBranch)
		return "", nil
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())

	record := &contracts.RunRecord{
		RunID: runID,
		Event: event,
		State: contracts.StateIdle,
	}
	if err := e.runs.CreateRun(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create run record: %w", err)
	}

	request := contracts.RunRequest{
		RunID:     runID,
		Event:     event,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run request: %w", err)
	}

	if err := e.broker.Publish(ctx, contracts.TopicRunsRequested, runID, data); err != nil {
		return "", fmt.Errorf("failed to publish run request: %w", err)
	}

	e.logger.Info("[Trigger] Scheduled %s for %s event on %s@%s",
		runID, event.Kind, event.Repo, event.SHA)
	return runID, nil
}
