package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"kiln-agent/src/broker"
	"kiln-agent/src/contracts"
	"kiln-agent/src/logger"
)

// Agent consumes scheduled run requests from the broker and executes them.
// Distributed deployments run several agents; each run executes in
// isolation and only the cache entry store is shared (last writer wins).
type Agent struct {
	broker       broker.Broker
	orchestrator *Orchestrator
	logger       logger.Logger
}

// NewAgent creates a run agent.
func NewAgent(brk broker.Broker, orchestrator *Orchestrator, log logger.Logger) *Agent {
	return &Agent{
		broker:       brk,
		orchestrator: orchestrator,
		logger:       log,
	}
}

// Run starts the agent's main loop. It subscribes to kiln.runs.requested
// and executes incoming requests sequentially; one agent is one worker.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[RunAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicRunsRequested, "kiln-run-agent")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRunsRequested, err)
	}

	a.logger.Info("[RunAgent] Listening for run requests on '%s' topic...", contracts.TopicRunsRequested)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[RunAgent] Message channel closed, shutting down")
				return nil
			}

			if err := a.processRequest(ctx, msg); err != nil {
				a.logger.Error("[RunAgent] Error processing request: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[RunAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processRequest handles one scheduled run request.
func (a *Agent) processRequest(ctx context.Context, msg broker.Message) error {
	var request contracts.RunRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		return fmt.Errorf("failed to unmarshal run request: %w", err)
	}

	a.logger.Info("[RunAgent] Executing %s for %s@%s",
		request.RunID, request.Event.Repo, request.Event.SHA)

	record, err := a.orchestrator.Execute(ctx, request)
	if err != nil {
		return fmt.Errorf("run %s: %w", request.RunID, err)
	}

	a.logger.Info("[RunAgent] Run %s finished: %s", record.RunID, record.State)
	return nil
}

// Start launches the run agent as a goroutine for local mode, where the
// webhook listener and the agent share one process and one in-memory
// broker. Errors are logged, not returned; the goroutine exits with the
// context.
func Start(ctx context.Context, agent *Agent, log logger.Logger) {
	go func() {
		if err := agent.Run(ctx); err != nil && err != context.Canceled {
			log.Error("[Pipeline] Run agent stopped: %v", err)
		}
	}()
}
