package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kiln-agent/src/contracts"
	"kiln-agent/src/pipeline"
	"kiln-agent/src/store"
)

// Server is the MCP server for Kiln.
type Server struct {
	mcpServer    *server.MCPServer
	cfg          *pipeline.Config
	orchestrator *pipeline.Orchestrator
	runs         store.RunStore
}

// NewServer creates a new MCP server around an already wired pipeline.
func NewServer(cfg *pipeline.Config, orchestrator *pipeline.Orchestrator, runs store.RunStore) *Server {
	s := server.NewMCPServer(
		"kiln",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:    s,
		cfg:          cfg,
		orchestrator: orchestrator,
		runs:         runs,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	triggerTool := mcp.NewTool("trigger_run",
		mcp.WithDescription("Trigger a pipeline run for a commit on the watched branch. Provisions the toolchain, restores the build cache, runs build then test, and returns the run summary. Runs synchronously; expect it to take as long as the build."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository in owner/name form"),
		),
		mcp.WithString("sha",
			mcp.Required(),
			mcp.Description("Commit SHA to build"),
		),
		mcp.WithString("branch",
			mcp.Description("Branch the commit is on (default: the watched branch)"),
		),
	)

	statusTool := mcp.NewTool("get_run_status",
		mcp.WithDescription("Get the status summary of a pipeline run: state, step outcomes, test counts. Step output is omitted; use get_step_log for it."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID from trigger_run or list_runs"),
		),
	)

	logTool := mcp.NewTool("get_step_log",
		mcp.WithDescription("Get the full sanitized output of one pipeline step."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID from trigger_run or list_runs"),
		),
		mcp.WithString("step",
			mcp.Required(),
			mcp.Description("Step name: build or test"),
		),
	)

	listTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recent pipeline runs, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Max runs to return (default: 10)"),
		),
	)

	s.mcpServer.AddTool(triggerTool, s.handleTriggerRun)
	s.mcpServer.AddTool(statusTool, s.handleGetRunStatus)
	s.mcpServer.AddTool(logTool, s.handleGetStepLog)
	s.mcpServer.AddTool(listTool, s.handleListRuns)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleTriggerRun handles the trigger_run tool call. The run executes
// synchronously and the terminal summary is returned.
func (s *Server) handleTriggerRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo parameter is required"), nil
	}

	sha := request.GetString("sha", "")
	if sha == "" {
		return mcp.NewToolResultError("sha parameter is required"), nil
	}

	branch := request.GetString("branch", s.cfg.WatchedBranch)
	if branch != s.cfg.WatchedBranch {
		return mcp.NewToolResultError(fmt.Sprintf("branch %q is not watched; runs only trigger on %q", branch, s.cfg.WatchedBranch)), nil
	}

	runRequest := contracts.RunRequest{
		RunID: fmt.Sprintf("run-%d", time.Now().UnixNano()),
		Event: contracts.TriggerEvent{
			Kind:   contracts.EventPush,
			Repo:   repo,
			Branch: branch,
			SHA:    sha,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	record, err := s.orchestrator.Execute(ctx, runRequest)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run failed to execute: %v", err)), nil
	}

	return marshalResult(ToSummary(record))
}

// handleGetRunStatus handles the get_run_status tool call.
func (s *Server) handleGetRunStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	record, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: %v", err)), nil
	}

	return marshalResult(ToSummary(record))
}

// handleGetStepLog handles the get_step_log tool call.
func (s *Server) handleGetStepLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	step := request.GetString("step", "")
	if step == "" {
		return mcp.NewToolResultError("step parameter is required"), nil
	}

	record, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: %v", err)), nil
	}

	log, ok := StepLog(record, step)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("run %s has no step %q", runID, step)), nil
	}

	return mcp.NewToolResultText(log), nil
}

// handleListRuns handles the list_runs tool call.
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)

	records, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	summaries := make([]RunSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, ToSummary(&records[i]))
	}

	return marshalResult(summaries)
}

// marshalResult renders a tool result as JSON text.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
