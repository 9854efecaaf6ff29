// Package mcp exposes Kiln pipeline runs over the Model Context Protocol
// so coding agents can trigger runs and inspect their outcomes.
package mcp

import (
	"kiln-agent/src/contracts"
)

// RunSummary is the compact run view returned by the run tools. Step
// output is withheld here; get_step_log returns it on demand.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	State            string        `json:"state"`
	Repo             string        `json:"repo"`
	Branch           string        `json:"branch"`
	SHA              string        `json:"sha"`
	ToolchainVersion string        `json:"toolchain_version,omitempty"`
	CacheKey         string        `json:"cache_key,omitempty"`
	Error            string        `json:"error,omitempty"`
	Steps            []StepSummary `json:"steps,omitempty"`
	Tests            *TestsSummary `json:"tests,omitempty"`
	StartedAt        string        `json:"started_at,omitempty"`
	FinishedAt       string        `json:"finished_at,omitempty"`
}

// StepSummary is one step without its retained output.
type StepSummary struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	OutputLen  int    `json:"output_bytes"`
}

// TestsSummary mirrors the parsed test report counts.
type TestsSummary struct {
	Total    int      `json:"total"`
	Failures int      `json:"failures"`
	Errors   int      `json:"errors"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// ToSummary converts a run record into its tool-facing summary.
func ToSummary(record *contracts.RunRecord) RunSummary {
	summary := RunSummary{
		RunID:            record.RunID,
		State:            string(record.State),
		Repo:             record.Event.Repo,
		Branch:           record.Event.Branch,
		SHA:              record.Event.SHA,
		ToolchainVersion: record.ToolchainVersion,
		CacheKey:         record.CacheKey,
		Error:            record.Error,
		StartedAt:        record.StartedAt,
		FinishedAt:       record.FinishedAt,
	}

	for _, step := range record.Steps {
		summary.Steps = append(summary.Steps, StepSummary{
			Name:       step.Name,
			Status:     string(step.Status),
			ExitCode:   step.ExitCode,
			DurationMS: step.DurationMS,
			OutputLen:  len(step.Output),
		})
	}

	if record.Tests != nil {
		summary.Tests = &TestsSummary{
			Total:    record.Tests.Total,
			Failures: record.Tests.Failures,
			Errors:   record.Tests.Errors,
			Skipped:  record.Tests.Skipped,
			Failed:   record.Tests.Failed,
		}
	}

	return summary
}

// StepLog returns a step's retained output.
func StepLog(record *contracts.RunRecord, stepName string) (string, bool) {
	step := record.Step(stepName)
	if step == nil {
		return "", false
	}
	return step.Output, true
}
