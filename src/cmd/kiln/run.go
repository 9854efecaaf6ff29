package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kiln-agent/src/contracts"
	"kiln-agent/src/logger"
	"kiln-agent/src/pipeline"
	"kiln-agent/src/runner"
	"kiln-agent/src/tui"
)

// runCmd executes one pipeline run for a commit.
var runCmd = &cobra.Command{
	Use:   "run [repo] [sha]",
	Short: "Run the pipeline once for a commit",
	Long: `Run the build-then-test pipeline for one commit: provision the
toolchain, restore the build cache, run the build step, run the test step,
save the cache, and report the outcome.

The run executes in-process regardless of mode. With --watch a live view
shows step progress and streaming output; without it, step output goes to
stdout.

Example:
  kiln run acme/widget 4f2c1ab
  kiln run acme/widget 4f2c1ab --watch`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		repo, sha := args[0], args[1]
		watch, _ := cmd.Flags().GetBool("watch")
		branch, _ := cmd.Flags().GetString("branch")
		if branch == "" {
			branch = appConfig.WatchedBranch
		}

		if branch != appConfig.WatchedBranch {
			fmt.Fprintf(os.Stderr, "Branch %q is not watched; runs only trigger on %q\n", branch, appConfig.WatchedBranch)
			os.Exit(1)
		}

		request := contracts.RunRequest{
			RunID: fmt.Sprintf("run-%d", time.Now().UnixNano()),
			Event: contracts.TriggerEvent{
				Kind:   contracts.EventPush,
				Repo:   repo,
				Branch: branch,
				SHA:    sha,
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		var record *contracts.RunRecord
		if watch {
			record = runWatched(request)
		} else {
			record = runPlain(request)
		}

		if record.State != contracts.StateSucceeded {
			os.Exit(1)
		}
	},
}

// runPlain executes the run with step output streaming to stdout.
func runPlain(request contracts.RunRequest) *contracts.RunRecord {
	log := logger.NewConsoleLogger(appConfig.Color)

	cfg := pipelineConfig()
	components, err := pipeline.Wire(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	hooks := pipeline.Hooks{
		OnOutput: func(step, line string) {
			fmt.Printf("[%s] %s\n", step, line)
		},
	}

	orchestrator := pipeline.NewOrchestrator(cfg, runner.NewExecRunner(),
		components.Blobs, components.Runs, components.Broker,
		components.Reporter, log, hooks)

	record, err := orchestrator.Execute(context.Background(), request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run error: %v\n", err)
		os.Exit(1)
	}

	printSummary(record)
	return record
}

// runWatched executes the run behind the live terminal view.
func runWatched(request contracts.RunRequest) *contracts.RunRecord {
	// The view owns the terminal; everything else stays silent
	log := logger.NewSilentLogger()

	cfg := pipelineConfig()
	components, err := pipeline.Wire(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	watcher := tui.NewWatcher()
	hooks := pipeline.Hooks{
		OnState:  watcher.OnState,
		OnOutput: watcher.OnOutput,
	}

	orchestrator := pipeline.NewOrchestrator(cfg, runner.NewExecRunner(),
		components.Blobs, components.Runs, components.Broker,
		components.Reporter, log, hooks)

	done := make(chan *contracts.RunRecord, 1)
	go func() {
		record, err := orchestrator.Execute(context.Background(), request)
		if err != nil {
			record = &contracts.RunRecord{
				RunID: request.RunID,
				Event: request.Event,
				State: contracts.StateFailed,
				Error: err.Error(),
			}
		}
		watcher.Finish(record)
		done <- record
	}()

	model := tui.NewRunModel(request.RunID, request.Event.Repo, request.Event.SHA, watcher.Events())
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "View error: %v\n", err)
	}

	record := <-done
	printSummary(record)
	return record
}

// printSummary writes the terminal outcome to stdout.
func printSummary(record *contracts.RunRecord) {
	fmt.Printf("Run %s: %s\n", record.RunID, record.State)

	for _, step := range record.Steps {
		switch step.Status {
		case contracts.StepSkipped:
			fmt.Printf("  %s: skipped\n", step.Name)
		default:
			fmt.Printf("  %s: %s (exit %d, %dms)\n", step.Name, step.Status, step.ExitCode, step.DurationMS)
		}
	}

	if record.Tests != nil {
		fmt.Printf("  tests: %d total, %d failed, %d errors, %d skipped\n",
			record.Tests.Total, record.Tests.Failures, record.Tests.Errors, record.Tests.Skipped)
		for _, name := range record.Tests.Failed {
			fmt.Printf("    failed: %s\n", name)
		}
	}

	if record.Error != "" {
		fmt.Printf("  error: %s\n", record.Error)
	}
}

func init() {
	runCmd.Flags().BoolP("watch", "w", false, "Show the live run view while the pipeline executes")
	runCmd.Flags().StringP("branch", "b", "", "Branch the commit is on (default: the watched branch)")
}
