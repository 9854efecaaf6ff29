package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kiln-agent/src/logger"
	"kiln-agent/src/pipeline"
)

// statusCmd inspects stored pipeline runs.
var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show a run's outcome, or list recent runs",
	Long: `With a run ID, print the full outcome of that run including step
results and test counts. Without one, list recent runs newest first.

Run history needs a persistent store; in local mode records only live as
long as the scheduling process.

Example:
  kiln status
  kiln status run-1724500000000000000`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		log := logger.NewSilentLogger()

		components, err := pipeline.Wire(pipelineConfig(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		if len(args) == 1 {
			record, err := components.Runs.GetRun(ctx, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printSummary(record)
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := components.Runs.ListRuns(ctx, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return
		}

		for _, record := range records {
			fmt.Printf("%s  %-9s  %s@%s  %s\n",
				record.RunID, record.State, record.Event.Repo,
				shortSHA(record.Event.SHA), record.StartedAt)
		}
	},
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func init() {
	statusCmd.Flags().IntP("limit", "n", 10, "Max runs to list")
}
