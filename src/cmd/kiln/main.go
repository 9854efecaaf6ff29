// Package main provides the unified Kiln CLI with mode detection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kiln-agent/src/config"
	"kiln-agent/src/pipeline"
)

var appConfig *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Kiln - A branch-triggered build and test pipeline",
	Long: `Kiln watches one branch of a repository and runs the build-then-test
pipeline for every qualifying push or pull request.

It supports two modes:
- Local Mode: In-memory broker and store, everything in one process (default)
- Distributed Mode: Redpanda + Postgres, webhook listener and run agents
  in separate processes

Mode is auto-detected based on the KILN_BROKERS environment variable.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	},
}

// pipelineConfig converts the environment configuration into pipeline
// wiring configuration.
func pipelineConfig() *pipeline.Config {
	return &pipeline.Config{
		Brokers:       appConfig.Brokers,
		PostgresDSN:   appConfig.PostgresDSN,
		WatchedBranch: appConfig.WatchedBranch,
		Toolchain:     appConfig.Toolchain,
		WorkDir:       appConfig.WorkDir,
		BuildDir:      appConfig.BuildDir,
		CacheDir:      appConfig.CacheDir,
		ForgeToken:    appConfig.ForgeToken,
		ForgeURL:      appConfig.ForgeURL,
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
