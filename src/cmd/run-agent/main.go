// Package main provides the standalone run agent binary for distributed
// mode. It consumes scheduled run requests from Redpanda and executes
// them, persisting outcomes to Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kiln-agent/src/config"
	"kiln-agent/src/logger"
	"kiln-agent/src/pipeline"
	"kiln-agent/src/runner"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Verify we're in distributed mode
	if len(cfg.Brokers) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: KILN_BROKERS environment variable is required for the run agent")
		fmt.Fprintln(os.Stderr, "Example: export KILN_BROKERS=localhost:19092")
		os.Exit(1)
	}

	log := logger.NewConsoleLogger(cfg.Color)

	log.Info("Starting Kiln Run Agent")
	log.Info("Brokers: %v", cfg.Brokers)

	pipelineCfg := &pipeline.Config{
		Brokers:       cfg.Brokers,
		PostgresDSN:   cfg.PostgresDSN,
		WatchedBranch: cfg.WatchedBranch,
		Toolchain:     cfg.Toolchain,
		WorkDir:       cfg.WorkDir,
		BuildDir:      cfg.BuildDir,
		CacheDir:      cfg.CacheDir,
		ForgeToken:    cfg.ForgeToken,
		ForgeURL:      cfg.ForgeURL,
	}

	components, err := pipeline.Wire(pipelineCfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	orchestrator := pipeline.NewOrchestrator(pipelineCfg, runner.NewExecRunner(),
		components.Blobs, components.Runs, components.Broker,
		components.Reporter, log, pipeline.Hooks{})
	agent := pipeline.NewAgent(components.Broker, orchestrator, log)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping agent...")
		cancel()
	}()

	// Run agent
	if err := agent.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Run agent stopped")
}
