// Package main provides the MCP server entry point for Kiln.
// This server implements the Model Context Protocol, enabling coding
// agents to trigger pipeline runs and inspect their outcomes.
package main

import (
	"fmt"
	"os"

	"kiln-agent/src/config"
	"kiln-agent/src/logger"
	"kiln-agent/src/mcp"
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

	// Stdio transport owns stdout; logging stays silent
	log := logger.NewSilentLogger()

	components, err := pipeline.Wire(pipelineCfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	orchestrator := pipeline.NewOrchestrator(pipelineCfg, runner.NewExecRunner(),
		components.Blobs, components.Runs, components.Broker,
		components.Reporter, log, pipeline.Hooks{})

	// Create MCP server instance
	server := mcp.NewServer(pipelineCfg, orchestrator, components.Runs)

	// Run server over stdin/stdout (stdio transport)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
