package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kiln-agent/src/logger"
	"kiln-agent/src/pipeline"
	"kiln-agent/src/runner"
	"kiln-agent/src/trigger"
)

// serveCmd runs the webhook listener.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for forge webhooks and schedule pipeline runs",
	Long: `Start the webhook listener. Push and pull request deliveries for the
watched branch schedule pipeline runs; everything else is acknowledged and
dropped.

Local Mode (default): runs execute in-process as they are scheduled.
Distributed Mode: runs are published to Redpanda for separate run-agent
processes. Set KILN_BROKERS and KILN_POSTGRES_DSN to enable it.

Example:
  kiln serve
  KILN_BROKERS=localhost:19092 KILN_POSTGRES_DSN=postgres://... kiln serve`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.NewConsoleLogger(appConfig.Color)

		cfg := pipelineConfig()
		components, err := pipeline.Wire(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to wire pipeline: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		log.Info("[Serve] Mode: %s", components.Mode)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// In local mode the run agent shares this process and broker
		if components.Mode == pipeline.LocalMode {
			orchestrator := pipeline.NewOrchestrator(cfg, runner.NewExecRunner(),
				components.Blobs, components.Runs, components.Broker,
				components.Reporter, log, pipeline.Hooks{})
			agent := pipeline.NewAgent(components.Broker, orchestrator, log)
			pipeline.Start(ctx, agent, log)
		}

		evaluator := trigger.NewEvaluator(appConfig.WatchedBranch, components.Broker, components.Runs, log)
		handler := trigger.NewHandler(evaluator)

		mux := http.NewServeMux()
		mux.Handle("/webhook", handler)

		server := &http.Server{
			Addr:    appConfig.ListenAddr,
			Handler: mux,
		}

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-sigChan
			log.Info("[Serve] Shutdown signal received, stopping...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			server.Shutdown(shutdownCtx)
		}()

		log.Info("[Serve] Watching branch %q, listening on %s", appConfig.WatchedBranch, appConfig.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}

		log.Info("[Serve] Stopped")
	},
}
