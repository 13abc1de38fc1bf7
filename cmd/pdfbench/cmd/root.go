// Package cmd implements the pdfbench command line interface.
package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"pdfbench/internal/client"
	"pdfbench/internal/config"
	"pdfbench/internal/harness"
	"pdfbench/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "pdfbench",
	Short: "Correctness and load testing harness for the PDF generation service",
	Long: `pdfbench exercises the PDF generation service over HTTP.

Without a subcommand it runs the full sequence: health check, one
synchronous generation, one asynchronous job lifecycle.

Configuration comes from the environment:

  API_BASE           service base address (default http://localhost:3000)
  API_KEY            X-API-Key value (default dev-secret-key)
  API_KEY_FILE       file to read the key from, takes precedence
  OUTPUT_DIR         artifact destination (default ./test-output)
  POLL_INTERVAL      wait between job status checks (default 1s)
  POLL_MAX_ATTEMPTS  status checks before a job times out (default 30)
  METRICS_PORT       serve Prometheus /metrics during load runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}
		return h.RunAll(cmd.Context())
	},
}

// Execute runs the CLI, exiting non-zero on error.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

// newHarness builds the harness and its config from the environment.
func newHarness(ctx context.Context) (*harness.Harness, *config.Config, error) {
	cfg := config.Load()

	metrics, handler, err := observability.NewMetrics(ctx)
	if err != nil {
		return nil, nil, err
	}
	metricsHandler = handler

	c := client.New(cfg, metrics)
	return harness.New(cfg, c, metrics), cfg, nil
}

// metricsHandler serves /metrics during load runs; set by newHarness.
var metricsHandler http.Handler
