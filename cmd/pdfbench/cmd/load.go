package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pdfbench/internal/harness"
)

var (
	loadCount       int
	loadConcurrency int
	loadUseAsync    bool
)

func init() {
	loadCmd.Flags().IntVar(&loadCount, "count", 10, "number of documents to generate")
	loadCmd.Flags().IntVar(&loadConcurrency, "concurrency", 1, "lifecycles allowed in flight at once")
	loadCmd.Flags().BoolVar(&loadUseAsync, "use-async", false, "drive the asynchronous job lifecycle instead of the sync endpoint")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run a load test against the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loadCount < 1 {
			return errors.New("--count must be at least 1")
		}
		if loadConcurrency < 1 {
			return errors.New("--concurrency must be at least 1")
		}

		h, cfg, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}

		stopMetrics := serveMetrics(cfg.MetricsPort)
		defer stopMetrics()

		mode := harness.ModeSync
		if loadUseAsync {
			mode = harness.ModeAsync
		}

		h.RunLoad(cmd.Context(), loadCount, loadConcurrency, mode)
		return nil
	},
}

// serveMetrics exposes /metrics for the duration of the run when a port is
// configured. Returns a stop function; a no-op when disabled.
func serveMetrics(port string) func() {
	if port == "" || metricsHandler == nil {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting metrics server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("Metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown error", "error", err)
		}
	}
}
