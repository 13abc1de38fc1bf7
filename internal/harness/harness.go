// Package harness wires the client, poller, runner, and output writer into
// the test scenarios the CLI exposes.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pdfbench/internal/client"
	"pdfbench/internal/config"
	"pdfbench/internal/loadrunner"
	"pdfbench/internal/output"
	"pdfbench/internal/payload"
	"pdfbench/internal/poller"
	"pdfbench/pkg/backoff"
)

// Mode selects which lifecycle a load run executes.
type Mode string

const (
	ModeSync  Mode = "sync"  // single POST /api/v1/generate call
	ModeAsync Mode = "async" // submit, poll, download
)

// Metrics is the optional recorder for lifecycle and polling metrics.
type Metrics interface {
	loadrunner.MetricsRecorder
	RecordPollAttempts(ctx context.Context, attempts int, finalState string)
}

// Harness runs correctness and load scenarios against one service instance.
type Harness struct {
	cfg     *config.Config
	client  *client.Client
	poller  *poller.Poller
	writer  *output.Writer
	metrics Metrics
	logger  *slog.Logger
	runID   string
}

// New creates a harness. metrics may be nil.
func New(cfg *config.Config, c *client.Client, metrics Metrics) *Harness {
	return &Harness{
		cfg:    cfg,
		client: c,
		poller: poller.New(c, poller.Config{
			Interval:    cfg.PollInterval,
			MaxAttempts: cfg.PollMaxAttempts,
		}),
		writer:  output.NewWriter(cfg.OutputDir),
		metrics: metrics,
		logger:  slog.With("component", "harness"),
		runID:   uuid.NewString(),
	}
}

// RunID identifies this harness instance in logs and reports.
func (h *Harness) RunID() string {
	return h.runID
}

// CheckHealth probes the health endpoint once.
func (h *Harness) CheckHealth(ctx context.Context) error {
	if err := h.client.Health(ctx); err != nil {
		h.logger.Error("Health check failed", "error", err)
		return err
	}
	h.logger.Info("Health check passed")
	return nil
}

// WaitReady polls the health endpoint with exponential backoff until the
// service answers or the deadline passes.
func (h *Harness) WaitReady(ctx context.Context, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = h.client.Health(ctx)
		if lastErr == nil {
			h.logger.Info("Service ready", "attempts", attempt)
			return nil
		}
		h.logger.Debug("Service not ready", "attempt", attempt, "error", lastErr)

		if err := backoff.Wait(ctx, backoff.Exponential(attempt, nil)); err != nil {
			return fmt.Errorf("service not ready after %d attempts: %w", attempt, lastErr)
		}
	}
}

// RunSync executes one synchronous lifecycle for a sequence index.
func (h *Harness) RunSync(ctx context.Context, seq int) error {
	num := payload.InvoiceNumber(seq)
	logger := h.logger.With("mode", ModeSync, "invoice", num)

	artifact, err := h.client.Generate(ctx, client.Submission{
		Template: "invoice",
		Data:     payload.Invoice(seq),
	})
	if err != nil {
		return fmt.Errorf("sync generation %s: %w", num, err)
	}

	path, err := h.writer.Write(output.SyncName(num), artifact)
	if err != nil {
		return fmt.Errorf("sync generation %s: %w", num, err)
	}

	logger.Info("Sync generation succeeded", "bytes", len(artifact), "path", path)
	return nil
}

// RunAsync executes one full asynchronous lifecycle for a sequence index:
// submit, poll to a terminal state, then download exactly once. A download
// failure converts the outcome to failure even though polling succeeded.
func (h *Harness) RunAsync(ctx context.Context, seq int) error {
	num := payload.InvoiceNumber(seq)
	logger := h.logger.With("mode", ModeAsync, "invoice", num)

	handle, err := h.client.Submit(ctx, client.Submission{
		Template: "invoice",
		Data:     payload.Invoice(seq),
	})
	if err != nil {
		return fmt.Errorf("async generation %s: %w", num, err)
	}
	logger = logger.With("jobId", handle.JobID)
	logger.Debug("Job created")

	outcome, err := h.poller.Run(ctx, handle)
	if h.metrics != nil {
		h.metrics.RecordPollAttempts(ctx, outcome.Attempts, outcome.State.String())
	}
	if err != nil {
		return fmt.Errorf("async generation %s: %w", num, err)
	}

	artifact, err := h.client.Download(ctx, handle)
	if err != nil {
		return fmt.Errorf("async generation %s: %w", num, err)
	}

	path, err := h.writer.Write(output.AsyncName(num), artifact)
	if err != nil {
		return fmt.Errorf("async generation %s: %w", num, err)
	}

	logger.Info("Async generation succeeded", "attempts", outcome.Attempts, "bytes", len(artifact), "path", path)
	return nil
}

// lifecycle returns the load task for a mode.
func (h *Harness) lifecycle(mode Mode) loadrunner.Task {
	if mode == ModeAsync {
		return h.RunAsync
	}
	return h.RunSync
}

// RunLoad executes count lifecycles with the given concurrency and returns
// the aggregate statistics.
func (h *Harness) RunLoad(ctx context.Context, count, concurrency int, mode Mode) loadrunner.Stats {
	h.logger.Info("Starting load test",
		"run_id", h.runID,
		"count", count,
		"concurrency", concurrency,
		"mode", mode,
	)

	agg := loadrunner.NewAggregator()
	runner := loadrunner.New(h.metrics)
	runner.Run(ctx, count, concurrency, h.lifecycle(mode), agg)
	stats := agg.Finalize()

	h.logger.Info("Load test completed",
		"run_id", h.runID,
		"total", stats.Total,
		"success", stats.Success,
		"failed", stats.Failed,
		"duration", stats.Elapsed.Round(time.Millisecond),
		"rate", fmt.Sprintf("%.2f/s", stats.Throughput),
		"concurrency", concurrency,
	)
	return stats
}

// RunAll runs the full sequence: health, one sync test, one async test.
// A health failure aborts the sequence; a down service makes the rest
// meaningless.
func (h *Harness) RunAll(ctx context.Context) error {
	if err := h.CheckHealth(ctx); err != nil {
		return fmt.Errorf("health check failed, is the service running? %w", err)
	}
	if err := h.RunSync(ctx, 1); err != nil {
		return err
	}
	if err := h.RunAsync(ctx, 1); err != nil {
		return err
	}
	h.logger.Info("All tests passed")
	return nil
}
