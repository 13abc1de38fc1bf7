// Package loadrunner executes many document lifecycles under a bounded
// worker pool and aggregates their outcomes.
package loadrunner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task runs one lifecycle for a sequence index.
type Task func(ctx context.Context, seq int) error

// Result is the terminal outcome of one lifecycle.
type Result struct {
	Index    int
	Success  bool
	Duration time.Duration
	Err      error
}

// ResultRecorder receives each result as it is produced.
// Implementations must be safe for concurrent calls.
type ResultRecorder interface {
	Record(Result)
}

// MetricsRecorder is an optional interface for recording lifecycle metrics.
type MetricsRecorder interface {
	RecordLifecycleStarted(ctx context.Context)
	RecordLifecycleFinished(ctx context.Context, success bool, durationSeconds float64)
}

// Runner dispatches lifecycle tasks to a fixed-size worker pool.
type Runner struct {
	metrics MetricsRecorder
	logger  *slog.Logger
}

// New creates a runner. metrics may be nil.
func New(metrics MetricsRecorder) *Runner {
	return &Runner{
		metrics: metrics,
		logger:  slog.With("component", "loadrunner"),
	}
}

// Run executes count lifecycles with at most concurrency in flight.
// Sequence indexes run from 1 to count. Every task yields exactly one
// Result; a task error or panic never affects its siblings. Results are
// reported to recorder as they arrive and returned in completion order.
func (r *Runner) Run(ctx context.Context, count, concurrency int, task Task, recorder ResultRecorder) []Result {
	if count <= 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > count {
		concurrency = count
	}

	tasks := make(chan int)
	results := make(chan Result)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for range concurrency {
		go func() {
			defer wg.Done()
			for seq := range tasks {
				results <- r.runOne(ctx, seq, task)
			}
		}()
	}

	go func() {
		for seq := 1; seq <= count; seq++ {
			tasks <- seq
		}
		close(tasks)
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, count)
	for res := range results {
		if recorder != nil {
			recorder.Record(res)
		}
		collected = append(collected, res)
	}
	return collected
}

// runOne executes a single task, converting errors and panics to a Result.
func (r *Runner) runOne(ctx context.Context, seq int, task Task) (res Result) {
	start := time.Now()
	res = Result{Index: seq}

	defer func() {
		if p := recover(); p != nil {
			res.Success = false
			res.Err = fmt.Errorf("lifecycle %d panicked: %v", seq, p)
			res.Duration = time.Since(start)
			r.finish(ctx, res)
		}
	}()

	if r.metrics != nil {
		r.metrics.RecordLifecycleStarted(ctx)
	}

	err := task(ctx, seq)
	res.Success = err == nil
	res.Err = err
	res.Duration = time.Since(start)
	r.finish(ctx, res)
	return res
}

func (r *Runner) finish(ctx context.Context, res Result) {
	if r.metrics != nil {
		r.metrics.RecordLifecycleFinished(ctx, res.Success, res.Duration.Seconds())
	}
	if res.Err != nil {
		r.logger.Warn("Lifecycle failed", "index", res.Index, "duration", res.Duration, "error", res.Err)
	} else {
		r.logger.Debug("Lifecycle finished", "index", res.Index, "duration", res.Duration)
	}
}
