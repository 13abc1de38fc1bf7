package loadrunner

import (
	"sync"
	"time"
)

// Stats summarizes a completed load run.
type Stats struct {
	Total      int
	Success    int
	Failed     int
	Elapsed    time.Duration
	Throughput float64 // lifecycles per second of wall time
}

// Aggregator accumulates results into running totals. Safe for concurrent
// Record calls from pool workers; Finalize is meaningful only after the
// runner has confirmed all dispatched tasks reported.
type Aggregator struct {
	mu      sync.Mutex
	start   time.Time
	total   int
	success int
	failed  int
}

// NewAggregator creates an aggregator; wall time is measured from this call.
func NewAggregator() *Aggregator {
	return &Aggregator{start: time.Now()}
}

// Record folds one result into the totals.
func (a *Aggregator) Record(res Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	if res.Success {
		a.success++
	} else {
		a.failed++
	}
}

// Finalize snapshots the totals and derives throughput.
func (a *Aggregator) Finalize() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	elapsed := time.Since(a.start)
	stats := Stats{
		Total:   a.total,
		Success: a.success,
		Failed:  a.failed,
		Elapsed: elapsed,
	}
	if elapsed > 0 {
		stats.Throughput = float64(a.total) / elapsed.Seconds()
	}
	return stats
}
