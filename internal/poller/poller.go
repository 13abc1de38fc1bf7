// Package poller drives one job through its status state machine.
package poller

import (
	"context"
	"time"

	"pdfbench/internal/apperrors"
	"pdfbench/internal/client"
)

// State is the poller's view of a job lifecycle.
type State int

const (
	Created   State = iota // handle obtained, no fetch yet
	Polling                // waiting between status fetches
	Completed              // terminal, artifact ready for download
	Failed                 // terminal, service reported failure or a fetch error
	TimedOut               // terminal, attempt bound exhausted
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transition.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == TimedOut
}

// StatusFetcher is the single client operation the poller needs.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, h client.Handle) (client.Status, error)
}

// Config for a poller. Zero values use the service defaults.
type Config struct {
	Interval    time.Duration // wait before each fetch, default 1s
	MaxAttempts int           // fetches before TimedOut, default 30

	// Sleep waits between attempts. Tests inject a no-op to drive the state
	// machine without wall-clock delay. Default honors ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 30
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}

// Outcome is the terminal result of polling one job.
type Outcome struct {
	State    State
	Attempts int           // status fetches performed
	Status   client.Status // last status observed, zero if none succeeded
}

// Poller polls jobs until a terminal state.
type Poller struct {
	fetcher StatusFetcher
	config  Config
}

// New creates a poller around a status fetcher.
func New(fetcher StatusFetcher, cfg Config) *Poller {
	return &Poller{fetcher: fetcher, config: cfg.withDefaults()}
}

// Run polls the job until it completes, fails, or the attempt bound is
// exhausted. A status-fetch error is terminal immediately: a flaky status
// endpoint fails the lifecycle rather than looping under load.
func (p *Poller) Run(ctx context.Context, h client.Handle) (Outcome, error) {
	outcome := Outcome{State: Created}

	for outcome.Attempts < p.config.MaxAttempts {
		outcome.State = Polling
		if err := p.config.Sleep(ctx, p.config.Interval); err != nil {
			outcome.State = Failed
			return outcome, apperrors.Transport("poller.wait", err)
		}

		status, err := p.fetcher.FetchStatus(ctx, h)
		outcome.Attempts++
		if err != nil {
			outcome.State = Failed
			return outcome, err
		}
		outcome.Status = status

		switch status.State {
		case client.StateCompleted:
			outcome.State = Completed
			return outcome, nil
		case client.StateFailed:
			outcome.State = Failed
			return outcome, apperrors.JobFailed(h.JobID, status.ErrorMessage())
		case client.StateQueued, client.StateProcessing:
			// stay in Polling
		default:
			outcome.State = Failed
			return outcome, apperrors.StatusFetch(0, []byte("unknown status "+status.State))
		}
	}

	outcome.State = TimedOut
	return outcome, apperrors.Timeout(h.JobID, outcome.Attempts)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
