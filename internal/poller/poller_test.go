package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"pdfbench/internal/apperrors"
	"pdfbench/internal/client"
)

// scriptFetcher returns one scripted response per fetch, in order.
type scriptFetcher struct {
	states  []string
	errs    []error
	fetches int
}

func (f *scriptFetcher) FetchStatus(_ context.Context, h client.Handle) (client.Status, error) {
	i := f.fetches
	f.fetches++
	if i < len(f.errs) && f.errs[i] != nil {
		return client.Status{}, f.errs[i]
	}
	state := f.states[len(f.states)-1]
	if i < len(f.states) {
		state = f.states[i]
	}
	status := client.Status{JobID: h.JobID, State: state}
	if state == client.StateFailed {
		status.Error = &client.StatusError{Message: "render error"}
	}
	return status, nil
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newTestPoller(f StatusFetcher, maxAttempts int) *Poller {
	return New(f, Config{Interval: time.Millisecond, MaxAttempts: maxAttempts, Sleep: noSleep})
}

func TestRun_CompletesOnThirdAttempt(t *testing.T) {
	f := &scriptFetcher{states: []string{"queued", "processing", "completed"}}
	p := newTestPoller(f, 30)

	outcome, err := p.Run(context.Background(), client.Handle{JobID: "job-1"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.State != Completed {
		t.Errorf("expected Completed, got %v", outcome.State)
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}
	if f.fetches != 3 {
		t.Errorf("expected 3 status fetches, got %d", f.fetches)
	}
}

func TestRun_ImmediateFailure(t *testing.T) {
	f := &scriptFetcher{states: []string{"failed"}}
	p := newTestPoller(f, 30)

	outcome, err := p.Run(context.Background(), client.Handle{JobID: "job-1"})
	if !errors.Is(err, apperrors.ErrJobFailed) {
		t.Fatalf("expected job failure, got %v", err)
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %v", outcome.State)
	}
	if outcome.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", outcome.Attempts)
	}
	if msg := outcome.Status.ErrorMessage(); msg != "render error" {
		t.Errorf("expected service error message, got %q", msg)
	}
}

func TestRun_TimesOutAtAttemptBound(t *testing.T) {
	f := &scriptFetcher{states: []string{"processing"}}
	p := newTestPoller(f, 30)

	outcome, err := p.Run(context.Background(), client.Handle{JobID: "job-1"})
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if errors.Is(err, apperrors.ErrJobFailed) {
		t.Error("timeout must be distinct from job failure")
	}
	if outcome.State != TimedOut {
		t.Errorf("expected TimedOut, got %v", outcome.State)
	}
	if f.fetches != 30 {
		t.Errorf("expected exactly 30 fetches, got %d", f.fetches)
	}
}

func TestRun_HaltsImmediatelyOnTerminalStatus(t *testing.T) {
	f := &scriptFetcher{states: []string{"completed", "processing"}}
	p := newTestPoller(f, 30)

	if _, err := p.Run(context.Background(), client.Handle{JobID: "job-1"}); err != nil {
		t.Fatal(err)
	}
	if f.fetches != 1 {
		t.Errorf("expected polling to halt after terminal status, got %d fetches", f.fetches)
	}
}

func TestRun_FetchErrorIsTerminal(t *testing.T) {
	f := &scriptFetcher{
		states: []string{"queued", "queued"},
		errs:   []error{nil, apperrors.StatusFetch(503, []byte("bad gateway"))},
	}
	p := newTestPoller(f, 30)

	outcome, err := p.Run(context.Background(), client.Handle{JobID: "job-1"})
	if !errors.Is(err, apperrors.ErrStatusFetch) {
		t.Fatalf("expected status fetch error, got %v", err)
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %v", outcome.State)
	}
	if f.fetches != 2 {
		t.Errorf("expected no retries after a fetch error, got %d fetches", f.fetches)
	}
}

func TestRun_UnknownStatusIsTerminal(t *testing.T) {
	f := &scriptFetcher{states: []string{"exploded"}}
	p := newTestPoller(f, 30)

	outcome, err := p.Run(context.Background(), client.Handle{JobID: "job-1"})
	if !errors.Is(err, apperrors.ErrStatusFetch) {
		t.Fatalf("expected status fetch error, got %v", err)
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %v", outcome.State)
	}
}

func TestRun_SleepBeforeEachFetch(t *testing.T) {
	var sleeps int
	f := &scriptFetcher{states: []string{"queued", "completed"}}
	p := New(f, Config{
		Interval:    time.Millisecond,
		MaxAttempts: 30,
		Sleep: func(_ context.Context, d time.Duration) error {
			if d != time.Millisecond {
				t.Errorf("expected configured interval, got %v", d)
			}
			sleeps++
			return nil
		},
	})

	if _, err := p.Run(context.Background(), client.Handle{JobID: "job-1"}); err != nil {
		t.Fatal(err)
	}
	if sleeps != 2 {
		t.Errorf("expected one sleep per attempt, got %d", sleeps)
	}
}

func TestRun_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &scriptFetcher{states: []string{"queued"}}
	p := New(f, Config{Interval: time.Hour, MaxAttempts: 30})

	outcome, err := p.Run(ctx, client.Handle{JobID: "job-1"})
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected transport classification, got %v", err)
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %v", outcome.State)
	}
	if f.fetches != 0 {
		t.Errorf("expected no fetches after cancellation, got %d", f.fetches)
	}
}

func TestStateStrings(t *testing.T) {
	for state, want := range map[State]string{
		Created: "created", Polling: "polling", Completed: "completed",
		Failed: "failed", TimedOut: "timed-out",
	} {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
	if Polling.Terminal() {
		t.Error("Polling must not be terminal")
	}
	for _, s := range []State{Completed, Failed, TimedOut} {
		if !s.Terminal() {
			t.Errorf("%v must be terminal", s)
		}
	}
}
