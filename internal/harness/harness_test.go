package harness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pdfbench/internal/apperrors"
	"pdfbench/internal/client"
	"pdfbench/internal/config"
	"pdfbench/internal/fakeservice"
)

func newTestHarness(t *testing.T, opts fakeservice.Options, maxAttempts int) (*Harness, *fakeservice.Service, string) {
	t.Helper()
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	svc := fakeservice.New(opts)
	server := httptest.NewServer(svc.Handler())
	t.Cleanup(server.Close)

	outDir := t.TempDir()
	cfg := &config.Config{
		BaseURL:         server.URL,
		APIKey:          "test-key",
		OutputDir:       outDir,
		HTTPTimeout:     5 * time.Second,
		PollInterval:    time.Millisecond,
		PollMaxAttempts: maxAttempts,
	}
	c := client.New(cfg, nil)
	return New(cfg, c, nil), svc, outDir
}

func TestRunSync(t *testing.T) {
	h, svc, outDir := newTestHarness(t, fakeservice.Options{Artifact: []byte("%PDF sync")}, 30)

	if err := h.RunSync(context.Background(), 1); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if svc.GenerateCalls.Load() != 1 {
		t.Errorf("expected 1 generate call, got %d", svc.GenerateCalls.Load())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "sync-invoice-0001.pdf"))
	if err != nil {
		t.Fatalf("expected artifact written: %v", err)
	}
	if string(data) != "%PDF sync" {
		t.Errorf("unexpected artifact content %q", data)
	}
}

func TestRunSync_ServiceError(t *testing.T) {
	h, _, outDir := newTestHarness(t, fakeservice.Options{FailGenerate: http.StatusInternalServerError}, 30)

	err := h.RunSync(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrSubmission) {
		t.Fatalf("expected submission error, got %v", err)
	}

	if entries, _ := os.ReadDir(outDir); len(entries) != 0 {
		t.Error("no artifact must be written on failure")
	}
}

func TestRunAsync(t *testing.T) {
	h, svc, outDir := newTestHarness(t, fakeservice.Options{
		Script:   []string{"queued", "processing", "completed"},
		Artifact: []byte("%PDF async"),
	}, 30)

	if err := h.RunAsync(context.Background(), 2); err != nil {
		t.Fatalf("RunAsync failed: %v", err)
	}

	if svc.StatusCalls.Load() != 3 {
		t.Errorf("expected 3 status fetches, got %d", svc.StatusCalls.Load())
	}
	if svc.DownloadCalls.Load() != 1 {
		t.Errorf("expected exactly 1 download, got %d", svc.DownloadCalls.Load())
	}

	if _, err := os.Stat(filepath.Join(outDir, "async-invoice-0002.pdf")); err != nil {
		t.Errorf("expected artifact written: %v", err)
	}
}

func TestRunAsync_JobFailedSkipsDownload(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{
		Script:        []string{"failed"},
		FailedMessage: "bad template",
	}, 30)

	err := h.RunAsync(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrJobFailed) {
		t.Fatalf("expected job failure, got %v", err)
	}
	if svc.DownloadCalls.Load() != 0 {
		t.Errorf("expected zero download calls, got %d", svc.DownloadCalls.Load())
	}
}

func TestRunAsync_Timeout(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{
		Script: []string{"processing"},
	}, 5)

	err := h.RunAsync(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if svc.StatusCalls.Load() != 5 {
		t.Errorf("expected attempt bound respected, got %d fetches", svc.StatusCalls.Load())
	}
	if svc.DownloadCalls.Load() != 0 {
		t.Errorf("expected zero download calls after timeout, got %d", svc.DownloadCalls.Load())
	}
}

func TestRunAsync_DownloadFailureIsFailure(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{
		Script:       []string{"completed"},
		FailDownload: http.StatusInternalServerError,
	}, 30)

	err := h.RunAsync(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrDownload) {
		t.Fatalf("expected download error despite successful polling, got %v", err)
	}
	if svc.DownloadCalls.Load() != 1 {
		t.Errorf("expected exactly 1 download attempt, got %d", svc.DownloadCalls.Load())
	}
}

func TestRunAll(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{}, 30)

	if err := h.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if svc.HealthCalls.Load() != 1 || svc.GenerateCalls.Load() != 1 || svc.SubmitCalls.Load() != 1 {
		t.Errorf("expected health+sync+async sequence, got health=%d generate=%d submit=%d",
			svc.HealthCalls.Load(), svc.GenerateCalls.Load(), svc.SubmitCalls.Load())
	}
}

func TestRunAll_HealthFailureAborts(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{FailHealth: http.StatusServiceUnavailable}, 30)

	if err := h.RunAll(context.Background()); err == nil {
		t.Fatal("expected health failure to abort the run")
	}
	if svc.GenerateCalls.Load() != 0 || svc.SubmitCalls.Load() != 0 {
		t.Error("no load may be generated after a failed health check")
	}
}

func TestRunLoad_Sync(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{}, 30)

	stats := h.RunLoad(context.Background(), 50, 5, ModeSync)

	if stats.Total != 50 {
		t.Errorf("expected 50 results, got %d", stats.Total)
	}
	if stats.Success+stats.Failed != stats.Total {
		t.Errorf("success %d + failed %d != total %d", stats.Success, stats.Failed, stats.Total)
	}
	if stats.Success != 50 {
		t.Errorf("expected all successes, got %d", stats.Success)
	}
	if svc.GenerateCalls.Load() != 50 {
		t.Errorf("expected 50 generate calls, got %d", svc.GenerateCalls.Load())
	}
	if stats.Throughput <= 0 {
		t.Errorf("expected positive throughput, got %f", stats.Throughput)
	}
}

func TestRunLoad_AsyncWithFailures(t *testing.T) {
	h, _, _ := newTestHarness(t, fakeservice.Options{
		Script: []string{"queued", "failed"},
	}, 30)

	stats := h.RunLoad(context.Background(), 10, 3, ModeAsync)

	if stats.Total != 10 {
		t.Errorf("expected 10 results, got %d", stats.Total)
	}
	if stats.Failed != 10 {
		t.Errorf("expected all lifecycles to fail, got %d failures", stats.Failed)
	}
}

func TestRunLoad_IsolatesLifecycleFailures(t *testing.T) {
	h, svc, _ := newTestHarness(t, fakeservice.Options{
		Script: []string{"completed"},
	}, 30)

	stats := h.RunLoad(context.Background(), 20, 4, ModeAsync)

	if stats.Total != 20 {
		t.Errorf("expected 20 results, got %d", stats.Total)
	}
	if stats.Success != 20 {
		t.Errorf("expected 20 successes, got %d", stats.Success)
	}
	if svc.DownloadCalls.Load() != 20 {
		t.Errorf("expected one download per lifecycle, got %d", svc.DownloadCalls.Load())
	}
}

func TestWaitReady(t *testing.T) {
	h, _, _ := newTestHarness(t, fakeservice.Options{}, 30)

	if err := h.WaitReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("WaitReady failed: %v", err)
	}
}

func TestWaitReady_DeadlineExceeded(t *testing.T) {
	h, _, _ := newTestHarness(t, fakeservice.Options{FailHealth: http.StatusServiceUnavailable}, 30)

	if err := h.WaitReady(context.Background(), 150*time.Millisecond); err == nil {
		t.Fatal("expected error when the service never becomes ready")
	}
}

func TestRunID(t *testing.T) {
	h, _, _ := newTestHarness(t, fakeservice.Options{}, 30)
	if h.RunID() == "" {
		t.Error("expected non-empty run id")
	}
}
