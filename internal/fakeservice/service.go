// Package fakeservice provides an in-memory stand-in for the PDF generation
// service, used by client, harness, and end-to-end tests. Jobs advance
// through a configurable status script, one step per status fetch.
package fakeservice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
)

// DefaultArtifact is the artifact body served when none is configured.
var DefaultArtifact = []byte("%PDF-1.4\nfake artifact\n%%EOF\n")

// Options configures service behavior.
type Options struct {
	APIKey   string   // required X-API-Key value, empty = no auth
	Script   []string // statuses returned by successive fetches; last repeats
	Artifact []byte   // bytes served by generate/download

	// Failure injection: non-zero values force the given HTTP status.
	FailHealth   int
	FailGenerate int
	FailSubmit   int
	FailStatus   int
	FailDownload int

	// FailedMessage is the error.message reported for "failed" statuses.
	FailedMessage string
}

// Service is the fake PDF service. Use Handler() with httptest.NewServer.
type Service struct {
	opts Options

	mu   sync.Mutex
	jobs map[string]*jobState
	seq  int

	// Call counters, readable from concurrent tests.
	HealthCalls   atomic.Int64
	GenerateCalls atomic.Int64
	SubmitCalls   atomic.Int64
	StatusCalls   atomic.Int64
	DownloadCalls atomic.Int64
}

type jobState struct {
	script  []string
	fetches int
}

// New creates a fake service.
func New(opts Options) *Service {
	if len(opts.Script) == 0 {
		opts.Script = []string{"queued", "processing", "completed"}
	}
	if opts.Artifact == nil {
		opts.Artifact = DefaultArtifact
	}
	if opts.FailedMessage == "" {
		opts.FailedMessage = "template rendering failed"
	}
	return &Service{
		opts: opts,
		jobs: make(map[string]*jobState),
	}
}

// Handler returns the HTTP handler implementing the service API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /api/v1/generate", s.auth(s.handleGenerate))
	mux.Handle("POST /api/v1/jobs", s.auth(s.handleSubmit))
	mux.Handle("GET /api/v1/jobs/{jobId}", s.auth(s.handleStatus))
	mux.Handle("GET /api/v1/jobs/{jobId}/download", s.auth(s.handleDownload))

	return mux
}

// FetchCount returns how many status fetches a job has received.
func (s *Service) FetchCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		return j.fetches
	}
	return 0
}

func (s *Service) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" && r.Header.Get("X-API-Key") != s.opts.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.HealthCalls.Add(1)
	if s.opts.FailHealth != 0 {
		writeError(w, s.opts.FailHealth, "unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Service) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.GenerateCalls.Add(1)
	if s.opts.FailGenerate != 0 {
		writeError(w, s.opts.FailGenerate, "generation failed")
		return
	}
	if !s.decodeSubmission(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(s.opts.Artifact)
}

func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.SubmitCalls.Add(1)
	if s.opts.FailSubmit != 0 {
		writeError(w, s.opts.FailSubmit, "submission rejected")
		return
	}
	if !s.decodeSubmission(w, r) {
		return
	}

	s.mu.Lock()
	s.seq++
	jobID := fmt.Sprintf("job-%04d", s.seq)
	s.jobs[jobID] = &jobState{script: s.opts.Script}
	s.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": "queued"})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.StatusCalls.Add(1)
	if s.opts.FailStatus != 0 {
		writeError(w, s.opts.FailStatus, "status unavailable")
		return
	}

	jobID := r.PathValue("jobId")
	s.mu.Lock()
	j, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	idx := j.fetches
	if idx >= len(j.script) {
		idx = len(j.script) - 1
	}
	state := j.script[idx]
	j.fetches++
	s.mu.Unlock()

	body := map[string]any{"job_id": jobID, "status": state}
	if state == "failed" {
		body["error"] = map[string]string{"message": s.opts.FailedMessage}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.DownloadCalls.Add(1)
	if s.opts.FailDownload != 0 {
		writeError(w, s.opts.FailDownload, "artifact unavailable")
		return
	}

	jobID := r.PathValue("jobId")
	s.mu.Lock()
	_, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(s.opts.Artifact)
}

func (s *Service) decodeSubmission(w http.ResponseWriter, r *http.Request) bool {
	var req struct {
		Template string          `json:"template"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if req.Template == "" {
		writeError(w, http.StatusBadRequest, "template is required")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": message}})
}
