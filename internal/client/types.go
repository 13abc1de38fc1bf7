package client

import "time"

// Submission is a request to generate one document.
// Immutable once constructed; owned by the lifecycle that creates it.
type Submission struct {
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Handle identifies a submitted job.
type Handle struct {
	JobID     string
	CreatedAt time.Time
}

// Status is the service-reported state of a job.
type Status struct {
	JobID string       `json:"job_id"`
	State string       `json:"status"`
	Error *StatusError `json:"error,omitempty"`
}

// StatusError carries the failure detail for a failed job.
type StatusError struct {
	Message string `json:"message"`
}

// ErrorMessage returns the failure message, or "" when not failed.
func (s Status) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return s.Error.Message
}

// Terminal reports whether no further state transition will occur.
func (s Status) Terminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}

// State constants
const (
	StateQueued     = "queued"
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// submitResponse is the body of a 202 from POST /api/v1/jobs.
type submitResponse struct {
	JobID string `json:"job_id"`
}
