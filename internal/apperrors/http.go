package apperrors

import (
	"errors"
	"fmt"
)

// maxBodySnippet limits how much of a response body is kept on an error.
const maxBodySnippet = 512

// Submission creates an error for a non-202 response to a job submission.
func Submission(statusCode int, body []byte) error {
	return httpError(ErrSubmission, "client.submit", statusCode, body)
}

// StatusFetch creates an error for a non-200 response to a status check.
func StatusFetch(statusCode int, body []byte) error {
	return httpError(ErrStatusFetch, "client.fetchStatus", statusCode, body)
}

// Download creates an error for a non-200 response to an artifact download.
func Download(statusCode int, body []byte) error {
	return httpError(ErrDownload, "client.download", statusCode, body)
}

// Generate creates an error for a non-200 response to synchronous generation.
// Classified as a submission failure: the request never produced an artifact.
func Generate(statusCode int, body []byte) error {
	return httpError(ErrSubmission, "client.generate", statusCode, body)
}

func httpError(sentinel error, op string, statusCode int, body []byte) error {
	snippet := string(body)
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return &Error{
		Sentinel:   sentinel,
		Message:    fmt.Sprintf("%s: HTTP %d: %s", op, statusCode, snippet),
		Op:         op,
		StatusCode: statusCode,
		Body:       snippet,
	}
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
