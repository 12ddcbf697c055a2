package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimedOut is returned by WithTimeout when the deadline passes before
	// the operation finishes.
	ErrTimedOut = errors.New("request timed out")
	// ErrNoContent is returned when decoding a 204 result.
	ErrNoContent = errors.New("no content")
	// ErrInvalidResponse marks a 2xx response whose body is not JSON.
	ErrInvalidResponse = errors.New("invalid response body")
)

// APIError is a non-2xx response. Data holds the JSON-decoded body, the raw
// text when the body is not JSON, or nil when the body could not be read.
type APIError struct {
	Status int
	Data   any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.Status, http.StatusText(e.Status))
}

// RetriesExhaustedError is returned by WithRetry after the last attempt fails.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// StatusCode reports the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}
