package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Err converts a skipped or not-found result into a sentinel error for
// callers that report outcomes, such as the JSON API. Persistence failures
// are not errors here; see SaveErr.
func (r Result) Err() error {
	switch r.Status {
	case StatusSkipped:
		return ErrInvalidInput
	case StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}
