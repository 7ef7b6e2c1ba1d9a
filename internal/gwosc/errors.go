package gwosc

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoData means no archive file intersects the requested interval.
	ErrNoData = errors.New("gwosc: no strain data for the requested interval")
	// ErrNoRun means the interval lies outside every configured observing
	// run, or the run has no dataset at the requested sample rate.
	ErrNoRun = errors.New("gwosc: no observing run covers the requested interval")
	// ErrInvalidDescriptor rejects malformed load requests.
	ErrInvalidDescriptor = errors.New("gwosc: invalid data descriptor")
	// ErrMalformed reports an unparseable archive response.
	ErrMalformed = errors.New("gwosc: malformed archive response")
)

// APIError represents an HTTP error status from the archive.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gwosc archive error %d: %s (%s)", e.StatusCode, e.Message, e.URL)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
