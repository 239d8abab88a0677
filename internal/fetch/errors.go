package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the server answers 404 Not Found.
	// It is never retried.
	ErrNotFound = errors.New("page not found")

	// ErrMaxRetries is returned when every attempt failed.
	ErrMaxRetries = errors.New("request failed, max retries exceeded")
)

// FetchError reports a URL that could not be retrieved.
//
//nolint:revive // fetch.FetchError reads better at call sites than fetch.Error
type FetchError struct {
	// URL is the page that failed.
	URL string

	// Attempts is the number of requests made.
	Attempts int

	// Err is the underlying cause. It wraps ErrNotFound or ErrMaxRetries.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (attempts: %d): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
