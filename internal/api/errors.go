// Package api provides the client for the conversion server's HTTP API and its error types.
package api

import (
	"errors"
	"fmt"
)

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.Code
}

// ListingError indicates a directory could not be listed. Navigation state is left unchanged.
type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list directory %q failed: %v", "/"+e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// SubmissionError indicates the server did not accept a job. No tracking starts.
type SubmissionError struct {
	Paths int
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("conversion request failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError indicates a status fetch failed.
type PollError struct {
	JobID string
	Err   error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("status of job %s unavailable: %v", e.JobID, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// IsListingError reports whether err is or wraps a ListingError.
func IsListingError(err error) bool {
	var le *ListingError
	return errors.As(err, &le)
}

// IsSubmissionError reports whether err is or wraps a SubmissionError.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// IsPollError reports whether err is or wraps a PollError.
func IsPollError(err error) bool {
	var pe *PollError
	return errors.As(err, &pe)
}

// StatusCode returns the HTTP status carried anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
