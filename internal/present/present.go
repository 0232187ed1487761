// Package present turns status snapshots into what the user sees: the job log,
// progress and the final success/failure breakdown.
package present

import (
	"errors"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/jobs"
	"github.com/raspberrycoulis/flac2alac/internal/models"
)

// Notice texts shown to the user.
const (
	NoticeListingFailed    = "Error loading directory"
	NoticeEmptySelection   = "Select files or directories"
	NoticeSubmissionFailed = "Conversion request failed"
	NoticePollFailed       = "Failed to fetch status"
	NoticeComplete         = "Conversion complete!"
)

// Presenter displays the progress of one job at a time.
// The log carried by each snapshot replaces the previous one; it is never merged.
type Presenter interface {
	// Reset clears the log, sets progress to 0% with an unknown ETA and removes any summary.
	Reset()
	// Update shows a non-final snapshot.
	Update(snap *models.StatusSnapshot, view estimate.ProgressView)
	// Finish shows the final snapshot and its summary.
	Finish(snap *models.StatusSnapshot, view estimate.ProgressView, summary Summary)
	// Fail reports that tracking stopped because of err.
	Fail(err error)
}

// Summary is the outcome of a finished job.
type Summary struct {
	Successes int      `json:"successes" yaml:"successes"`
	Failures  int      `json:"failures" yaml:"failures"`
	Errors    []string `json:"errors" yaml:"errors"`
}

// Summarize computes the outcome of snap. Successes is processed minus the
// number of errors and goes negative when the server reports more errors than
// processed items.
func Summarize(snap *models.StatusSnapshot) Summary {
	errs := make([]string, len(snap.Errors))
	copy(errs, snap.Errors)
	return Summary{
		Successes: snap.Processed - len(errs),
		Failures:  len(errs),
		Errors:    errs,
	}
}

// Inconsistent reports whether the server counted more errors than processed items.
func (s Summary) Inconsistent() bool {
	return s.Successes < 0
}

// NoticeFor maps an error to the short text shown to the user.
func NoticeFor(err error) string {
	var validation *jobs.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jobs.ErrEmptySelection):
		return NoticeEmptySelection
	case errors.As(err, &validation):
		return validation.Error()
	case api.IsSubmissionError(err):
		return NoticeSubmissionFailed
	case api.IsPollError(err):
		return NoticePollFailed
	case api.IsListingError(err):
		return NoticeListingFailed
	default:
		return err.Error()
	}
}
