// Package jobs turns the current selection into a conversion job on the server.
package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

// ValidationError is returned before any network call when the request cannot be built.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrEmptySelection is returned when nothing is selected.
var ErrEmptySelection = &ValidationError{Field: "paths", Reason: "empty selection"}

// Creator creates jobs on the server. *api.Client implements it.
type Creator interface {
	CreateJob(ctx context.Context, req models.ConversionRequest) (models.JobHandle, error)
}

// Resetter clears progress display state left over from a previous job.
type Resetter interface {
	Reset()
}

// Stopper stops tracking of any job currently being followed.
type Stopper interface {
	StopAll()
}

// Submitter builds and sends conversion requests from a selection.
type Submitter struct {
	creator  Creator
	store    *selection.Store
	display  Resetter
	tracking Stopper
	eventBus *events.EventBus
	logger   *logging.Logger
}

// NewSubmitter creates a Submitter. display, tracking and eventBus may be nil.
func NewSubmitter(creator Creator, store *selection.Store, display Resetter, tracking Stopper, eventBus *events.EventBus, logger *logging.Logger) *Submitter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Submitter{
		creator:  creator,
		store:    store,
		display:  display,
		tracking: tracking,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ParseSampleRate validates an optional sample-rate override. Empty means "keep the source rate".
func ParseSampleRate(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, &ValidationError{Field: "sample_rate", Reason: fmt.Sprintf("%q is not a positive integer", s)}
	}
	return &n, nil
}

// BuildRequest snapshots the selection into a request without sending it.
func (s *Submitter) BuildRequest(sampleRate string) (models.ConversionRequest, error) {
	paths := s.store.Snapshot()
	if len(paths) == 0 {
		return models.ConversionRequest{}, ErrEmptySelection
	}
	rate, err := ParseSampleRate(sampleRate)
	if err != nil {
		return models.ConversionRequest{}, err
	}
	return models.ConversionRequest{Paths: paths, SampleRate: rate}, nil
}

// Submit sends the current selection as one job. On success any previously
// tracked job is stopped and the display is reset before the handle is returned.
// Failures are a *ValidationError (nothing sent) or an *api.SubmissionError.
func (s *Submitter) Submit(ctx context.Context, sampleRate string) (models.JobHandle, error) {
	req, err := s.BuildRequest(sampleRate)
	if err != nil {
		return "", err
	}

	handle, err := s.creator.CreateJob(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Int("paths", len(req.Paths)).Msg("conversion request failed")
		return "", err
	}

	s.Started(handle, len(req.Paths))
	return handle, nil
}

// Started performs the post-submission steps for a job created elsewhere
// (the interactive browser creates jobs asynchronously).
func (s *Submitter) Started(handle models.JobHandle, paths int) {
	if s.tracking != nil {
		s.tracking.StopAll()
	}
	if s.display != nil {
		s.display.Reset()
	}

	s.logger.Info().Str("job_id", handle.String()).Int("paths", paths).Msg("job submitted")
	s.eventBus.Publish(&events.JobEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventJobSubmitted, Time: time.Now()},
		JobID:     handle.String(),
		Paths:     paths,
	})
}
