// Package poller follows a conversion job until it finishes.
//
// Tracker is the state machine for one job; it performs no I/O and is driven
// either by Poller (one goroutine per job) or by the interactive browser's
// event loop.
package poller

import (
	"errors"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/present"
)

// State of a tracked job.
type State int

const (
	// StatePolling means a fetch is outstanding or scheduled.
	StatePolling State = iota
	// StateDone means the server reported the job finished.
	StateDone
	// StateHalted means the failure policy gave up.
	StateHalted
	// StateStopped means tracking was cancelled by the client.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateHalted:
		return "halted"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StepKind tells the driver what to do after a fetch result was observed.
type StepKind int

const (
	// StepContinue: show the progress and fetch again after Delay.
	StepContinue StepKind = iota
	// StepRetry: the fetch failed but the policy allows another after Delay.
	StepRetry
	// StepDone: show the final view and summary, then stop.
	StepDone
	// StepHalt: report Err and stop.
	StepHalt
	// StepIgnore: the tracker is no longer polling; the result is stale.
	StepIgnore
)

// Step is the outcome of observing one fetch result.
type Step struct {
	Kind    StepKind
	Delay   time.Duration
	View    estimate.ProgressView
	Summary present.Summary
	Err     error
}

// Options configure polling.
type Options struct {
	// Interval between successful fetches. Defaults to one second.
	Interval time.Duration
	// Policy applied to failed fetches. Defaults to HaltOnFailure.
	Policy FailurePolicy
	// Now is the clock used for ETA estimation. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = constants.DefaultPollInterval
	}
	if o.Policy == nil {
		o.Policy = HaltOnFailure{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Tracker holds the polling state of one job. It is not safe for concurrent use.
type Tracker struct {
	handle   models.JobHandle
	opts     Options
	state    State
	failures int
	latest   *models.StatusSnapshot
	err      error
}

// NewTracker starts tracking handle in StatePolling. The caller issues the first fetch.
func NewTracker(handle models.JobHandle, opts Options) *Tracker {
	return &Tracker{
		handle: handle,
		opts:   opts.withDefaults(),
		state:  StatePolling,
	}
}

// Handle returns the tracked job.
func (t *Tracker) Handle() models.JobHandle { return t.handle }

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Latest returns the most recent successful snapshot, or nil.
func (t *Tracker) Latest() *models.StatusSnapshot { return t.latest }

// Err returns the failure that halted tracking, if any.
func (t *Tracker) Err() error { return t.err }

// Interval returns the delay between successful fetches.
func (t *Tracker) Interval() time.Duration { return t.opts.Interval }

// Observe feeds the result of one fetch into the machine.
// Exactly one of snap and err is expected to be set.
func (t *Tracker) Observe(snap *models.StatusSnapshot, err error) Step {
	if t.state != StatePolling {
		return Step{Kind: StepIgnore}
	}

	if err != nil {
		var pollErr *api.PollError
		if !errors.As(err, &pollErr) {
			err = &api.PollError{JobID: t.handle.String(), Err: err}
		}
		t.failures++
		delay, retry := t.opts.Policy.Next(t.failures, err)
		if !retry {
			t.state = StateHalted
			t.err = err
			return Step{Kind: StepHalt, Err: err}
		}
		return Step{Kind: StepRetry, Delay: delay, Err: err}
	}

	t.failures = 0
	t.latest = snap

	if snap.IsFinished() {
		t.state = StateDone
		return Step{
			Kind:    StepDone,
			View:    estimate.Final(),
			Summary: present.Summarize(snap),
		}
	}

	return Step{
		Kind:  StepContinue,
		Delay: t.opts.Interval,
		View:  estimate.Estimate(snap, t.opts.Now()),
	}
}

// Stop cancels tracking. It has no effect once the job is done or halted.
func (t *Tracker) Stop() {
	if t.state == StatePolling {
		t.state = StateStopped
	}
}
