package poller

import (
	"errors"
	"testing"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/models"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker("9", Options{Interval: 2 * time.Second, Now: fixedClock(epoch.Add(50 * time.Second))})
	if tr.State() != StatePolling {
		t.Fatalf("initial state = %s", tr.State())
	}

	step := tr.Observe(&models.StatusSnapshot{Status: "queued"}, nil)
	if step.Kind != StepContinue || step.Delay != 2*time.Second {
		t.Fatalf("queued step = %+v", step)
	}
	if step.View.HasProgress {
		t.Error("queued job with no total should have no progress")
	}

	running := &models.StatusSnapshot{
		Status:    "running",
		Processed: 10,
		Total:     100,
		StartTime: &models.Timestamp{Time: epoch},
	}
	step = tr.Observe(running, nil)
	if step.Kind != StepContinue {
		t.Fatalf("running step = %+v", step)
	}
	if step.View.Percent != 10 || step.View.ETAString() != "00:07:30" {
		t.Errorf("running view = %.1f%% eta %s", step.View.Percent, step.View.ETAString())
	}
	if tr.Latest() != running {
		t.Error("Latest() does not hold the running snapshot")
	}

	step = tr.Observe(&models.StatusSnapshot{Status: "finished", Processed: 12, Total: 10, Errors: []string{"a", "b"}}, nil)
	if step.Kind != StepDone {
		t.Fatalf("finished step = %+v", step)
	}
	if step.View.Percent != 100 || step.View.ETAString() != "00:00:00" {
		t.Errorf("final view = %.1f%% eta %s", step.View.Percent, step.View.ETAString())
	}
	if step.Summary.Successes != 10 || step.Summary.Failures != 2 {
		t.Errorf("summary = %+v", step.Summary)
	}
	if tr.State() != StateDone {
		t.Errorf("state = %s, want done", tr.State())
	}

	if step := tr.Observe(running, nil); step.Kind != StepIgnore {
		t.Errorf("result after done should be ignored, got %+v", step)
	}
}

func TestTrackerHaltsOnFirstFailure(t *testing.T) {
	tr := NewTracker("3", Options{})

	step := tr.Observe(nil, errors.New("connection refused"))
	if step.Kind != StepHalt {
		t.Fatalf("step = %+v, want halt", step)
	}
	var pollErr *api.PollError
	if !errors.As(step.Err, &pollErr) || pollErr.JobID != "3" {
		t.Errorf("error = %v, want *api.PollError for job 3", step.Err)
	}
	if tr.State() != StateHalted || tr.Err() == nil {
		t.Errorf("state = %s err = %v", tr.State(), tr.Err())
	}
	if step := tr.Observe(&models.StatusSnapshot{Status: "running"}, nil); step.Kind != StepIgnore {
		t.Error("halted tracker accepted another result")
	}
}

func TestTrackerKeepsExistingPollError(t *testing.T) {
	tr := NewTracker("3", Options{})
	orig := &api.PollError{JobID: "3", Err: &api.StatusError{Code: 500}}

	step := tr.Observe(nil, orig)
	if step.Err != orig {
		t.Errorf("PollError was re-wrapped: %v", step.Err)
	}
}

func TestTrackerBackoffPolicy(t *testing.T) {
	policy := BackoffOnFailure{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	tr := NewTracker("5", Options{Policy: policy})
	transient := &api.StatusError{Code: 503}

	for i := 1; i <= 2; i++ {
		step := tr.Observe(nil, transient)
		if step.Kind != StepRetry {
			t.Fatalf("failure %d: step = %+v, want retry", i, step)
		}
		if step.Delay < 0 || step.Delay >= policy.MaxDelay {
			t.Errorf("failure %d: delay %v out of range", i, step.Delay)
		}
	}

	// A success resets the consecutive failure count
	if step := tr.Observe(&models.StatusSnapshot{Status: "running", Total: 4}, nil); step.Kind != StepContinue {
		t.Fatalf("step = %+v", step)
	}
	for i := 1; i <= 2; i++ {
		if step := tr.Observe(nil, transient); step.Kind != StepRetry {
			t.Fatalf("after reset, failure %d: step = %+v", i, step)
		}
	}

	if step := tr.Observe(nil, transient); step.Kind != StepHalt {
		t.Fatalf("third consecutive failure: step = %+v, want halt", step)
	}
}

func TestTrackerBackoffHaltsOnFatalError(t *testing.T) {
	tr := NewTracker("5", Options{Policy: NewBackoffOnFailure(5)})

	if step := tr.Observe(nil, &api.StatusError{Code: 404}); step.Kind != StepHalt {
		t.Errorf("404 should halt, got %+v", step)
	}
}

func TestTrackerStop(t *testing.T) {
	tr := NewTracker("1", Options{})
	tr.Stop()
	if tr.State() != StateStopped {
		t.Fatalf("state = %s", tr.State())
	}
	if step := tr.Observe(&models.StatusSnapshot{Status: "running"}, nil); step.Kind != StepIgnore {
		t.Error("stopped tracker accepted a result")
	}

	done := NewTracker("2", Options{})
	done.Observe(&models.StatusSnapshot{Status: "finished"}, nil)
	done.Stop()
	if done.State() != StateDone {
		t.Errorf("Stop changed a finished tracker to %s", done.State())
	}
}

func TestPolicyFor(t *testing.T) {
	if _, ok := PolicyFor(0).(HaltOnFailure); !ok {
		t.Error("PolicyFor(0) should halt")
	}
	b, ok := PolicyFor(3).(BackoffOnFailure)
	if !ok || b.MaxRetries != 3 {
		t.Errorf("PolicyFor(3) = %#v", PolicyFor(3))
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StatePolling: "polling",
		StateDone:    "done",
		StateHalted:  "halted",
		StateStopped: "stopped",
		State(42):    "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
