package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/present"
)

// ErrNotTracked is returned by Wait for a handle that was never started or has been stopped.
var ErrNotTracked = errors.New("job is not being tracked")

// Fetcher retrieves job status. *api.Client implements it.
type Fetcher interface {
	GetJobStatus(ctx context.Context, handle models.JobHandle) (*models.StatusSnapshot, error)
}

type task struct {
	tracker *Tracker
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// Poller runs one polling loop per tracked job. Each loop is strictly
// sequential: fetch, present, then arm the next timer.
type Poller struct {
	fetcher  Fetcher
	opts     Options
	eventBus *events.EventBus
	logger   *logging.Logger

	mu    sync.Mutex
	tasks map[models.JobHandle]*task
}

// New creates a Poller. eventBus and logger may be nil.
func New(fetcher Fetcher, opts Options, eventBus *events.EventBus, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Poller{
		fetcher:  fetcher,
		opts:     opts.withDefaults(),
		eventBus: eventBus,
		logger:   logger,
		tasks:    make(map[models.JobHandle]*task),
	}
}

// Start begins polling handle, presenting every result on presenter.
// If handle is already tracked its previous loop is stopped first.
func (p *Poller) Start(ctx context.Context, handle models.JobHandle, presenter present.Presenter) {
	p.Stop(handle)

	loopCtx, cancel := context.WithCancel(ctx)
	t := &task{
		tracker: NewTracker(handle, p.opts),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	p.mu.Lock()
	p.tasks[handle] = t
	p.mu.Unlock()

	p.logger.Debug().Str("job_id", handle.String()).Dur("interval", p.opts.Interval).Msg("polling started")
	go p.run(loopCtx, t, presenter)
}

// Stop cancels the loop for handle, aborting any in-flight fetch, and waits
// for it to exit. It reports whether the handle was tracked.
func (p *Poller) Stop(handle models.JobHandle) bool {
	p.mu.Lock()
	t, ok := p.tasks[handle]
	delete(p.tasks, handle)
	p.mu.Unlock()

	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	return true
}

// StopAll stops every tracked job.
func (p *Poller) StopAll() {
	p.mu.Lock()
	handles := make([]models.JobHandle, 0, len(p.tasks))
	for h := range p.tasks {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	for _, h := range handles {
		p.Stop(h)
	}
}

// Wait blocks until the loop for handle exits or ctx is done. It returns the
// final state and, for a halted job, the *api.PollError that halted it.
func (p *Poller) Wait(ctx context.Context, handle models.JobHandle) (State, error) {
	p.mu.Lock()
	t, ok := p.tasks[handle]
	p.mu.Unlock()

	if !ok {
		return StateStopped, ErrNotTracked
	}

	select {
	case <-t.done:
		return t.tracker.State(), t.err
	case <-ctx.Done():
		return StatePolling, ctx.Err()
	}
}

func (p *Poller) run(ctx context.Context, t *task, presenter present.Presenter) {
	defer close(t.done)
	defer t.cancel()

	handle := t.tracker.Handle()
	jobID := handle.String()
	log := p.logger.With().Str("job_id", jobID).Logger()

	for {
		snap, err := p.fetcher.GetJobStatus(ctx, handle)
		if ctx.Err() != nil {
			t.tracker.Stop()
			log.Debug().Msg("polling stopped")
			return
		}

		step := t.tracker.Observe(snap, err)
		switch step.Kind {
		case StepContinue:
			presenter.Update(snap, step.View)
			p.eventBus.PublishProgress(jobID, snap.Status, snap.Processed, snap.Total, step.View.Percent, step.View.ETAString())

		case StepRetry:
			log.Warn().Err(step.Err).Dur("retry_in", step.Delay).Msg("status fetch failed, retrying")

		case StepDone:
			presenter.Finish(snap, step.View, step.Summary)
			p.eventBus.PublishComplete(jobID, step.Summary.Successes, step.Summary.Failures)
			log.Info().
				Int("successes", step.Summary.Successes).
				Int("failures", step.Summary.Failures).
				Msg("job finished")
			return

		case StepHalt:
			t.err = step.Err
			presenter.Fail(step.Err)
			p.eventBus.PublishHalted(jobID, step.Err)
			log.Error().Err(step.Err).Msg("polling halted")
			return

		case StepIgnore:
			return
		}

		timer := time.NewTimer(step.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.tracker.Stop()
			log.Debug().Msg("polling stopped")
			return
		case <-timer.C:
		}
	}
}
