package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/estimate"
)

// barScale is the bar's total; percent is mapped onto it with one decimal of resolution.
const barScale = 1000

// JobBar shows the progress of one job: a bar with percent, processed count and ETA.
type JobBar struct {
	progress   *mpb.Progress
	bar        *mpb.Bar
	out        io.Writer
	isTerminal bool
	jobID      string

	mu        sync.Mutex
	label     string
	view      estimate.ProgressView
	processed int
	total     int
	lastLine  string
	done      bool
}

// NewJobBar creates a bar for jobID writing to out. When out is not a terminal,
// progress is reported as plain lines whenever the rendered text changes.
func NewJobBar(out *os.File, jobID string) *JobBar {
	isTerminal := IsTerminal(out)
	jb := &JobBar{
		out:        out,
		isTerminal: isTerminal,
		jobID:      jobID,
		label:      constants.StatusQueued,
	}

	if !isTerminal {
		return jb
	}

	enableANSI(out)
	jb.progress = mpb.New(
		mpb.WithOutput(out),
		mpb.WithRefreshRate(constants.ProgressBarRefreshRate),
		mpb.WithWidth(constants.ProgressBarWidth),
	)
	jb.bar = jb.progress.New(barScale,
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(s decor.Statistics) string {
				jb.mu.Lock()
				defer jb.mu.Unlock()
				return fmt.Sprintf("job %s %-8s", jb.jobID, jb.label)
			}, decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				jb.mu.Lock()
				defer jb.mu.Unlock()
				return jb.statsLocked()
			}, decor.WCSyncSpace),
		),
	)
	return jb
}

// statsLocked renders "42.0%  21/50  ETA 00:01:10". Caller holds mu.
func (jb *JobBar) statsLocked() string {
	if !jb.view.HasProgress {
		return fmt.Sprintf("  --.-%%  ETA %s", jb.view.ETAString())
	}
	return fmt.Sprintf("%6.1f%%  %d/%d  ETA %s", jb.view.Percent, jb.processed, jb.total, jb.view.ETAString())
}

// Reset returns the bar to 0% with an unknown ETA.
func (jb *JobBar) Reset() {
	jb.Set(constants.StatusQueued, estimate.Unknown(), 0, 0)
}

// Set updates the bar from the latest snapshot.
func (jb *JobBar) Set(status string, view estimate.ProgressView, processed, total int) {
	jb.mu.Lock()
	jb.label = status
	jb.view = view
	jb.processed = processed
	jb.total = total
	line := fmt.Sprintf("job %s %s %s", jb.jobID, status, jb.statsLocked())
	changed := line != jb.lastLine
	jb.lastLine = line
	done := jb.done
	jb.mu.Unlock()

	if done {
		return
	}
	if jb.bar != nil {
		jb.bar.SetCurrent(int64(view.Fraction() * barScale))
		return
	}
	if changed {
		fmt.Fprintln(jb.out, line)
	}
}

// Complete fills the bar and stops rendering.
func (jb *JobBar) Complete() {
	if !jb.finish() {
		return
	}
	if jb.bar != nil {
		jb.bar.SetTotal(barScale, true)
	}
}

// Abort stops rendering and leaves the bar where it was.
func (jb *JobBar) Abort() {
	if !jb.finish() {
		return
	}
	if jb.bar != nil {
		jb.bar.Abort(false)
	}
}

func (jb *JobBar) finish() bool {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	if jb.done {
		return false
	}
	jb.done = true
	return true
}

// Writer returns an io.Writer that prints above the bar while it is active.
func (jb *JobBar) Writer() io.Writer {
	if jb.progress != nil {
		return jb.progress
	}
	return jb.out
}

// Wait blocks until the bar has been completed or aborted and the final frame is drawn.
func (jb *JobBar) Wait() {
	if jb.progress != nil {
		jb.progress.Wait()
	}
}

// IsTerminal returns whether the bar is drawn (true) or reported as lines (false)
func (jb *JobBar) IsTerminal() bool {
	return jb.isTerminal
}
