package present

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/progress"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// Terminal presents a job on a terminal: log lines scroll above a progress bar
// and the summary is printed as a table once the job finishes.
type Terminal struct {
	out    *os.File
	logger *logging.Logger

	mu    sync.Mutex
	jobID string
	bar   *progress.JobBar
	log   LogView
	shown bool
}

// NewTerminal creates a presenter writing to out (normally stderr).
func NewTerminal(out *os.File, logger *logging.Logger) *Terminal {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Terminal{out: out, logger: logger}
}

// Attach labels subsequent output with jobID.
func (t *Terminal) Attach(jobID models.JobHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobID = jobID.String()
}

// Reset implements Presenter.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeBarLocked(false)
	t.log.Clear()
	t.shown = false
}

// Update implements Presenter.
func (t *Terminal) Update(snap *models.StatusSnapshot, view estimate.ProgressView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bar := t.barLocked()
	t.printLogLocked(bar.Writer(), snap.Log)
	bar.Set(snap.Status, view, snap.Processed, snap.Total)
}

// Finish implements Presenter.
func (t *Terminal) Finish(snap *models.StatusSnapshot, view estimate.ProgressView, summary Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bar := t.barLocked()
	t.printLogLocked(bar.Writer(), snap.Log)
	bar.Set(snap.Status, view, snap.Processed, snap.Total)
	t.closeBarLocked(true)

	if summary.Inconsistent() {
		t.logger.Warn().
			Str("job_id", t.jobID).
			Int("processed", snap.Processed).
			Int("errors", summary.Failures).
			Msg("server reported more errors than processed items")
	}
	if err := WriteSummary(t.out, summary); err != nil {
		t.logger.Warn().Err(err).Str("job_id", t.jobID).Msg("failed to write summary")
	}
}

// Fail implements Presenter.
func (t *Terminal) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeBarLocked(false)
	failColor.Fprintf(t.out, "✗ %s", NoticeFor(err))
	fmt.Fprintf(t.out, ": %v\n", err)
}

func (t *Terminal) barLocked() *progress.JobBar {
	if t.bar == nil {
		t.bar = progress.NewJobBar(t.out, t.jobID)
		t.bar.Reset()
	}
	return t.bar
}

func (t *Terminal) closeBarLocked(complete bool) {
	if t.bar == nil {
		return
	}
	if complete {
		t.bar.Complete()
	} else {
		t.bar.Abort()
	}
	t.bar.Wait()
	t.bar = nil
}

func (t *Terminal) printLogLocked(w io.Writer, lines []string) {
	appended, rewritten := t.log.Replace(lines)
	if rewritten && t.shown {
		dimColor.Fprintln(w, "--- log restarted by server ---")
	}
	for _, line := range appended {
		fmt.Fprintln(w, line)
	}
	if len(t.log.Lines()) > 0 {
		t.shown = true
	}
}

// WriteSummary prints the outcome table followed by the itemized errors.
func WriteSummary(w io.Writer, summary Summary) error {
	var err error
	if summary.Failures == 0 {
		_, err = okColor.Fprintln(w, "✓ "+NoticeComplete)
	} else {
		_, err = warnColor.Fprintf(w, "! %s with %d error(s)\n", NoticeComplete, summary.Failures)
	}
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Result", "Files")
	if err := table.Append([]string{"Succeeded", strconv.Itoa(summary.Successes)}); err != nil {
		return fmt.Errorf("summary table: %w", err)
	}
	if err := table.Append([]string{"Failed", strconv.Itoa(summary.Failures)}); err != nil {
		return fmt.Errorf("summary table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("summary table: %w", err)
	}

	for _, e := range summary.Errors {
		if _, err := failColor.Fprint(w, "  ✗ "); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	return nil
}
