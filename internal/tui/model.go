// Package tui is the interactive directory browser: navigate the server's
// library, build a selection, submit it and watch the job to completion.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/jobs"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/navigator"
	"github.com/raspberrycoulis/flac2alac/internal/poller"
	"github.com/raspberrycoulis/flac2alac/internal/present"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

// Client is the subset of the API client the browser needs.
type Client interface {
	navigator.Lister
	jobs.Creator
	poller.Fetcher
}

// Options configure the browser.
type Options struct {
	// StartPath is the directory listed first; "" is the root.
	StartPath string
	// SampleRate preselects an output rate; 0 keeps the server default.
	SampleRate int
	// ShowHidden includes dot-entries in listings.
	ShowHidden bool
	// Poll configures status polling of submitted jobs.
	Poll poller.Options
	// ServerURL is shown in the header.
	ServerURL string
}

// Model is the bubbletea model of the browser. All state is mutated from Update only.
type Model struct {
	ctx       context.Context
	client    Client
	eventBus  *events.EventBus
	logger    *logging.Logger
	opts      Options
	store     *selection.Store
	nav       *navigator.Navigator
	submitter *jobs.Submitter
	rates     []int

	width  int
	height int
	cursor int
	offset int
	rate   int

	listing    bool
	submitting bool
	loaded     bool

	status      string
	statusLevel events.LogLevel

	// Job tracking
	jobCtx    context.Context
	jobCancel context.CancelFunc
	tracker   *poller.Tracker
	jobGen    int
	fetching  bool
	snap      *models.StatusSnapshot
	view      estimate.ProgressView
	log       present.LogView
	summary   *present.Summary

	spinner spinner.Model
	bar     progress.Model
	logs    viewport.Model
}

// New creates the browser model. ctx bounds every request it makes.
func New(ctx context.Context, client Client, eventBus *events.EventBus, logger *logging.Logger, opts Options) *Model {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	store := selection.NewStore(eventBus)
	nav := navigator.New(client, store, eventBus)
	nav.SetShowHidden(opts.ShowHidden)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = mutedStyle

	m := &Model{
		ctx:      ctx,
		client:   client,
		eventBus: eventBus,
		logger:   logger,
		opts:     opts,
		store:    store,
		nav:      nav,
		rates:    append([]int(nil), constants.SampleRates...),
		view:     estimate.Unknown(),
		spinner:  sp,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		logs: viewport.New(80, 6),
	}
	m.rate = m.rateIndex(opts.SampleRate)
	m.submitter = jobs.NewSubmitter(client, store, m, m, eventBus, logger)
	return m
}

// rateIndex finds rate among the selectable rates, adding it when it is not a standard one.
func (m *Model) rateIndex(rate int) int {
	for i, r := range m.rates {
		if r == rate {
			return i
		}
	}
	m.rates = append(m.rates, rate)
	return len(m.rates) - 1
}

// Run starts the browser on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, client Client, eventBus *events.EventBus, logger *logging.Logger, opts Options) error {
	m := New(ctx, client, eventBus, logger, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.StopAll()
	return err
}

// Init lists the start directory.
func (m *Model) Init() tea.Cmd {
	m.listing = true
	return tea.Batch(m.spinner.Tick, listCmd(m.ctx, m.nav.Lister(), m.opts.StartPath))
}

// Reset clears the job display: empty log, 0% with unknown ETA and no summary.
func (m *Model) Reset() {
	m.snap = nil
	m.view = estimate.Unknown()
	m.log.Clear()
	m.logs.SetContent("")
	m.summary = nil
}

// StopAll stops tracking the current job and abandons its in-flight fetch.
func (m *Model) StopAll() {
	if m.tracker != nil {
		m.tracker.Stop()
	}
	if m.jobCancel != nil {
		m.jobCancel()
		m.jobCancel = nil
	}
	m.fetching = false
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listedMsg:
		return m.handleListed(msg)

	case submittedMsg:
		return m.handleSubmitted(msg)

	case statusMsg:
		return m.handleStatus(msg)

	case pollMsg:
		if !m.current(msg.handle, msg.gen) || m.tracker.State() != poller.StatePolling || m.fetching {
			return m, nil
		}
		m.fetching = true
		return m, fetchCmd(m.jobCtx, m.client, msg.handle, msg.gen)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.nav.Rows()

	switch msg.String() {
	case "ctrl+c", "q":
		m.StopAll()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = max(len(rows)-1, 0)

	case " ", "space":
		if m.cursor < len(rows) {
			m.nav.Toggle(rows[m.cursor].DirectoryEntry)
		}

	case "enter", "right", "l":
		if m.cursor < len(rows) && rows[m.cursor].IsDir {
			return m, m.open(rows[m.cursor].Path)
		}

	case "backspace", "left", "h":
		return m, m.open(navigator.Parent(m.nav.Path()))

	case "r":
		return m, m.open(m.nav.Path())

	case ".":
		m.opts.ShowHidden = !m.opts.ShowHidden
		m.nav.SetShowHidden(m.opts.ShowHidden)
		m.clampCursor()

	case "s":
		m.rate = (m.rate + 1) % len(m.rates)

	case "c":
		return m, m.submit()
	}

	m.scrollToCursor()
	return m, nil
}

func (m *Model) open(path string) tea.Cmd {
	if m.listing {
		return nil
	}
	m.listing = true
	return listCmd(m.ctx, m.nav.Lister(), path)
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	req, err := m.submitter.BuildRequest(m.sampleRateString())
	if err != nil {
		m.notify(events.WarnLevel, present.NoticeFor(err))
		return nil
	}
	m.submitting = true
	m.setStatus(events.InfoLevel, fmt.Sprintf("Submitting %d item(s)...", len(req.Paths)))
	return createCmd(m.ctx, m.client, req)
}

func (m *Model) sampleRateString() string {
	if r := m.rates[m.rate]; r > 0 {
		return strconv.Itoa(r)
	}
	return ""
}

func (m *Model) handleListed(msg listedMsg) (tea.Model, tea.Cmd) {
	m.listing = false
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Str("path", msg.path).Msg("listing failed")
		m.notify(events.ErrorLevel, present.NoticeListingFailed)
		return m, nil
	}

	changed := msg.path != m.nav.Path() || !m.loaded
	m.nav.Apply(msg.path, msg.entries)
	m.loaded = true
	if changed {
		m.cursor = 0
		m.offset = 0
	}
	m.clampCursor()
	m.scrollToCursor()
	return m, nil
}

func (m *Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Int("paths", msg.paths).Msg("conversion request failed")
		m.notify(events.ErrorLevel, present.NoticeSubmissionFailed)
		return m, nil
	}

	m.submitter.Started(msg.handle, msg.paths)

	m.jobCtx, m.jobCancel = context.WithCancel(m.ctx)
	m.tracker = poller.NewTracker(msg.handle, m.opts.Poll)
	m.jobGen++
	m.fetching = true
	m.setStatus(events.InfoLevel, fmt.Sprintf("Job %s submitted", msg.handle))
	return m, fetchCmd(m.jobCtx, m.client, msg.handle, m.jobGen)
}

// current reports whether a result for handle from submission gen belongs to the tracked job.
func (m *Model) current(handle models.JobHandle, gen int) bool {
	return m.tracker != nil && handle == m.tracker.Handle() && gen == m.jobGen
}

func (m *Model) handleStatus(msg statusMsg) (tea.Model, tea.Cmd) {
	if !m.current(msg.handle, msg.gen) {
		return m, nil
	}
	m.fetching = false

	step := m.tracker.Observe(msg.snap, msg.err)
	jobID := msg.handle.String()

	switch step.Kind {
	case poller.StepContinue:
		m.show(msg.snap, step.View)
		m.eventBus.PublishProgress(jobID, msg.snap.Status, msg.snap.Processed, msg.snap.Total, step.View.Percent, step.View.ETAString())
		return m, pollAfter(step.Delay, msg.handle, msg.gen)

	case poller.StepRetry:
		m.logger.Warn().Err(step.Err).Str("job_id", jobID).Dur("retry_in", step.Delay).Msg("status fetch failed, retrying")
		m.setStatus(events.WarnLevel, present.NoticePollFailed+", retrying")
		return m, pollAfter(step.Delay, msg.handle, msg.gen)

	case poller.StepDone:
		m.show(msg.snap, step.View)
		summary := step.Summary
		m.summary = &summary
		if summary.Inconsistent() {
			m.logger.Warn().Str("job_id", jobID).Int("processed", msg.snap.Processed).Int("errors", summary.Failures).
				Msg("server reported more errors than processed items")
		}
		m.logger.Info().Str("job_id", jobID).Int("successes", summary.Successes).Int("failures", summary.Failures).Msg("job finished")
		m.setStatus(events.InfoLevel, present.NoticeComplete)
		m.eventBus.PublishComplete(jobID, summary.Successes, summary.Failures)

	case poller.StepHalt:
		m.logger.Error().Err(step.Err).Str("job_id", jobID).Msg("polling halted")
		m.setStatus(events.ErrorLevel, present.NoticePollFailed)
		m.eventBus.PublishHalted(jobID, step.Err)
	}
	return m, nil
}

// show replaces the displayed log and progress with snap.
func (m *Model) show(snap *models.StatusSnapshot, view estimate.ProgressView) {
	m.snap = snap
	m.view = view
	m.log.Replace(snap.Log)
	m.logs.SetContent(strings.Join(m.log.Lines(), "\n"))
	m.logs.GotoBottom()
}

func (m *Model) setStatus(level events.LogLevel, text string) {
	m.status = text
	m.statusLevel = level
}

// notify shows text on the status line and publishes it as a notice.
func (m *Model) notify(level events.LogLevel, text string) {
	m.setStatus(level, text)
	m.eventBus.PublishNotice(level, text)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.bar.Width = max(min(width-40, 60), 10)
	m.logs.Width = max(width-4, 20)
	m.logs.Height = m.logHeight()
	m.scrollToCursor()
}

func (m *Model) clampCursor() {
	n := len(m.nav.Rows())
	if m.cursor > n-1 {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) scrollToCursor() {
	visible := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}
