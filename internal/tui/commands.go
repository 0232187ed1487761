package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/navigator"
)

// listedMsg carries the result of one directory listing.
type listedMsg struct {
	path    string
	entries []models.DirectoryEntry
	err     error
}

// submittedMsg carries the result of a job-creation request.
type submittedMsg struct {
	handle models.JobHandle
	paths  int
	err    error
}

// statusMsg carries the result of one status fetch. gen identifies the
// submission it belongs to, since the server may hand out a handle again.
type statusMsg struct {
	handle models.JobHandle
	gen    int
	snap   *models.StatusSnapshot
	err    error
}

// pollMsg fires when the next status fetch for handle is due.
type pollMsg struct {
	handle models.JobHandle
	gen    int
}

func listCmd(ctx context.Context, lister navigator.Lister, path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := lister.ListDirectory(ctx, path)
		return listedMsg{path: path, entries: entries, err: err}
	}
}

func createCmd(ctx context.Context, client Client, req models.ConversionRequest) tea.Cmd {
	return func() tea.Msg {
		handle, err := client.CreateJob(ctx, req)
		return submittedMsg{handle: handle, paths: len(req.Paths), err: err}
	}
}

func fetchCmd(ctx context.Context, client Client, handle models.JobHandle, gen int) tea.Cmd {
	return func() tea.Msg {
		snap, err := client.GetJobStatus(ctx, handle)
		return statusMsg{handle: handle, gen: gen, snap: snap, err: err}
	}
}

func pollAfter(d time.Duration, handle models.JobHandle, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pollMsg{handle: handle, gen: gen}
	})
}
