package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/navigator"
)

const helpText = "↑/↓ move • space select • enter open • ⌫ up • s rate • c convert • r reload • . hidden • q quit"

// Rows used by everything except the listing and the log.
const chromeRows = 12

func (m *Model) listHeight() int {
	if m.height <= 0 {
		return 15
	}
	return max(m.height-chromeRows-m.logHeight(), 3)
}

func (m *Model) logHeight() int {
	if m.height <= 0 {
		return 6
	}
	return max(m.height/4, 3)
}

// View renders the browser.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewRows())
	b.WriteString("\n")
	b.WriteString(m.viewSelection())
	b.WriteString("\n\n")
	b.WriteString(m.viewJob())
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m *Model) viewHeader() string {
	header := titleStyle.Render("flac2alac") + "  " + pathStyle.Render(m.nav.DisplayPath())
	if m.opts.ServerURL != "" {
		header += "  " + mutedStyle.Render(m.opts.ServerURL)
	}
	if m.listing {
		header += "  " + m.spinner.View()
	}
	return header
}

func (m *Model) viewRows() string {
	rows := m.nav.Rows()
	if len(rows) == 0 {
		if !m.loaded {
			return mutedStyle.Render("  Loading...") + "\n"
		}
		return mutedStyle.Render("  (empty)") + "\n"
	}

	end := min(m.offset+m.listHeight(), len(rows))
	var b strings.Builder
	for i := m.offset; i < end; i++ {
		b.WriteString(m.viewRow(rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	if end < len(rows) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  … %d more", len(rows)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewRow(row navigator.Row, atCursor bool) string {
	check := "[ ]"
	if row.Selected {
		check = checkStyle.Render("[x]")
	}

	var name string
	switch {
	case row.IsDir:
		name = dirStyle.Render("▸ " + row.Name + "/")
	case row.IsFLAC():
		name = flacStyle.Render("♪ " + row.Name)
	default:
		name = otherStyle.Render("  " + row.Name)
	}

	line := check + " " + name
	if atCursor {
		return cursorStyle.Render(">") + " " + line
	}
	return "  " + line
}

func (m *Model) viewSelection() string {
	rate := "server default"
	if r := m.rates[m.rate]; r > 0 {
		rate = fmt.Sprintf("%d Hz", r)
	}
	return mutedStyle.Render(fmt.Sprintf("Selected: %d   Sample rate: %s", m.store.Len(), rate))
}

func (m *Model) viewJob() string {
	if m.tracker == nil {
		return mutedStyle.Render("No job submitted")
	}

	state := "queued"
	if m.snap != nil {
		state = m.snap.Status
	}

	percent := "--.-%"
	if m.view.HasProgress {
		percent = fmt.Sprintf("%5.1f%%", m.view.Percent)
	}
	line := fmt.Sprintf("Job %s %-8s %s %s  ETA %s", m.tracker.Handle(), state, m.bar.ViewAs(m.view.Fraction()), percent, m.view.ETAString())
	if m.fetching {
		line += " " + m.spinner.View()
	}

	parts := []string{line, panelStyle.Width(max(m.width-2, 20)).Render(m.logs.View())}
	if m.summary != nil {
		parts = append(parts, m.viewSummary())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) viewSummary() string {
	s := m.summary
	line := okStyle.Render(fmt.Sprintf("✓ %d succeeded", s.Successes))
	if s.Failures > 0 {
		line += "  " + errorStyle.Render(fmt.Sprintf("✗ %d failed", s.Failures))
	}
	lines := []string{line}
	for _, e := range s.Errors {
		lines = append(lines, errorStyle.Render("  ✗ ")+e)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusLevel {
	case events.ErrorLevel:
		return errorStyle.Render(m.status)
	case events.WarnLevel:
		return warnStyle.Render(m.status)
	default:
		return okStyle.Render(m.status)
	}
}
