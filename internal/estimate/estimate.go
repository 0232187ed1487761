// Package estimate derives progress percentage and time remaining from a status snapshot.
package estimate

import (
	"fmt"
	"math"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/models"
)

// ProgressView is the derived, display-ready progress of a job.
type ProgressView struct {
	// HasProgress is false while the server reports no total; Percent and ETA are then not rendered.
	HasProgress bool
	// Percent is 100*processed/total. It is not clamped for intermediate snapshots.
	Percent float64
	// ETAKnown is false while no estimate can be made; ETA is then rendered as a placeholder.
	ETAKnown bool
	// ETA is rounded to the nearest second.
	ETA time.Duration
}

// ETAString renders the ETA as HH:MM:SS, or the unknown placeholder.
func (v ProgressView) ETAString() string {
	if !v.ETAKnown {
		return constants.UnknownETA
	}
	return FormatETA(v.ETA)
}

// Fraction returns Percent as a value in [0, 1] for progress bar widgets.
func (v ProgressView) Fraction() float64 {
	if !v.HasProgress {
		return 0
	}
	return math.Max(0, math.Min(1, v.Percent/100))
}

// Unknown is the view shown before the first snapshot of a job arrives.
func Unknown() ProgressView {
	return ProgressView{}
}

// Estimate computes the progress view of a non-final snapshot at time now.
// A finished snapshot is delegated to Final.
func Estimate(snap *models.StatusSnapshot, now time.Time) ProgressView {
	if snap.IsFinished() {
		return Final()
	}
	if snap.Total <= 0 {
		return ProgressView{}
	}

	view := ProgressView{
		HasProgress: true,
		Percent:     100 * float64(snap.Processed) / float64(snap.Total),
	}

	if snap.Processed > 0 && snap.StartTime != nil {
		elapsed := now.Sub(snap.StartTime.Time).Seconds()
		rate := elapsed / float64(snap.Processed)
		remaining := float64(snap.Total - snap.Processed)
		view.ETA = time.Duration(math.Round(rate*remaining)) * time.Second
		view.ETAKnown = true
	}

	return view
}

// Final is the view of a finished job: 100% and zero time remaining, whatever the counts say.
func Final() ProgressView {
	return ProgressView{
		HasProgress: true,
		Percent:     100,
		ETAKnown:    true,
		ETA:         0,
	}
}

// FormatETA renders d as HH:MM:SS, rounding to the nearest second. Hours are not capped.
func FormatETA(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(math.Round(d.Seconds()))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
