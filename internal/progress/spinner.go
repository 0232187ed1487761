package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
)

// Spinner is an indeterminate indicator shown while a single request is in flight.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// StartSpinner shows a spinner with description on out if out is a terminal.
// On anything else the spinner is silent.
func StartSpinner(out *os.File, description string) *Spinner {
	if !IsTerminal(out) {
		return &Spinner{}
	}
	return &Spinner{bar: newSpinnerBar(out, description)}
}

func newSpinnerBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(constants.UITickInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	if s.bar != nil {
		_ = s.bar.Finish()
		_ = s.bar.Clear()
	}
}
