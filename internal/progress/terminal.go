// Package progress renders job progress and request spinners on the terminal.
// Bars are only drawn when the output is a TTY; otherwise plain lines are written.
package progress

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
