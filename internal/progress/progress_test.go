package progress

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/raspberrycoulis/flac2alac/internal/estimate"
)

func TestJobBarPlainLines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	jb := NewJobBar(f, "4")
	if jb.IsTerminal() {
		t.Fatal("a regular file is not a terminal")
	}

	jb.Reset()
	jb.Set("running", estimate.ProgressView{HasProgress: true, Percent: 10, ETAKnown: true, ETA: 450e9}, 10, 100)
	jb.Set("running", estimate.ProgressView{HasProgress: true, Percent: 10, ETAKnown: true, ETA: 450e9}, 10, 100)
	jb.Complete()
	jb.Set("finished", estimate.Final(), 100, 100)
	jb.Wait()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 distinct lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "ETA --:--:--") {
		t.Errorf("reset line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "10.0%") || !strings.Contains(lines[1], "10/100") || !strings.Contains(lines[1], "ETA 00:07:30") {
		t.Errorf("progress line = %q", lines[1])
	}
}

func TestSpinnerWritesToNonTerminalSilently(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s := StartSpinner(f, "Listing")
	s.Stop()

	info, _ := f.Stat()
	if info.Size() != 0 {
		t.Errorf("spinner wrote %d bytes to a non-terminal", info.Size())
	}
}

func TestSpinnerBarRendersDescription(t *testing.T) {
	var buf bytes.Buffer
	bar := newSpinnerBar(&buf, "Listing /A")
	_ = bar.Add(1)
	_ = bar.Finish()

	if !strings.Contains(buf.String(), "Listing /A") {
		t.Errorf("expected description in output, got %q", buf.String())
	}
}
