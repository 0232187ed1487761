package present

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/jobs"
	"github.com/raspberrycoulis/flac2alac/internal/models"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		errs      []string
		want      Summary
	}{
		{"mixed", 12, []string{"a", "b"}, Summary{Successes: 10, Failures: 2, Errors: []string{"a", "b"}}},
		{"clean", 5, nil, Summary{Successes: 5, Failures: 0, Errors: []string{}}},
		{"more errors than processed", 1, []string{"a", "b", "c"}, Summary{Successes: -2, Failures: 3, Errors: []string{"a", "b", "c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(&models.StatusSnapshot{Status: "finished", Processed: tt.processed, Errors: tt.errs})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if got.Inconsistent() != (tt.want.Successes < 0) {
				t.Errorf("Inconsistent() = %v", got.Inconsistent())
			}
		})
	}
}

func TestLogViewReplace(t *testing.T) {
	var v LogView

	appended, rewritten := v.Replace([]string{"a", "b"})
	if rewritten || !reflect.DeepEqual(appended, []string{"a", "b"}) {
		t.Fatalf("first replace = %v, %v", appended, rewritten)
	}

	appended, rewritten = v.Replace([]string{"a", "b", "c"})
	if rewritten || !reflect.DeepEqual(appended, []string{"c"}) {
		t.Fatalf("extension = %v, %v", appended, rewritten)
	}

	appended, rewritten = v.Replace([]string{"x"})
	if !rewritten || !reflect.DeepEqual(appended, []string{"x"}) {
		t.Fatalf("divergent log = %v, %v", appended, rewritten)
	}
	if !reflect.DeepEqual(v.Lines(), []string{"x"}) {
		t.Errorf("log not replaced: %v", v.Lines())
	}

	v.Clear()
	if len(v.Lines()) != 0 {
		t.Error("Clear left lines behind")
	}
}

func TestLogViewReplaceCopies(t *testing.T) {
	var v LogView
	src := []string{"a"}
	v.Replace(src)
	src[0] = "changed"
	if v.Lines()[0] != "a" {
		t.Error("LogView aliases the caller's slice")
	}
}

func TestNoticeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"empty selection", jobs.ErrEmptySelection, NoticeEmptySelection},
		{"bad rate", &jobs.ValidationError{Field: "sample_rate", Reason: "bad"}, "invalid sample_rate: bad"},
		{"submission", &api.SubmissionError{Paths: 1, Err: errors.New("boom")}, NoticeSubmissionFailed},
		{"poll", fmt.Errorf("poll: %w", &api.PollError{JobID: "1", Err: errors.New("boom")}), NoticePollFailed},
		{"listing", &api.ListingError{Path: "A", Err: errors.New("boom")}, NoticeListingFailed},
		{"other", errors.New("other"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoticeFor(tt.err); got != tt.want {
				t.Errorf("NoticeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, Summary{Successes: 10, Failures: 2, Errors: []string{"x.flac: bad header", "y.flac: timeout"}}); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"with 2 error(s)", "Succeeded", "10", "Failed", "x.flac: bad header", "y.flac: timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "x.flac") > strings.Index(out, "y.flac") {
		t.Error("errors are not printed in order")
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteSummaryReportsWriteError(t *testing.T) {
	errClosed := errors.New("pipe closed")
	for _, summary := range []Summary{
		{Successes: 3},
		{Successes: 1, Failures: 1, Errors: []string{"a.flac: bad header"}},
	} {
		if err := WriteSummary(failingWriter{errClosed}, summary); !errors.Is(err, errClosed) {
			t.Errorf("WriteSummary(%+v) error = %v, want %v", summary, err, errClosed)
		}
	}
}

func TestTerminalLifecycle(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	term := NewTerminal(f, nil)
	term.Attach("7")
	term.Reset()

	snap := &models.StatusSnapshot{Status: "running", Processed: 1, Total: 2, Log: []string{"Converting a.flac"}}
	term.Update(snap, estimate.ProgressView{HasProgress: true, Percent: 50})

	final := &models.StatusSnapshot{Status: "finished", Processed: 2, Total: 2, Log: []string{"Converting a.flac", "Converting b.flac"}}
	term.Finish(final, estimate.Final(), Summarize(final))

	data, _ := os.ReadFile(f.Name())
	out := string(data)
	if strings.Count(out, "Converting a.flac") != 1 {
		t.Errorf("log line repeated:\n%s", out)
	}
	for _, want := range []string{"Converting b.flac", "job 7", "100.0%", "ETA 00:00:00", NoticeComplete} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTerminalFail(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	term := NewTerminal(f, nil)
	term.Fail(&api.PollError{JobID: "3", Err: errors.New("connection refused")})

	data, _ := os.ReadFile(f.Name())
	if !strings.Contains(string(data), NoticePollFailed) {
		t.Errorf("failure not reported: %q", data)
	}
}
