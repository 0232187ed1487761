package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/events"
)

type sent struct {
	title   string
	message string
}

type recorder struct {
	mu    sync.Mutex
	items []sent
}

func (r *recorder) record(title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, sent{title, message})
	return nil
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.items...)
}

func newRecordingNotifier(cfg *Config) (*Notifier, *recorder) {
	rec := &recorder{}
	n := NewNotifier(cfg, nil)
	n.send = rec.record
	n.alert = rec.record
	return n, rec
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled || !cfg.ShowJobComplete || !cfg.ShowJobFailed {
		t.Errorf("Expected everything enabled by default, got %+v", cfg)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 3, "..."},
		{"ÄÖÜäöü", 5, "ÄÖ..."},
		{"Björk/Homogénic", 15, "Björk/Homogénic"},
		{"Sigur Rós/Ágætis byrjun", 12, "Sigur Rós..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
		if !utf8.ValidString(result) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
		}
	}
}

func TestSetEnabled(t *testing.T) {
	n := NewNotifier(nil, nil)
	if !n.IsEnabled() {
		t.Error("Expected initially enabled")
	}
	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected disabled after SetEnabled(false)")
	}
}

func TestJobComplete(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		failures  int
		wantSent  bool
		wantInMsg string
	}{
		{"clean", DefaultConfig(), 0, true, "Job 4: 10 converted"},
		{"with failures", DefaultConfig(), 2, true, "2 failed"},
		{"disabled", &Config{Enabled: false, ShowJobComplete: true}, 0, false, ""},
		{"complete notifications off", &Config{Enabled: true, ShowJobComplete: false}, 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, rec := newRecordingNotifier(tt.cfg)
			n.JobComplete("4", 10, tt.failures)

			got := rec.all()
			if (len(got) == 1) != tt.wantSent {
				t.Fatalf("sent %d notifications, want sent=%v", len(got), tt.wantSent)
			}
			if tt.wantSent && !strings.Contains(got[0].message, tt.wantInMsg) {
				t.Errorf("message %q does not contain %q", got[0].message, tt.wantInMsg)
			}
		})
	}
}

func TestJobFailedUsesNoticeText(t *testing.T) {
	n, rec := newRecordingNotifier(nil)
	n.JobFailed("4", &api.PollError{JobID: "4", Err: errors.New("boom")})

	got := rec.all()
	if len(got) != 1 || !strings.Contains(got[0].message, "Failed to fetch status") {
		t.Errorf("notifications = %+v", got)
	}
}

func TestNoticeIgnoresInfo(t *testing.T) {
	n, rec := newRecordingNotifier(nil)
	n.Notice(events.InfoLevel, "listed")
	n.Notice(events.ErrorLevel, "Error loading directory")

	if got := rec.all(); len(got) != 1 || got[0].message != "Error loading directory" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestWatch(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	n, rec := newRecordingNotifier(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Watch(ctx, bus)

	bus.PublishComplete("9", 3, 0)
	bus.PublishHalted("10", errors.New("boom"))

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.all()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.all(); len(got) != 2 {
		t.Fatalf("notifications = %+v, want 2", got)
	}
}
