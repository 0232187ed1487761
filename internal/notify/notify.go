// Package notify sends desktop notifications when a conversion job ends.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/present"
)

const appTitle = "flac2alac"

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	send   func(title, message string) error
	alert  func(title, message string) error

	mu       sync.RWMutex
	enabled  bool
	complete bool
	failed   bool
}

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// ShowJobComplete shows a notification when a job finishes.
	ShowJobComplete bool

	// ShowJobFailed shows an alert when tracking a job halts.
	ShowJobFailed bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		ShowJobComplete: true,
		ShowJobFailed:   true,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Notifier{
		logger:   logger,
		send:     func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:    func(title, message string) error { return beeep.Alert(title, message, "") },
		enabled:  cfg.Enabled,
		complete: cfg.ShowJobComplete,
		failed:   cfg.ShowJobFailed,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// JobComplete sends a notification for a finished job.
func (n *Notifier) JobComplete(jobID string, successes, failures int) {
	n.mu.RLock()
	ok := n.enabled && n.complete
	n.mu.RUnlock()
	if !ok {
		return
	}

	message := fmt.Sprintf("Job %s: %d converted", jobID, successes)
	if failures > 0 {
		message += fmt.Sprintf(", %d failed", failures)
	}

	if err := n.send(present.NoticeComplete, message); err != nil {
		n.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to send job complete notification")
	}
}

// JobFailed sends an alert when tracking of a job stops on an error.
func (n *Notifier) JobFailed(jobID string, err error) {
	n.mu.RLock()
	ok := n.enabled && n.failed
	n.mu.RUnlock()
	if !ok {
		return
	}

	message := fmt.Sprintf("Job %s: %s", jobID, present.NoticeFor(err))
	if alertErr := n.alert(appTitle, message); alertErr != nil {
		// Fall back to regular notify
		if sendErr := n.send(appTitle, message); sendErr != nil {
			n.logger.Error().Err(sendErr).Str("job_id", jobID).Msg("Failed to send job failed notification")
		}
	}
}

// Notice forwards a warning or error notice as a notification.
func (n *Notifier) Notice(level events.LogLevel, message string) {
	if !n.IsEnabled() || level < events.WarnLevel {
		return
	}
	if err := n.send(appTitle, truncate(message, 100)); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send notice notification")
	}
}

// Watch delivers notifications for job and notice events from bus until ctx
// is done. It returns once the subscriptions are in place.
func (n *Notifier) Watch(ctx context.Context, bus *events.EventBus) {
	if bus == nil {
		return
	}
	finished := bus.Subscribe(events.EventJobFinished)
	halted := bus.Subscribe(events.EventJobHalted)
	notices := bus.Subscribe(events.EventNotice)

	go func() {
		defer bus.Unsubscribe(events.EventJobFinished, finished)
		defer bus.Unsubscribe(events.EventJobHalted, halted)
		defer bus.Unsubscribe(events.EventNotice, notices)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-finished:
				if !ok {
					return
				}
				if ce, ok := ev.(*events.CompleteEvent); ok {
					n.JobComplete(ce.JobID, ce.Successes, ce.Failures)
				}
			case ev, ok := <-halted:
				if !ok {
					return
				}
				if ee, ok := ev.(*events.ErrorEvent); ok {
					n.JobFailed(ee.JobID, ee.Error)
				}
			case ev, ok := <-notices:
				if !ok {
					return
				}
				if ne, ok := ev.(*events.NoticeEvent); ok {
					n.Notice(ne.Level, ne.Message)
				}
			}
		}
	}()
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
