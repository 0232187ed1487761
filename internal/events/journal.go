package events

import (
	"context"

	"github.com/raspberrycoulis/flac2alac/internal/logging"
)

// Journal writes every event published on bus to logger at debug level, so
// a --debug run or the log file shows the session's navigation, selection
// and job activity in order. The returned channel is closed once the journal
// stops, which happens when ctx is done or bus is closed.
func Journal(ctx context.Context, bus *EventBus, logger *logging.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || logger == nil {
		close(done)
		return done
	}
	all := bus.SubscribeAll()

	go func() {
		defer close(done)
		defer bus.UnsubscribeAll(all)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-all:
				if !ok {
					return
				}
				record(logger, ev)
			}
		}
	}()
	return done
}

func record(logger *logging.Logger, ev Event) {
	entry := logger.Debug().Str("event", string(ev.Type()))

	switch e := ev.(type) {
	case *SelectionEvent:
		entry = entry.Str("path", e.Path).Bool("selected", e.Selected).Int("count", e.Count)
	case *DirectoryEvent:
		entry = entry.Str("path", "/"+e.Path).Int("entries", e.Entries)
	case *JobEvent:
		entry = entry.Str("job_id", e.JobID).Int("paths", e.Paths)
	case *ProgressEvent:
		entry = entry.Str("job_id", e.JobID).Str("status", e.Status).
			Int("processed", e.Processed).Int("total", e.Total).Str("eta", e.ETA)
	case *CompleteEvent:
		entry = entry.Str("job_id", e.JobID).Int("successes", e.Successes).Int("failures", e.Failures)
	case *ErrorEvent:
		entry = entry.Str("job_id", e.JobID).Err(e.Error)
	case *NoticeEvent:
		entry = entry.Str("notice_level", e.Level.String()).Str("notice", e.Message)
	}

	entry.Time("at", ev.Timestamp()).Msg("activity")
}
