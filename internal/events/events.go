// Package events provides a small publish/subscribe bus used to fan job and
// selection activity out to observers (status line, desktop notifications).
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventSelectionChanged EventType = "selection_changed"
	EventDirectoryOpened  EventType = "directory_opened"
	EventJobSubmitted     EventType = "job_submitted"
	EventJobProgress      EventType = "job_progress"
	EventJobFinished      EventType = "job_finished"
	EventJobHalted        EventType = "job_halted"

	// EventNotice carries a short user-visible message (toast)
	EventNotice EventType = "notice"
)

// LogLevel defines notice severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// SelectionEvent is published on every toggle.
type SelectionEvent struct {
	BaseEvent
	Path     string
	Selected bool
	Count    int // selection size after the toggle
}

// DirectoryEvent is published after a successful listing.
type DirectoryEvent struct {
	BaseEvent
	Path    string
	Entries int
}

// JobEvent is published when a job is accepted by the server.
type JobEvent struct {
	BaseEvent
	JobID string
	Paths int
}

// ProgressEvent represents one processed status snapshot
type ProgressEvent struct {
	BaseEvent
	JobID     string
	Status    string
	Processed int
	Total     int
	Percent   float64 // 0 to 100, only meaningful when Total > 0
	ETA       string
}

// CompleteEvent represents job completion
type CompleteEvent struct {
	BaseEvent
	JobID     string
	Successes int
	Failures  int
}

// ErrorEvent represents a job that stopped being tracked because of an error
type ErrorEvent struct {
	BaseEvent
	JobID string
	Error error
}

// NoticeEvent is a short message meant for the user
type NoticeEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events that do not fit a subscriber's buffer are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Dropped returns the number of events dropped because a subscriber was full.
func (eb *EventBus) Dropped() int64 {
	return eb.droppedEvents.Load()
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishNotice is a convenience method for publishing user-visible notices
func (eb *EventBus) PublishNotice(level LogLevel, message string) {
	eb.Publish(&NoticeEvent{
		BaseEvent: BaseEvent{EventType: EventNotice, Time: time.Now()},
		Level:     level,
		Message:   message,
	})
}

// PublishProgress is a convenience method for publishing progress events
func (eb *EventBus) PublishProgress(jobID, status string, processed, total int, percent float64, eta string) {
	eb.Publish(&ProgressEvent{
		BaseEvent: BaseEvent{EventType: EventJobProgress, Time: time.Now()},
		JobID:     jobID,
		Status:    status,
		Processed: processed,
		Total:     total,
		Percent:   percent,
		ETA:       eta,
	})
}

// PublishComplete is a convenience method for publishing completion events
func (eb *EventBus) PublishComplete(jobID string, successes, failures int) {
	eb.Publish(&CompleteEvent{
		BaseEvent: BaseEvent{EventType: EventJobFinished, Time: time.Now()},
		JobID:     jobID,
		Successes: successes,
		Failures:  failures,
	})
}

// PublishHalted is a convenience method for publishing halted-job events
func (eb *EventBus) PublishHalted(jobID string, err error) {
	eb.Publish(&ErrorEvent{
		BaseEvent: BaseEvent{EventType: EventJobHalted, Time: time.Now()},
		JobID:     jobID,
		Error:     err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			close(subCh)
			break
		}
	}
}

// UnsubscribeAll removes a subscription created by SubscribeAll.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all = append(eb.all[:i], eb.all[i+1:]...)
			close(subCh)
			break
		}
	}
}
