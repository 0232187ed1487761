package events

import (
	"errors"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventJobProgress)

	bus.PublishProgress("7", "running", 10, 100, 10, "00:07:30")

	select {
	case received := <-ch:
		progress, ok := received.(*ProgressEvent)
		if !ok {
			t.Fatal("Expected ProgressEvent")
		}
		if progress.JobID != "7" {
			t.Errorf("Expected job id '7', got '%s'", progress.JobID)
		}
		if progress.Percent != 10 {
			t.Errorf("Expected percent 10, got %f", progress.Percent)
		}
		if progress.ETA != "00:07:30" {
			t.Errorf("Expected ETA 00:07:30, got %s", progress.ETA)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventNotice)
	ch2 := bus.Subscribe(EventNotice)

	bus.PublishNotice(ErrorLevel, "Failed to fetch status")

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			notice := event.(*NoticeEvent)
			if notice.Message != "Failed to fetch status" {
				t.Errorf("subscriber %d: unexpected message %q", i, notice.Message)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	finished := bus.Subscribe(EventJobFinished)
	halted := bus.Subscribe(EventJobHalted)

	bus.PublishHalted("3", errors.New("boom"))

	select {
	case <-finished:
		t.Error("finished subscriber should not receive halted events")
	case event := <-halted:
		if event.(*ErrorEvent).JobID != "3" {
			t.Errorf("unexpected job id %s", event.(*ErrorEvent).JobID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.PublishComplete("1", 10, 2)
	bus.PublishNotice(InfoLevel, "Conversion complete!")

	got := []EventType{}
	for i := 0; i < 2; i++ {
		select {
		case event := <-all:
			got = append(got, event.Type())
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for event")
		}
	}
	if got[0] != EventJobFinished || got[1] != EventNotice {
		t.Errorf("unexpected event order: %v", got)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventSelectionChanged)

	for i := 0; i < 10; i++ {
		bus.Publish(&SelectionEvent{
			BaseEvent: BaseEvent{EventType: EventSelectionChanged, Time: time.Now()},
			Path:      "a",
			Count:     i,
		})
	}

	if len(ch) != 2 {
		t.Errorf("expected buffer of 2 to be full, got %d", len(ch))
	}
	if bus.Dropped() != 8 {
		t.Errorf("expected 8 dropped events, got %d", bus.Dropped())
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventJobProgress)

	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishProgress("1", "running", 0, 0, 0, "")
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *EventBus
	bus.PublishNotice(InfoLevel, "ignored")
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventNotice)
	bus.Unsubscribe(EventNotice, ch)

	bus.PublishNotice(InfoLevel, "hello")

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed and receive nothing")
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}
