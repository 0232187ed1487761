package selection

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/events"
)

func TestStoreToggleIsIdempotentInPairs(t *testing.T) {
	s := NewStore(nil)

	if !s.Toggle("A/x.flac") {
		t.Error("first toggle should select")
	}
	if !s.Contains("A/x.flac") {
		t.Error("path should be selected")
	}
	if s.Toggle("A/x.flac") {
		t.Error("second toggle should deselect")
	}
	if s.Contains("A/x.flac") || s.Len() != 0 {
		t.Error("toggling twice should leave the store empty")
	}
}

func TestStoreSnapshotIsSortedCopy(t *testing.T) {
	s := NewStore(nil)
	for _, p := range []string{"B", "A/x.flac", "A", "A/B/y.flac"} {
		s.Toggle(p)
	}

	got := s.Snapshot()
	want := []string{"A", "A/B/y.flac", "A/x.flac", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}

	got[0] = "mutated"
	if !s.Contains("A") {
		t.Error("mutating a snapshot must not affect the store")
	}
}

func TestStoreAllowsAncestorAndDescendant(t *testing.T) {
	s := NewStore(nil)
	s.Toggle("A")
	s.Toggle("A/x.flac")

	if s.Len() != 2 {
		t.Errorf("expected both ancestor and descendant to be kept, got %v", s.Snapshot())
	}
}

func TestStorePublishesSelectionEvents(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventSelectionChanged)

	s := NewStore(bus)
	s.Toggle("A")
	s.Toggle("B")
	s.Toggle("A")

	want := []struct {
		path     string
		selected bool
		count    int
	}{
		{"A", true, 1},
		{"B", true, 2},
		{"A", false, 1},
	}

	for i, w := range want {
		select {
		case e := <-ch:
			ev := e.(*events.SelectionEvent)
			if ev.Path != w.path || ev.Selected != w.selected || ev.Count != w.count {
				t.Errorf("event %d = %+v, want %+v", i, ev, w)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}
}

func TestStoreConcurrentToggles(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle("same")
			s.Contains("same")
		}()
	}
	wg.Wait()

	// 50 toggles is an even number of flips
	if s.Contains("same") {
		t.Error("expected path to end up deselected")
	}
}
