// Package selection holds the set of server paths chosen for conversion.
// The set is independent of the directory on display: navigating away from a
// directory never drops its selected entries.
package selection

import (
	"sort"
	"sync"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/events"
)

// Store is a set of selected paths. Paths are not validated; an entry may be a
// file or a directory, and a directory and one of its descendants may both be present.
// Thread-safe for concurrent access.
type Store struct {
	eventBus *events.EventBus
	selected map[string]struct{}

	mu sync.RWMutex
}

// NewStore creates an empty Store. eventBus may be nil.
func NewStore(eventBus *events.EventBus) *Store {
	return &Store{
		eventBus: eventBus,
		selected: make(map[string]struct{}),
	}
}

// Toggle adds path if absent, removes it otherwise, and reports whether it is now selected.
func (s *Store) Toggle(path string) bool {
	s.mu.Lock()
	_, present := s.selected[path]
	if present {
		delete(s.selected, path)
	} else {
		s.selected[path] = struct{}{}
	}
	count := len(s.selected)
	s.mu.Unlock()

	if s.eventBus != nil {
		s.eventBus.Publish(&events.SelectionEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventSelectionChanged, Time: time.Now()},
			Path:      path,
			Selected:  !present,
			Count:     count,
		})
	}
	return !present
}

// Contains reports whether path is selected.
func (s *Store) Contains(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[path]
	return ok
}

// Snapshot returns the selected paths in lexicographic order.
func (s *Store) Snapshot() []string {
	s.mu.RLock()
	paths := make([]string, 0, len(s.selected))
	for p := range s.selected {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	sort.Strings(paths)
	return paths
}

// Len returns the number of selected paths.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}
