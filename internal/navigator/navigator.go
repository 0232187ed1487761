// Package navigator tracks the directory currently on display and renders its
// rows with selection state read from a selection.Store.
package navigator

import (
	"context"
	"strings"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

// Lister fetches one directory listing. *api.Client implements it.
type Lister interface {
	ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error)
}

// Row is an entry as displayed, with its selection state at render time.
type Row struct {
	models.DirectoryEntry
	Selected bool
}

// Navigator holds the current path and its entries. It is owned by a single
// goroutine (the UI loop or a command); it is not safe for concurrent use.
type Navigator struct {
	lister     Lister
	store      *selection.Store
	eventBus   *events.EventBus
	path       string
	entries    []models.DirectoryEntry
	showHidden bool
}

// New creates a Navigator positioned at the root with no entries loaded.
func New(lister Lister, store *selection.Store, eventBus *events.EventBus) *Navigator {
	return &Navigator{
		lister:   lister,
		store:    store,
		eventBus: eventBus,
	}
}

// Open lists path and makes it current. On failure the previous path and
// entries are kept and the lister's error (an *api.ListingError) is returned.
// The selection is never touched.
func (n *Navigator) Open(ctx context.Context, path string) error {
	entries, err := n.lister.ListDirectory(ctx, path)
	if err != nil {
		return err
	}
	n.Apply(path, entries)
	return nil
}

// Apply makes a fetched listing current. Used by callers that list asynchronously.
func (n *Navigator) Apply(path string, entries []models.DirectoryEntry) {
	n.path = path
	n.entries = entries

	if n.eventBus != nil {
		n.eventBus.Publish(&events.DirectoryEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventDirectoryOpened, Time: time.Now()},
			Path:      path,
			Entries:   len(entries),
		})
	}
}

// Toggle flips the selection state of entry. It never triggers a listing.
func (n *Navigator) Toggle(entry models.DirectoryEntry) bool {
	return n.store.Toggle(entry.Path)
}

// Rows returns the visible entries with their current selection state.
func (n *Navigator) Rows() []Row {
	rows := make([]Row, 0, len(n.entries))
	for _, e := range n.entries {
		if !n.showHidden && e.IsHidden() {
			continue
		}
		rows = append(rows, Row{DirectoryEntry: e, Selected: n.store.Contains(e.Path)})
	}
	return rows
}

// SetShowHidden controls whether dot-entries are included in Rows.
func (n *Navigator) SetShowHidden(show bool) {
	n.showHidden = show
}

// Path returns the current server-relative path; "" is the root.
func (n *Navigator) Path() string {
	return n.path
}

// DisplayPath returns the current path as shown to the user.
func (n *Navigator) DisplayPath() string {
	return DisplayPath(n.path)
}

// Lister returns the listing source, for callers that list asynchronously and hand the result to Apply.
func (n *Navigator) Lister() Lister {
	return n.lister
}

// Parent drops the last segment of path. The parent of a single-segment path is the root.
func Parent(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// DisplayPath renders a relative path as an absolute-looking one.
func DisplayPath(path string) string {
	return "/" + strings.Trim(path, "/")
}
