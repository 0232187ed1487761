package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

// fakeLister serves a fixed tree and records every call.
type fakeLister struct {
	tree  map[string][]models.DirectoryEntry
	fail  map[string]bool
	calls []string
}

func (f *fakeLister) ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	f.calls = append(f.calls, path)
	if f.fail[path] {
		return nil, &api.ListingError{Path: path, Err: errors.New("status 500")}
	}
	return f.tree[path], nil
}

func newTree() *fakeLister {
	return &fakeLister{
		tree: map[string][]models.DirectoryEntry{
			"": {
				{Name: "A", Path: "A", IsDir: true},
				{Name: "B", Path: "B", IsDir: true},
				{Name: ".DS_Store", Path: ".DS_Store"},
			},
			"A": {
				{Name: "Disc 1", Path: "A/Disc 1", IsDir: true},
				{Name: "x.flac", Path: "A/x.flac"},
			},
			"A/Disc 1": {{Name: "y.flac", Path: "A/Disc 1/y.flac"}},
			"B":        {},
		},
		fail: map[string]bool{},
	}
}

func TestParent(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"A":          "",
		"A/B":        "A",
		"A/B/C.flac": "A/B",
		"A/B/":       "A",
	}
	for in, want := range tests {
		if got := Parent(in); got != want {
			t.Errorf("Parent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayPath(t *testing.T) {
	if DisplayPath("") != "/" || DisplayPath("A/B") != "/A/B" {
		t.Errorf("unexpected display paths %q %q", DisplayPath(""), DisplayPath("A/B"))
	}
}

func TestSelectionPersistsAcrossNavigation(t *testing.T) {
	ctx := context.Background()
	lister := newTree()
	nav := New(lister, selection.NewStore(nil), nil)

	if err := nav.Open(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	nav.Toggle(models.DirectoryEntry{Name: "x.flac", Path: "A/x.flac"})

	if err := nav.Open(ctx, Parent(nav.Path())); err != nil {
		t.Fatal(err)
	}
	if err := nav.Open(ctx, "B"); err != nil {
		t.Fatal(err)
	}
	if err := nav.Open(ctx, "A"); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, row := range nav.Rows() {
		if row.Path == "A/x.flac" {
			found = true
			if !row.Selected {
				t.Error("A/x.flac should still render as selected")
			}
		} else if row.Selected {
			t.Errorf("%s should not be selected", row.Path)
		}
	}
	if !found {
		t.Fatal("A/x.flac missing from rows")
	}
}

func TestToggleDoesNotList(t *testing.T) {
	lister := newTree()
	store := selection.NewStore(nil)
	nav := New(lister, store, nil)
	if err := nav.Open(context.Background(), "A"); err != nil {
		t.Fatal(err)
	}
	before := len(lister.calls)

	nav.Toggle(models.DirectoryEntry{Name: "Disc 1", Path: "A/Disc 1", IsDir: true})
	nav.Toggle(models.DirectoryEntry{Name: "x.flac", Path: "A/x.flac"})

	if len(lister.calls) != before {
		t.Errorf("toggle issued %d listing calls", len(lister.calls)-before)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 selected, got %d", store.Len())
	}
}

func TestOpenFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	lister := newTree()
	lister.fail["B"] = true
	nav := New(lister, selection.NewStore(nil), nil)

	if err := nav.Open(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	err := nav.Open(ctx, "B")
	if !api.IsListingError(err) {
		t.Fatalf("expected ListingError, got %v", err)
	}
	if nav.Path() != "A" {
		t.Errorf("path changed to %q after failure", nav.Path())
	}
	if len(nav.Rows()) != 2 {
		t.Errorf("entries changed after failure: %v", nav.Rows())
	}
}

func TestApplyInstallsListing(t *testing.T) {
	lister := newTree()
	nav := New(lister, selection.NewStore(nil), nil)

	entries, err := nav.Lister().ListDirectory(context.Background(), "A/Disc 1")
	if err != nil {
		t.Fatal(err)
	}
	nav.Apply("A/Disc 1", entries)

	if nav.Path() != "A/Disc 1" || nav.DisplayPath() != "/A/Disc 1" {
		t.Errorf("Path() = %q", nav.Path())
	}
	if rows := nav.Rows(); len(rows) != 1 || rows[0].Path != "A/Disc 1/y.flac" {
		t.Errorf("Rows() = %v", rows)
	}
}

func TestHiddenEntries(t *testing.T) {
	nav := New(newTree(), selection.NewStore(nil), nil)
	if err := nav.Open(context.Background(), ""); err != nil {
		t.Fatal(err)
	}

	if len(nav.Rows()) != 2 {
		t.Errorf("hidden entries should be filtered, got %v", nav.Rows())
	}
	nav.SetShowHidden(true)
	if len(nav.Rows()) != 3 {
		t.Errorf("expected hidden entries when enabled, got %v", nav.Rows())
	}
}
