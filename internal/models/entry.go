// Package models defines the wire types exchanged with the conversion server.
package models

import (
	"path"
	"strings"
)

// DirectoryEntry is one row of a directory listing.
// Path is server-relative and slash-separated; it is the identity used by selections.
type DirectoryEntry struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	IsDir bool   `json:"is_dir" yaml:"is_dir"`
}

// IsHidden reports whether the entry is a dot-file or dot-directory.
func (e DirectoryEntry) IsHidden() bool {
	return strings.HasPrefix(e.Name, ".")
}

// IsFLAC reports whether the entry is a convertible audio file.
func (e DirectoryEntry) IsFLAC() bool {
	return !e.IsDir && strings.EqualFold(path.Ext(e.Name), ".flac")
}
