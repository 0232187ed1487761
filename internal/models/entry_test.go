package models

import "testing"

func TestDirectoryEntry_Flags(t *testing.T) {
	tests := []struct {
		entry  DirectoryEntry
		hidden bool
		flac   bool
	}{
		{DirectoryEntry{Name: "song.flac", Path: "a/song.flac"}, false, true},
		{DirectoryEntry{Name: "SONG.FLAC", Path: "SONG.FLAC"}, false, true},
		{DirectoryEntry{Name: ".DS_Store", Path: ".DS_Store"}, true, false},
		{DirectoryEntry{Name: "Album.flac", Path: "Album.flac", IsDir: true}, false, false},
		{DirectoryEntry{Name: "cover.jpg", Path: "cover.jpg"}, false, false},
	}

	for _, tt := range tests {
		if got := tt.entry.IsHidden(); got != tt.hidden {
			t.Errorf("%s: IsHidden() = %v, want %v", tt.entry.Name, got, tt.hidden)
		}
		if got := tt.entry.IsFLAC(); got != tt.flac {
			t.Errorf("%s: IsFLAC() = %v, want %v", tt.entry.Name, got, tt.flac)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in   string
		rate int
		want string
	}{
		{"Album/01 Intro.flac", 0, "Album/01 Intro.m4a"},
		{"Album/01 Intro.flac", 44100, "Album/01 Intro (44kHz).m4a"},
		{"Album/01 Intro (96kHz).flac", 48000, "Album/01 Intro (48kHz).m4a"},
		{"Album/01 Intro (24bit 96kHz).flac", 44100, "Album/01 Intro (44kHz).m4a"},
		{"track.flac", 88200, "track (88kHz).m4a"},
	}

	for _, tt := range tests {
		if got := OutputName(tt.in, tt.rate); got != tt.want {
			t.Errorf("OutputName(%q, %d) = %q, want %q", tt.in, tt.rate, got, tt.want)
		}
	}
}
