package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/raspberrycoulis/flac2alac/internal/models"
)

// Output formats accepted by -o.
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (want one of %v)", format, allowed)
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, v interface{}, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeEntriesTable renders a directory listing.
func writeEntriesTable(w io.Writer, entries []models.DirectoryEntry) error {
	table := tablewriter.NewWriter(w)
	table.Header("Type", "Name", "Path")
	for _, e := range entries {
		kind := "file"
		switch {
		case e.IsDir:
			kind = "dir"
		case e.IsFLAC():
			kind = "flac"
		}
		if err := table.Append([]string{kind, e.Name, e.Path}); err != nil {
			return err
		}
	}
	return table.Render()
}
