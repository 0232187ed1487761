package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/navigator"
	"github.com/raspberrycoulis/flac2alac/internal/present"
	"github.com/raspberrycoulis/flac2alac/internal/progress"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

func newLsCmd() *cobra.Command {
	var (
		format string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List one directory of the server's library",
		Long: `List the entries of a directory on the conversion server.

PATH is relative to the library root; omit it to list the root.

Examples:
  flac2alac ls
  flac2alac ls "Artist/Album" -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = strings.Trim(args[0], "/")
			}

			ctx := GetContext()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			nav := navigator.New(s.client, selection.NewStore(nil), s.eventBus)
			nav.SetShowHidden(all)

			spinner := progress.StartSpinner(stderr, "Listing "+navigator.DisplayPath(path))
			err = nav.Open(ctx, path)
			spinner.Stop()
			if err != nil {
				GetLogger().Error().Err(err).Str("path", path).Msg(present.NoticeListingFailed)
				return err
			}

			rows := nav.Rows()
			entries := make([]models.DirectoryEntry, len(rows))
			for i, row := range rows {
				entries[i] = row.DirectoryEntry
			}

			if format == formatTable {
				return writeEntriesTable(cmd.OutOrStdout(), entries)
			}
			return writeStructured(cmd.OutOrStdout(), entries, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include hidden entries")

	return cmd
}
