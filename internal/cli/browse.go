package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/jobs"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/tui"
)

var showHidden bool

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Interactive browser (default when run on a terminal)",
		Long: `Browse the server's library, select files and folders and convert them.

Keys:
  ↑/↓ j/k           move
  space             select / deselect
  enter → l         open folder
  backspace ← h     parent folder
  s                 cycle sample rate (server default, 44.1, 48, 88.2, 96 kHz)
  c                 convert the selection
  r                 reload
  .                 show / hide hidden entries
  q                 quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runBrowse(cmd, path)
		},
	}

	cmd.Flags().BoolVar(&showHidden, "show-hidden", false, "Show dot-entries")
	return cmd
}

func runBrowse(cmd *cobra.Command, path string) error {
	// Console logging would draw over the full-screen UI
	if err := setupLogger(logging.ModeTUI); err != nil {
		return err
	}

	ctx := GetContext()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rate := 0
	if r, err := jobs.ParseSampleRate(s.cfg.DefaultSampleRate); err == nil && r != nil {
		rate = *r
	}

	return tui.Run(ctx, s.client, s.eventBus, GetLogger(), tui.Options{
		StartPath:  strings.Trim(path, "/"),
		SampleRate: rate,
		ShowHidden: showHidden,
		Poll:       s.pollOptions(),
		ServerURL:  s.client.BaseURL(),
	})
}
