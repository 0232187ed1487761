package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/events"
	"github.com/raspberrycoulis/flac2alac/internal/jobs"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/poller"
	"github.com/raspberrycoulis/flac2alac/internal/present"
	"github.com/raspberrycoulis/flac2alac/internal/selection"
)

func newConvertCmd() *cobra.Command {
	var (
		sampleRate string
		noWait     bool
		retryPolls int
		interval   time.Duration
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "convert PATH...",
		Short: "Submit files and folders for conversion and watch the job",
		Long: `Submit one conversion job for the given server-relative paths.

Paths may name FLAC files or folders (converted recursively by the server).
By default the job is followed until it finishes, showing progress, the
server log and a success/failure summary.

Examples:
  flac2alac convert "Artist/Album"
  flac2alac convert a.flac "Other/Album" --sample-rate 48000
  flac2alac convert "Artist/Album" --no-wait`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("sample-rate") {
				sampleRate = s.cfg.DefaultSampleRate
			}
			opts := s.pollOptions()
			if cmd.Flags().Changed("retry-polls") {
				opts.Policy = poller.PolicyFor(retryPolls)
			}
			if interval > 0 {
				opts.Interval = interval
			}

			store := selection.NewStore(s.eventBus)
			for _, p := range args {
				p = strings.Trim(p, "/")
				if p != "" && !store.Contains(p) {
					store.Toggle(p)
				}
			}

			presenter := present.NewTerminal(stderr, GetLogger())
			tracking := poller.New(s.client, opts, s.eventBus, GetLogger())
			submitter := jobs.NewSubmitter(s.client, store, presenter, tracking, s.eventBus, GetLogger())

			if dryRun {
				req, err := submitter.BuildRequest(sampleRate)
				if err != nil {
					return err
				}
				return writeDryRun(cmd.OutOrStdout(), req)
			}

			handle, err := submitter.Submit(ctx, sampleRate)
			if err != nil {
				s.eventBus.PublishNotice(events.ErrorLevel, present.NoticeFor(err))
				return err
			}
			presenter.Attach(handle)

			if noWait {
				fmt.Fprintln(cmd.OutOrStdout(), handle)
				return nil
			}
			fmt.Fprintf(stderr, "Job %s submitted (%d item(s))\n", handle, store.Len())

			return follow(cmd, tracking, handle, presenter)
		},
	}

	cmd.Flags().StringVar(&sampleRate, "sample-rate", "", "Output sample rate in Hz (default: keep source rate, or [conversion] default_sample_rate)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Print the job id and exit without following the job")
	cmd.Flags().IntVar(&retryPolls, "retry-polls", 0, "Consecutive status failures to retry with backoff before giving up (0 = stop on first failure)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Status polling interval (default from config, 1s)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the request and expected output names without submitting")

	return cmd
}

// follow polls handle until it finishes, is halted or the command is cancelled.
func follow(cmd *cobra.Command, tracking *poller.Poller, handle models.JobHandle, presenter present.Presenter) error {
	ctx := GetContext()
	tracking.Start(ctx, handle, presenter)
	defer tracking.StopAll()

	state, err := tracking.Wait(ctx, handle)
	switch state {
	case poller.StateDone:
		return nil
	case poller.StateHalted:
		return err
	default:
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = fmt.Errorf("tracking of job %s stopped", handle)
		}
		return err
	}
}

func writeDryRun(w io.Writer, req models.ConversionRequest) error {
	rate := 0
	if req.SampleRate != nil {
		rate = *req.SampleRate
	}

	if err := writeStructured(w, req, formatJSON); err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, p := range req.Paths {
		if strings.HasSuffix(strings.ToLower(p), ".flac") {
			fmt.Fprintf(w, "%s -> %s\n", p, models.OutputName(p, rate))
		} else {
			fmt.Fprintf(w, "%s/ -> every FLAC file below, named like %s\n", p, models.OutputName(p+"/track.flac", rate))
		}
	}
	return nil
}
