package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/estimate"
	"github.com/raspberrycoulis/flac2alac/internal/models"
	"github.com/raspberrycoulis/flac2alac/internal/poller"
	"github.com/raspberrycoulis/flac2alac/internal/present"
)

// statusReport is the structured form of `status -o json|yaml`.
type statusReport struct {
	JobID     string            `json:"job_id" yaml:"job_id"`
	Status    string            `json:"status" yaml:"status"`
	Processed int               `json:"processed" yaml:"processed"`
	Total     int               `json:"total" yaml:"total"`
	StartTime *models.Timestamp `json:"start_time" yaml:"start_time"`
	Percent   *float64          `json:"percent,omitempty" yaml:"percent,omitempty"`
	ETA       string            `json:"eta" yaml:"eta"`
	Log       []string          `json:"log" yaml:"log"`
	Summary   *present.Summary  `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func newStatusReport(handle models.JobHandle, snap *models.StatusSnapshot, now time.Time) statusReport {
	view := estimate.Estimate(snap, now)
	r := statusReport{
		JobID:     handle.String(),
		Status:    snap.Status,
		Processed: snap.Processed,
		Total:     snap.Total,
		StartTime: snap.StartTime,
		ETA:       view.ETAString(),
		Log:       snap.Log,
	}
	if r.Log == nil {
		r.Log = []string{}
	}
	if view.HasProgress {
		percent := view.Percent
		r.Percent = &percent
	}
	if snap.IsFinished() {
		summary := present.Summarize(snap)
		r.Summary = &summary
	}
	return r
}

func newStatusCmd() *cobra.Command {
	var (
		format   string
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show the status of a conversion job",
		Long: `Fetch the status of a job once, or follow it to completion with --watch.

Examples:
  flac2alac status 12
  flac2alac status 12 -o json
  flac2alac status 12 --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			if watch && format != formatText {
				return fmt.Errorf("--watch only supports text output")
			}
			handle := models.JobHandle(strings.TrimSpace(args[0]))
			if handle == "" {
				return fmt.Errorf("job id must not be empty")
			}

			ctx := GetContext()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if watch {
				opts := s.pollOptions()
				if interval > 0 {
					opts.Interval = interval
				}
				presenter := present.NewTerminal(stderr, GetLogger())
				presenter.Attach(handle)
				return follow(cmd, poller.New(s.client, opts, s.eventBus, GetLogger()), handle, presenter)
			}

			snap, err := s.client.GetJobStatus(ctx, handle)
			if err != nil {
				GetLogger().Error().Err(err).Str("job_id", handle.String()).Msg(present.NoticePollFailed)
				return err
			}

			report := newStatusReport(handle, snap, time.Now())
			if format == formatText {
				return writeStatusText(cmd.OutOrStdout(), report)
			}
			return writeStructured(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatText, "Output format: text, json or yaml")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the job until it finishes")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Status polling interval with --watch (default from config, 1s)")

	return cmd
}

func writeStatusText(w io.Writer, r statusReport) error {
	fmt.Fprintf(w, "Job:       %s\n", r.JobID)
	fmt.Fprintf(w, "Status:    %s\n", r.Status)
	if r.Percent != nil {
		fmt.Fprintf(w, "Progress:  %.1f%% (%d/%d)\n", *r.Percent, r.Processed, r.Total)
	} else {
		fmt.Fprintf(w, "Progress:  -- (%d/%d)\n", r.Processed, r.Total)
	}
	fmt.Fprintf(w, "ETA:       %s\n", r.ETA)
	if r.StartTime != nil {
		fmt.Fprintf(w, "Started:   %s\n", r.StartTime.Local().Format("2006-01-02 15:04:05"))
	}
	if len(r.Log) > 0 {
		fmt.Fprintln(w, "Log:")
		for _, line := range r.Log {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if r.Summary == nil {
		return nil
	}
	fmt.Fprintln(w)
	return present.WriteSummary(w, *r.Summary)
}
