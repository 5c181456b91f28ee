package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alberdingk-thijm/Timepiece/internal/runlog"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Network  string
	Limit    int
}

// NewReportCommand creates the report command, which reads past runs from a
// run log.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show recorded verification runs",
		Long: `Without arguments, list recorded runs newest first. With a run id,
show that run's report and per-obligation verdicts.

Example:
  timepiece report --db runs.db
  timepiece report --db runs.db 0189c9e2-4b7a-7c3d-9a2f-1e8d6f5a4b3c`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &Formatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			store, err := runlog.Open(opts.Database)
			if err != nil {
				return renderError(f, WrapExitError(ExitCommandError, "failed to open run log", err))
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("error closing run log", "error", closeErr)
				}
			}()

			if len(args) == 0 {
				return listRuns(cmd, f, store, opts)
			}
			return showRun(cmd, f, store, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run log (required)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "only list runs of this network")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listRuns(cmd *cobra.Command, f *Formatter, store *runlog.Store, opts *ReportOptions) error {
	runs, err := store.List(cmd.Context(), opts.Network, opts.Limit)
	if err != nil {
		return renderError(f, WrapExitError(ExitCommandError, "failed to list runs", err))
	}

	if f.JSON() {
		type runDoc struct {
			ID        string `json:"id"`
			Network   string `json:"network"`
			StartedAt string `json:"started_at"`
			Verdict   string `json:"verdict,omitempty"`
		}
		docs := make([]runDoc, 0, len(runs))
		for _, r := range runs {
			docs = append(docs, runDoc{
				ID:        r.ID,
				Network:   r.Network,
				StartedAt: r.StartedAt.Format(time.RFC3339),
				Verdict:   string(r.Verdict),
			})
		}
		return f.Success(docs)
	}

	if len(runs) == 0 {
		return f.Success("no recorded runs")
	}
	var b strings.Builder
	for _, r := range runs {
		verdict := string(r.Verdict)
		if verdict == "" {
			verdict = "in flight"
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Network, verdict)
	}
	return f.Success(strings.TrimSuffix(b.String(), "\n"))
}

func showRun(cmd *cobra.Command, f *Formatter, store *runlog.Store, id string) error {
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return renderError(f, WrapExitError(ExitCommandError, "failed to load run", err))
	}
	obligations, err := store.Obligations(cmd.Context(), id)
	if err != nil {
		return renderError(f, WrapExitError(ExitCommandError, "failed to load obligations", err))
	}

	if f.JSON() {
		// The stored report is already canonical JSON.
		if len(run.Report) > 0 {
			if _, err := f.Writer.Write(append(run.Report, '\n')); err != nil {
				return WrapExitError(ExitCommandError, "failed to write report", err)
			}
			return nil
		}
		return f.Success(map[string]string{"id": run.ID, "status": "in flight"})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", run.ID)
	fmt.Fprintf(&b, "network: %s\n", run.Network)
	fmt.Fprintf(&b, "started: %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "finished: %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	if run.Verdict != "" {
		fmt.Fprintf(&b, "verdict: %s\n", run.Verdict)
	}
	for _, o := range obligations {
		line := fmt.Sprintf("  %-10s %-8s", o.Kind, o.Verdict)
		if o.Node != "" {
			line += "  node=" + o.Node
		}
		if o.Detail != "" {
			line += "  " + o.Detail
		}
		fmt.Fprintln(&b, line)
	}
	return f.Success(strings.TrimSuffix(b.String(), "\n"))
}
