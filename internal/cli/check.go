package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alberdingk-thijm/Timepiece/internal/bench"
	"github.com/alberdingk-thijm/Timepiece/internal/network"
	"github.com/alberdingk-thijm/Timepiece/internal/report"
	"github.com/alberdingk-thijm/Timepiece/internal/runlog"
	"github.com/alberdingk-thijm/Timepiece/internal/solver"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Size       int
	Monolithic bool
	Database   string
	Timeout    time.Duration

	// Oracle overrides the solver, for testing. Nil selects Z3.
	Oracle solver.Oracle
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <network>",
		Short: "Verify a benchmark network's annotations",
		Long: `Run the modular proof over a benchmark network: the base case,
inductive step, and safety assertion of every node. With --monolithic the
time-erased fixed-point check runs as an additional cross-check.

Exit code 1 means a check produced a counterexample; the proof obligations
themselves were all decided.

Example:
  timepiece check path --size 10
  timepiece check fault-tolerant --monolithic --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Size, "size", 3, "node count for sized networks")
	cmd.Flags().BoolVar(&opts.Monolithic, "monolithic", false, "also run the monolithic cross-check")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite run log")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-query solver timeout (0 = none)")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, name string) error {
	f := &Formatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var store *runlog.Store
	if opts.Database != "" {
		var err error
		store, err = runlog.Open(opts.Database)
		if err != nil {
			return renderError(f, WrapExitError(ExitCommandError, "failed to open run log", err))
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing run log", "error", closeErr)
			}
		}()
		f.VerboseLog("recording run in %s", opts.Database)
	}

	rep, err := executeCheck(cmd.Context(), checkRequest{
		Network:    name,
		Size:       opts.Size,
		Monolithic: opts.Monolithic,
		Timeout:    opts.Timeout,
		Oracle:     opts.Oracle,
	}, store)
	if err != nil {
		return renderError(f, err)
	}

	if err := writeReport(f, rep); err != nil {
		return err
	}
	if !rep.Proved() {
		return NewExitError(ExitFailure, "verification found a counterexample")
	}
	return nil
}

// checkRequest is one network verification request.
type checkRequest struct {
	Network    string
	Size       int
	Monolithic bool
	Timeout    time.Duration
	Oracle     solver.Oracle
}

// executeCheck runs the requested checks and, when store is non-nil,
// records the run and its obligations.
func executeCheck(ctx context.Context, req checkRequest, store *runlog.Store) (*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	annotated, err := bench.Build(req.Network, req.Size)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build network", err)
	}

	oracle := req.Oracle
	if oracle == nil {
		var z3Opts []solver.Z3Option
		if req.Timeout > 0 {
			z3Opts = append(z3Opts, solver.WithTimeout(req.Timeout))
		}
		oracle = solver.NewZ3(z3Opts...)
	}

	var runID string
	if store != nil {
		runID, err = store.Begin(ctx, req.Network)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	rep := report.New(req.Network)

	slog.Info("running modular proof", "network", req.Network,
		"nodes", annotated.Topology().NodeCount())
	start := time.Now()
	cex, err := annotated.CheckAnnotations(ctx, oracle)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "modular proof failed", err)
	}
	slog.Info("modular proof finished", "network", req.Network,
		"proved", cex == nil, "elapsed", time.Since(start))
	rep.SetModular(cex)
	if store != nil {
		if err := recordModular(ctx, store, runID, cex); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to record obligations", err)
		}
	}

	if req.Monolithic && cex == nil {
		slog.Info("running monolithic cross-check", "network", req.Network)
		start = time.Now()
		monoCex, err := annotated.CheckMonolithic(ctx, oracle)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "monolithic check failed", err)
		}
		slog.Info("monolithic check finished", "network", req.Network,
			"proved", monoCex == nil, "elapsed", time.Since(start))
		rep.SetMonolithic(monoCex)
		if store != nil {
			if err := store.Append(ctx, runID, obligationFor(network.KindMonolithic, monoCex)); err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to record obligations", err)
			}
		}
	}

	if store != nil {
		if err := store.Finish(ctx, runID, rep); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}
	return rep, nil
}

// recordModular writes one obligation row per modular phase: proved rows
// for the phases that passed, then the failing phase with its detail.
func recordModular(ctx context.Context, store *runlog.Store, runID string, cex network.Counterexample) error {
	phases := []network.CheckKind{network.KindBase, network.KindInductive, network.KindSafety}
	for _, phase := range phases {
		if cex != nil && cex.Kind() == phase {
			return store.Append(ctx, runID, obligationFor(phase, cex))
		}
		if err := store.Append(ctx, runID, obligationFor(phase, nil)); err != nil {
			return err
		}
	}
	return nil
}

func obligationFor(kind network.CheckKind, cex network.Counterexample) runlog.Obligation {
	o := runlog.Obligation{Kind: kind.String(), Verdict: report.VerdictProved}
	if cex == nil {
		return o
	}
	o.Verdict = report.VerdictCounterexample
	o.Detail = cex.Summary()
	switch c := cex.(type) {
	case network.BaseCounterexample:
		o.Node = string(c.Node)
	case network.InductiveCounterexample:
		o.Node = string(c.Node)
	case network.SafetyCounterexample:
		o.Node = string(c.Node)
	}
	return o
}

func writeReport(f *Formatter, rep *report.Report) error {
	if f.JSON() {
		doc, err := rep.MarshalCanonical()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render report", err)
		}
		if _, err := f.Writer.Write(append(doc, '\n')); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
		return nil
	}
	if err := rep.WriteText(f.Writer); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	return nil
}
