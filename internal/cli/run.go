package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alberdingk-thijm/Timepiece/internal/runlog"
	"github.com/alberdingk-thijm/Timepiece/internal/solver"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// Oracle overrides the solver, for testing. Nil selects Z3.
	Oracle solver.Oracle
}

// NewRunCommand creates the run command, which executes every check in a
// YAML run config.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run every check in a YAML run config",
		Long: `Run a batch of verifications described by a YAML config:

  database: runs.db        # optional run log
  timeout: 30s             # optional per-query solver timeout
  checks:
    - network: path
      size: 10
    - network: fault-tolerant
      monolithic: true

Checks run in order; the command keeps going after a counterexample and
exits 1 if any check failed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args[0])
		},
	}
}

func runBatch(cmd *cobra.Command, opts *RunOptions, path string) error {
	f := &Formatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		return renderError(f, WrapExitError(ExitCommandError, "failed to load run config", err))
	}

	var store *runlog.Store
	if cfg.Database != "" {
		store, err = runlog.Open(cfg.Database)
		if err != nil {
			return renderError(f, WrapExitError(ExitCommandError, "failed to open run log", err))
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing run log", "error", closeErr)
			}
		}()
	}

	failed := 0
	for i, check := range cfg.Checks {
		if i > 0 && !f.JSON() {
			if _, err := fmt.Fprintln(f.Writer); err != nil {
				return WrapExitError(ExitCommandError, "failed to write report", err)
			}
		}

		f.VerboseLog("check %d of %d: %s", i+1, len(cfg.Checks), check.Network)
		rep, err := executeCheck(cmd.Context(), checkRequest{
			Network:    check.Network,
			Size:       check.Size,
			Monolithic: check.Monolithic,
			Timeout:    cfg.Timeout,
			Oracle:     opts.Oracle,
		}, store)
		if err != nil {
			return renderError(f, err)
		}
		if err := writeReport(f, rep); err != nil {
			return err
		}
		if !rep.Proved() {
			failed++
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d checks found a counterexample", failed, len(cfg.Checks)))
	}
	return nil
}
