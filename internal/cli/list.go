package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alberdingk-thijm/Timepiece/internal/bench"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available benchmark networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &Formatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			names := bench.Names()
			if f.JSON() {
				return f.Success(names)
			}
			return f.Success(strings.Join(names, "\n"))
		},
	}
}
