package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/flow/validate"
)

func newValidateCmd() *cobra.Command {
	var src source

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a flow for structural problems",
		Long: `Validate runs the structural checks a flow must pass before it is saved
and prints one line per diagnostic. It exits non-zero when the flow is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := src.read(cmd.Context(), cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			report := validate.Graph(*g)
			out := cmd.OutOrStdout()
			for _, d := range report.Diagnostics {
				fmt.Fprintln(out, d)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("%d problem(s) found: %w", len(report.Diagnostics), err)
			}
			loggerFromContext(cmd.Context()).Info("flow is valid", "nodes", len(g.Nodes), "edges", len(g.Edges))
			return nil
		},
	}
	cmd.Flags().StringVar(&src.owner, "owner", "", "read the owner's flow from the remote service")
	return cmd
}
