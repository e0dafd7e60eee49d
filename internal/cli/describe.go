package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/flow"
)

func newDescribeCmd() *cobra.Command {
	var src source

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print the plain-text description of a flow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := src.read(cmd.Context(), cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), flow.Describe(*g))
			return err
		},
	}
	cmd.Flags().StringVar(&src.owner, "owner", "", "read the owner's flow from the remote service")
	return cmd
}
