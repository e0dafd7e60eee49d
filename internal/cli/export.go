package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/flow"
)

func newExportCmd() *cobra.Command {
	var (
		src    source
		format string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Re-encode a flow as JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := src.read(cmd.Context(), cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return flow.Encode(cmd.OutOrStdout(), *g)
			case "yaml", "yml":
				return flow.EncodeYAML(cmd.OutOrStdout(), *g)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&src.owner, "owner", "", "read the owner's flow from the remote service")
	return cmd
}
