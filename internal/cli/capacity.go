package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCapacityCmd(rt *settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Show each member's workload and the team totals.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != OutputTable && output != OutputJSON {
				return fmt.Errorf("unknown output %q: want %s or %s", output, OutputTable, OutputJSON)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			svc, err := rt.startService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			overview, err := svc.CapacityOverview(ctx)
			if err != nil {
				return err
			}
			if output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), overview)
			}
			return writeCapacity(cmd.OutOrStdout(), overview)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table or json")
	return cmd
}
