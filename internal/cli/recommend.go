package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRecommendCmd(rt *settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "recommend <TASK-KEY>",
		Short: "Rank team members for a task.",
		Long: `Rank team members for a task by skill fit (70%) and remaining capacity (30%).

Each candidate comes with the skills they hold, their current load and the
points they have left this sprint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			res, err := svc.Recommend(ctx, args[0])
			if err != nil {
				return err
			}
			if output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeRecommendations(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table or json")
	return cmd
}
