package cli

import (
	"github.com/okian/taskflow/internal/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(rt *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the taskflow MCP server on stdio.",
		Long:  `Launch an MCP server that lets AI agents ask for assignee recommendations and team capacity.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Logs already go to stderr; stdout carries the protocol.
			svc, err := rt.startService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			return mcp.StartMCPServer(cmd.Context(), svc)
		},
	}
}
