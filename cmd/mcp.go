package cmd

import (
	"github.com/mccforecast/fcst/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the fcst MCP server",
	Long:  `Launch an MCP server that allows AI agents to evaluate forecasts and convert data via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdio carries the protocol, so progress output must stay off it
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		cfg.Quiet = true
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
