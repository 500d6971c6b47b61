package cmd

import (
	"github.com/personalens/personalens/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the PersonaLens MCP server",
	Long:  `Launch an MCP server that allows AI agents to run consistency analyses via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Analysis headers are suppressed per tool call since stdio carries the protocol
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
