package cmd

import (
	"github.com/huangsam/ghsnap/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the ghsnap MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents read summaries and rankings
from the output directory. The tools never call the GitHub API.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
