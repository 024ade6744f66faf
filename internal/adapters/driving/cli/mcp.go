package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can retrieve
attributed context from the index.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  docrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docrag mcp serve --port 8081

Client configuration:
  {
    "mcpServers": {
      "docrag": {
        "command": "/path/to/docrag",
        "args": ["mcp", "serve", "--config", "/path/to/docrag.toml"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	query, closeFn, err := newQueryService(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	server, err := mcp.NewServer(&mcp.Ports{Query: query})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
