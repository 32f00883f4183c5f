package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litrag/internal/adapters/driving/mcp"
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
passages from the indexed literature and ask grounded questions.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:
  retrieve  - top-k chunks for a query
  ask       - answer a question from retrieved context

Resources:
  litrag://corpus/stats
  litrag://chunks/{chunkId}

Examples:
  # Stdio mode (default)
  litrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  litrag mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "litrag": {
        "command": "/path/to/litrag",
        "args": ["mcp", "serve"]
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
	if retrievalService == nil || indexService == nil {
		return errors.New("retrieval service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
		Index:     indexService,
	})
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
