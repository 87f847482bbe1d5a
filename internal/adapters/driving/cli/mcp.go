package cli

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/mcp"
)

var (
	mcpPort            int
	mcpHost            string
	mcpShutdownTimeout time.Duration
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recall to MCP clients",
	Long: `Serve the recall index to MCP clients.

Without --port the server speaks JSON-RPC over stdio, which is what
desktop assistants launch. With --port it serves streamable HTTP,
useful with MCP Inspector or a remote client.

Tools: search, search_with_context, similar_documents, add_document,
collections, collection_stats.
Resources: recall://collections, recall://collections/{name}/recent.

Examples:
  recall mcp serve
  recall mcp serve --port 8080 --host 0.0.0.0

Client configuration:
  {
    "mcpServers": {
      "recall": {"command": "/path/to/recall", "args": ["mcp", "serve"]}
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	flags := mcpServeCmd.Flags()
	flags.IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	flags.StringVar(&mcpHost, "host", "localhost", "HTTP bind host")
	flags.DurationVar(&mcpShutdownTimeout, "shutdown-timeout", mcp.DefaultShutdownTimeout,
		"time allowed for in-flight HTTP requests on shutdown")

	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Search:      searchService,
		Ingest:      ingestService,
		Collections: collectionService,
	}
	if admitter != nil {
		ports.Admission = admitter
	}

	server, err := mcp.NewServer(ports,
		mcp.WithVersion(version),
		mcp.WithShutdownTimeout(mcpShutdownTimeout),
	)
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
