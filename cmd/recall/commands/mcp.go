// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use recall via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs recall as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to record exchanges and retrieve memories
via stdio.

Configure in Claude Desktop's config file to enable memory tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  recall mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "recall": {
  #       "command": "recall",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background condensation, including the resweep of turns left
	// unindexed by a previous run.
	engine.Start(ctx)

	server := mcpserver.NewMCPServer(
		"Recall Memory Engine",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, engine)

	if !quiet {
		log.Println("Recall MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		engine.Stop()
		if err := store.Close(); err != nil {
			log.Printf("Warning: Error closing storage: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}
	case err := <-serverErr:
		engine.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
