package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codectx/internal/mcpserver"
	"codectx/internal/tools"
)

// mcpCmd serves the tools over the Model Context Protocol
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the retrieval tools over MCP on stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout, exposing query,
ls, vectorise, files_ls and files_rm to any MCP-capable host.

Stdout carries the protocol stream; logs go to stderr or to the configured
log file. Register it in a host's MCP settings as:

  {"command": "codectx", "args": ["mcp"]}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.New(tools.BuildRegistry(adapter), logger)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	logger.Info("mcp server stopped", zap.Int("conversations", adapter.Manager().Count()))
	return nil
}
