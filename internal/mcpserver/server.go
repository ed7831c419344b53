// Package mcpserver exposes the retrieval tools over the Model Context
// Protocol, so MCP-capable hosts can call them without linking this module.
// Tool definitions come straight from the tools registry; this package only
// translates between the two surfaces.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"codectx/internal/tools"
	"codectx/internal/version"
)

// Server serves a tool registry over the MCP stdio transport.
type Server struct {
	registry *tools.Registry
	server   *mcp.Server
	logger   *zap.Logger
}

// New builds an MCP server mirroring every tool in the registry.
func New(registry *tools.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: registry,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "codectx",
			Version: version.Version,
		}, nil),
		logger: logger,
	}
	s.registerTools()
	return s
}

// Run serves on stdio until ctx is canceled or the client disconnects.
// Stdout carries the protocol stream, so nothing else may write to it.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving retrieval tools over MCP",
		zap.Strings("tools", s.registry.Names()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	for _, name := range s.registry.Names() {
		tool := s.registry.Get(name)
		s.server.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema(tool.Schema),
		}, s.handlerFor(tool))
	}
}

// handlerFor adapts one registry tool to the protocol handler signature.
// Tool failures are reported inside the result with IsError set, not as
// protocol-level errors, so the calling model can see them and correct
// itself.
func (s *Server) handlerFor(tool *tools.Tool) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]any)
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(tool.Name, fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		result, err := s.registry.ExecuteTool(ctx, tool, args)
		if err != nil {
			s.logger.Warn("tool call failed",
				zap.String("tool", tool.Name),
				zap.Error(err))
			return errorResult(tool.Name, err), nil
		}

		s.logger.Debug("tool call served",
			zap.String("tool", tool.Name),
			zap.Int64("duration_ms", result.DurationMs))
		return textResult(result.Result), nil
	}
}

// inputSchema converts a registry tool schema into the protocol's JSON
// schema representation.
func inputSchema(schema tools.ToolSchema) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(schema.Properties))
	for name, prop := range schema.Properties {
		ps := &jsonschema.Schema{
			Type:        prop.Type,
			Description: prop.Description,
		}
		if prop.Items != nil {
			ps.Items = &jsonschema.Schema{Type: prop.Items.Type}
		}
		properties[name] = ps
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   schema.Required,
	}
}
