package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult wraps an already-serialized payload as a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult reports a tool failure as a structured payload with IsError
// set. The envelope stays JSON so callers parse success and failure the
// same way.
func errorResult(toolName string, err error) *mcp.CallToolResult {
	payload, merr := json.Marshal(map[string]any{
		"success": false,
		"tool":    toolName,
		"error":   err.Error(),
	})
	if merr != nil {
		payload = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
	}
	result := textResult(string(payload))
	result.IsError = true
	return result
}
