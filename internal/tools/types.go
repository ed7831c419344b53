// Package tools exposes the retrieval operations as registerable tools for
// chat-agent hosts. The Adapter turns a structured invocation into a
// well-formed request for the retrieval service and enforces result-count
// policy; the Registry gives hosts name-based lookup and argument-validated
// execution over the five operations (query, ls, vectorise, files_ls,
// files_rm).
package tools

import "context"

// ToolCategory classifies tools for host-side filtering.
type ToolCategory string

const (
	// CategoryRetrieval covers read-only operations against the index.
	CategoryRetrieval ToolCategory = "/retrieval"

	// CategoryIndex covers operations that mutate the index.
	CategoryIndex ToolCategory = "/index"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments. It drives both
// host-side LLM tool calling and the MCP surface.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution. The returned string is
// the JSON payload handed back to the host.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one registerable operation.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does, phrased for LLM tool calling.
	Description string

	// Category classifies the tool for host filtering.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps one execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the JSON payload produced on success.
	Result string

	// Error is the terminal outcome when execution failed.
	Error error

	// DurationMs is the wall-clock execution time.
	DurationMs int64
}

// IsSuccess reports whether the execution completed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
