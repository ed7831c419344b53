package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// BuildRegistry registers the five retrieval operations against the adapter
// and returns the registry. Both the MCP surface and embedding hosts consume
// tools from here.
func BuildRegistry(a *Adapter) *Registry {
	r := NewRegistry()
	r.MustRegister(queryTool(a))
	r.MustRegister(lsTool(a))
	r.MustRegister(vectoriseTool(a))
	r.MustRegister(filesLsTool(a))
	r.MustRegister(filesRmTool(a))
	return r
}

// decodeArgs maps loosely-typed tool arguments onto a request struct.
func decodeArgs(args map[string]any, dst any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgType, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgType, err)
	}
	return nil
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

func queryTool(a *Adapter) *Tool {
	return &Tool{
		Name: "query",
		Description: "Search the vectorised codebase for source snippets relevant to the given terms. " +
			"Results already shown in this conversation are filtered out.",
		Category: CategoryRetrieval,
		Schema: ToolSchema{
			Required: []string{"query"},
			Properties: map[string]Property{
				"query": {
					Type:        "array",
					Description: "Search terms. Use several distinct terms for better recall.",
					Items:       &PropertyItems{Type: "string"},
				},
				"count": {
					Type:        "integer",
					Description: "Number of results to request. Omit to use the configured default.",
				},
				"project_root": {
					Type:        "string",
					Description: "Directory of the indexed project to search. Omit to infer.",
				},
				"conversation_id": {
					Type:        "string",
					Description: "Conversation identifier used to scope de-duplication.",
				},
				"summarize": {
					Type:        "boolean",
					Description: "Override the configured summarization setting for this call.",
				},
				"absolute": {
					Type:        "boolean",
					Description: "Return absolute file paths.",
				},
				"options": {
					Type:        "object",
					Description: "Partial tool options overlay for this call.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var req QueryRequest
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			resp, err := a.Query(ctx, req)
			if err != nil {
				return "", err
			}
			return marshalResult(resp)
		},
	}
}

func lsTool(a *Adapter) *Tool {
	return &Tool{
		Name:        "ls",
		Description: "List the vectorised projects known to the retrieval service.",
		Category:    CategoryRetrieval,
		Schema: ToolSchema{
			Properties: map[string]Property{
				"project_root": {
					Type:        "string",
					Description: "Restrict the listing to this project directory.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var req LsRequest
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			collections, err := a.Ls(ctx, req)
			if err != nil {
				return "", err
			}
			return marshalResult(collections)
		},
	}
}

func vectoriseTool(a *Adapter) *Tool {
	return &Tool{
		Name: "vectorise",
		Description: "Add files to the project index or refresh their embeddings. " +
			"Paths that do not exist are skipped.",
		Category: CategoryIndex,
		Schema: ToolSchema{
			Required: []string{"paths"},
			Properties: map[string]Property{
				"paths": {
					Type:        "array",
					Description: "Files to vectorise.",
					Items:       &PropertyItems{Type: "string"},
				},
				"project_root": {
					Type:        "string",
					Description: "Project directory owning the index. Omit to infer.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var req VectoriseRequest
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			result, err := a.Vectorise(ctx, req)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func filesLsTool(a *Adapter) *Tool {
	return &Tool{
		Name:        "files_ls",
		Description: "List the files currently present in a project's index.",
		Category:    CategoryRetrieval,
		Schema: ToolSchema{
			Properties: map[string]Property{
				"project_root": {
					Type:        "string",
					Description: "Project directory owning the index. Omit to infer.",
				},
				"absolute": {
					Type:        "boolean",
					Description: "Return absolute file paths.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var req FilesLsRequest
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			paths, err := a.FilesLs(ctx, req)
			if err != nil {
				return "", err
			}
			return marshalResult(paths)
		},
	}
}

func filesRmTool(a *Adapter) *Tool {
	return &Tool{
		Name:        "files_rm",
		Description: "Remove files from a project's index. The files themselves are not touched.",
		Category:    CategoryIndex,
		Schema: ToolSchema{
			Required: []string{"paths"},
			Properties: map[string]Property{
				"paths": {
					Type:        "array",
					Description: "Files to drop from the index.",
					Items:       &PropertyItems{Type: "string"},
				},
				"project_root": {
					Type:        "string",
					Description: "Project directory owning the index. Omit to infer.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var req FilesRmRequest
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			result, err := a.FilesRm(ctx, req)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}
