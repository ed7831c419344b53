package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codectx/internal/tools"
)

var (
	queryCount        int
	queryConversation string
	queryChunks       bool
	queryAbsolute     bool
	querySummarize    bool
)

// queryCmd searches the vector index
var queryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the project's vector index",
	Long: `Searches the vectorised project for the given terms and prints the
matching files or chunks.

Repeated queries in the same conversation skip results the conversation has
already seen. Use --conversation to name one; without it every invocation
starts fresh.

Example:
  codectx query http router
  codectx query -n 5 --chunks "token refresh"
  codectx query --conversation fix-1234 retry backoff`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryCount, "count", "n", 0, "Number of results (default: configured default)")
	queryCmd.Flags().StringVar(&queryConversation, "conversation", "", "Conversation ID scoping de-duplication")
	queryCmd.Flags().BoolVar(&queryChunks, "chunks", false, "Return individual chunks instead of whole documents")
	queryCmd.Flags().BoolVar(&queryAbsolute, "absolute", false, "Return absolute result paths")
	queryCmd.Flags().BoolVar(&querySummarize, "summarize", false, "Summarize the result batch (overrides config)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	req := tools.QueryRequest{
		Query:          args,
		Count:          queryCount,
		ProjectRoot:    projectRoot,
		Absolute:       queryAbsolute,
		ConversationID: queryConversation,
	}
	if cmd.Flags().Changed("summarize") {
		req.Summarize = &querySummarize
	}
	if queryChunks {
		req.Options = json.RawMessage(`{"chunk_mode": true}`)
	}

	logger.Debug("running query",
		zap.Strings("terms", args),
		zap.String("conversation", queryConversation))

	resp, err := adapter.Query(ctx, req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if pipeOutput {
		return printJSON(resp)
	}
	renderQueryResponse(resp)
	return nil
}
