// Package summary condenses a retrieval batch into a short narrative via a
// single off-path language-model call, with a deterministic serialization as
// the fallback. Nothing in this package raises an error to its caller: every
// failure path degrades to the serialized batch.
package summary

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"codectx/internal/options"
	"codectx/internal/types"
)

// Orchestrator decides per invocation whether to summarize and performs the
// model call. A nil client disables summarization outright.
type Orchestrator struct {
	client LLMClient
	logger *zap.Logger
}

// NewOrchestrator returns an orchestrator backed by client. Both arguments
// may be nil.
func NewOrchestrator(client LLMClient, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{client: client, logger: logger}
}

// Summarize reduces results to a condensed narrative when opts enable it and
// the batch clears the size threshold; otherwise, and on any model failure
// or empty response, it returns the deterministic serialization of results.
func (o *Orchestrator) Summarize(ctx context.Context, results []types.RetrievalResult, query []string, opts options.SummarizeOptions) string {
	serialized := Serialize(results)

	if !opts.Enabled || o.client == nil || len(results) == 0 {
		return serialized
	}
	if opts.Threshold > 0 && len(results) < opts.Threshold {
		return serialized
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = options.DefaultSystemPrompt
	}
	if opts.QueryAugmented && len(query) > 0 {
		systemPrompt += "\n\nThe query that produced these fragments was: " + strings.Join(query, " ")
	}

	response, err := o.client.CompleteWithSystem(ctx, systemPrompt, serialized)
	if err != nil {
		o.logger.Warn("summarization failed, using raw serialization",
			zap.Int("results", len(results)),
			zap.Error(err))
		return serialized
	}

	response = strings.TrimSpace(response)
	if response == "" {
		o.logger.Warn("summarization returned empty response, using raw serialization",
			zap.Int("results", len(results)))
		return serialized
	}
	return response
}
