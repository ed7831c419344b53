package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codectx/internal/conversation"
	"codectx/internal/options"
	"codectx/internal/runner"
	"codectx/internal/summary"
	"codectx/internal/types"
)

// collectionNotFoundPattern is the diagnostic the retrieval service prints
// when a project has never been vectorised.
const collectionNotFoundPattern = "no existing collection"

// Adapter turns structured tool invocations into retrieval jobs and applies
// the result policies: count capping, per-conversation de-duplication,
// optional summarization, and reference registration. Side effects are
// confined to the conversation state handed out by the Manager.
type Adapter struct {
	runner     runner.Runner
	manager    *conversation.Manager
	summarizer *summary.Orchestrator
	defaults   options.ToolOptions
	logger     *zap.Logger
}

// AdapterConfig wires an Adapter. Runner is required; everything else has a
// working zero value.
type AdapterConfig struct {
	Runner     runner.Runner
	Manager    *conversation.Manager
	Summarizer *summary.Orchestrator
	Defaults   options.ToolOptions
	Logger     *zap.Logger
}

// NewAdapter builds an adapter around the injected runner.
func NewAdapter(config AdapterConfig) (*Adapter, error) {
	if config.Runner == nil {
		return nil, fmt.Errorf("adapter requires a runner")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Manager == nil {
		config.Manager = conversation.NewManager(config.Logger)
	}
	if config.Summarizer == nil {
		config.Summarizer = summary.NewOrchestrator(nil, config.Logger)
	}
	return &Adapter{
		runner:     config.Runner,
		manager:    config.Manager,
		summarizer: config.Summarizer,
		defaults:   config.Defaults,
		logger:     config.Logger,
	}, nil
}

// Manager exposes the conversation manager so hosts can end conversations.
func (a *Adapter) Manager() *conversation.Manager { return a.manager }

// QueryRequest is one query invocation.
type QueryRequest struct {
	// Query holds the positional search terms.
	Query []string `json:"query"`
	// Count asks for this many results; zero falls back to the configured
	// default.
	Count int `json:"count,omitempty"`
	// ProjectRoot targets a specific indexed project. Empty means the
	// service infers it from its own context.
	ProjectRoot string `json:"project_root,omitempty"`
	// Absolute requests absolute result paths.
	Absolute bool `json:"absolute,omitempty"`
	// ConversationID scopes de-duplication and reference registration.
	ConversationID string `json:"conversation_id,omitempty"`
	// VisibleRefs are identifiers already visible in the conversation.
	VisibleRefs []string `json:"visible_refs,omitempty"`
	// Summarize overrides the configured summarization enablement for this
	// invocation; nil inherits it.
	Summarize *bool `json:"summarize,omitempty"`
	// Options overlays partial tool options for this invocation.
	Options json.RawMessage `json:"options,omitempty"`
}

// QueryResponse carries the post-policy result batch. Summary is set only
// when summarization ran; its text falls back to the deterministic
// serialization when the model call failed.
type QueryResponse struct {
	Results []types.RetrievalResult `json:"results"`
	Summary string                  `json:"summary,omitempty"`
	Count   int                     `json:"count"`
}

// LsRequest lists indexed projects.
type LsRequest struct {
	ProjectRoot string `json:"project_root,omitempty"`
}

// FilesLsRequest lists the files of an indexed project.
type FilesLsRequest struct {
	ProjectRoot string `json:"project_root,omitempty"`
	Absolute    bool   `json:"absolute,omitempty"`
}

// VectoriseRequest re-indexes the given files.
type VectoriseRequest struct {
	Paths       []string `json:"paths"`
	ProjectRoot string   `json:"project_root,omitempty"`
}

// FilesRmRequest removes files from the index.
type FilesRmRequest struct {
	Paths       []string `json:"paths"`
	ProjectRoot string   `json:"project_root,omitempty"`
}

// Query dispatches a retrieval query and applies the result pipeline:
// truncate to the normalized cap, de-duplicate against the conversation,
// optionally summarize, then register retained paths as references
// (skipped in chunk mode, where many chunks share one path).
func (a *Adapter) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	opts, err := a.resolveOptions(req.Options)
	if err != nil {
		return nil, err
	}
	if len(req.Query) == 0 {
		return nil, ErrMissingQuery
	}
	if err := validateProjectRoot(req.ProjectRoot); err != nil {
		return nil, err
	}

	conv := a.manager.Get(req.ConversationID)

	count := req.Count
	if count <= 0 {
		count = opts.DefaultResults.Value()
	}
	count = effectiveCap(count, opts.MaxResults.Value())

	include := "document"
	if opts.ChunkMode {
		include = "chunk"
	}

	args := append([]string{"query"}, req.Query...)
	args = append(args, "--pipe")
	if count > 0 {
		args = append(args, "-n", strconv.Itoa(count))
	}
	args = append(args, "--include", include)
	if req.ProjectRoot != "" {
		args = append(args, "--project_root", req.ProjectRoot)
	}
	if opts.DedupeEnabled() {
		if exclude := a.excludeList(ctx, conv, req.VisibleRefs); len(exclude) > 0 {
			args = append(args, "--exclude")
			args = append(args, exclude...)
		}
	}
	if req.Absolute {
		args = append(args, "--absolute")
	}

	a.logger.Debug("dispatching query",
		zap.Strings("terms", req.Query),
		zap.Int("count", count),
		zap.String("include", include),
		zap.String("conversation_id", conv.ID()))

	result, err := a.runner.Run(ctx, args)
	if err != nil {
		return nil, a.mapRunError(err, req.ProjectRoot)
	}

	results, err := types.DecodeRetrievalResults(result.Stdout)
	if err != nil {
		return nil, err
	}

	// The service is asked for count results via -n but may return more;
	// the cap holds regardless.
	results = Truncate(results, count)

	summarizing := summarizePermitted(req.Summarize, opts)
	if opts.DedupeEnabled() && (!summarizing || opts.Summarize.DedupeBeforeSummary) {
		results = conv.Filter().Apply(results, req.VisibleRefs)
	}

	resp := &QueryResponse{Results: results, Count: len(results)}
	if summarizing {
		resp.Summary = a.summarizer.Summarize(ctx, results, req.Query, opts.Summarize)
	}

	if !opts.ChunkMode {
		for _, r := range results {
			conv.AddReference(r.Path)
		}
	}
	return resp, nil
}

// Ls returns the collection metadata of every indexed project, unmodified.
func (a *Adapter) Ls(ctx context.Context, req LsRequest) ([]types.CollectionInfo, error) {
	if err := validateProjectRoot(req.ProjectRoot); err != nil {
		return nil, err
	}

	args := []string{"ls", "--pipe"}
	if req.ProjectRoot != "" {
		args = append(args, "--project_root", req.ProjectRoot)
	}

	result, err := a.runner.Run(ctx, args)
	if err != nil {
		return nil, a.mapRunError(err, req.ProjectRoot)
	}
	return types.DecodeCollections(result.Stdout)
}

// FilesLs returns the indexed file paths of a project, unmodified.
func (a *Adapter) FilesLs(ctx context.Context, req FilesLsRequest) ([]string, error) {
	if err := validateProjectRoot(req.ProjectRoot); err != nil {
		return nil, err
	}

	args := []string{"files", "ls", "--pipe"}
	if req.ProjectRoot != "" {
		args = append(args, "--project_root", req.ProjectRoot)
	}
	if req.Absolute {
		args = append(args, "--absolute")
	}

	result, err := a.runner.Run(ctx, args)
	if err != nil {
		return nil, a.mapRunError(err, req.ProjectRoot)
	}
	return types.DecodeFileList(result.Stdout)
}

// Vectorise re-indexes the supplied paths, dropping those that do not exist
// as regular files before dispatch.
func (a *Adapter) Vectorise(ctx context.Context, req VectoriseRequest) (types.MutationResult, error) {
	if err := validateProjectRoot(req.ProjectRoot); err != nil {
		return types.MutationResult{}, err
	}

	files := existingFiles(ctx, req.Paths)
	if len(files) == 0 {
		return types.MutationResult{}, ErrNoValidFiles
	}
	if dropped := len(req.Paths) - len(files); dropped > 0 {
		a.logger.Debug("dropped nonexistent paths before vectorise", zap.Int("dropped", dropped))
	}

	args := append([]string{"vectorise"}, files...)
	args = append(args, "--pipe")
	if req.ProjectRoot != "" {
		args = append(args, "--project_root", req.ProjectRoot)
	}

	result, err := a.runner.Run(ctx, args)
	if err != nil {
		return types.MutationResult{}, a.mapRunError(err, req.ProjectRoot)
	}
	return decodeMutation(result.Stdout)
}

// FilesRm removes the supplied paths from the index, dropping those that do
// not exist as regular files before dispatch.
func (a *Adapter) FilesRm(ctx context.Context, req FilesRmRequest) (types.MutationResult, error) {
	if err := validateProjectRoot(req.ProjectRoot); err != nil {
		return types.MutationResult{}, err
	}

	files := existingFiles(ctx, req.Paths)
	if len(files) == 0 {
		return types.MutationResult{}, ErrNoValidFiles
	}

	args := append([]string{"files", "rm"}, files...)
	args = append(args, "--pipe")
	if req.ProjectRoot != "" {
		args = append(args, "--project_root", req.ProjectRoot)
	}

	result, err := a.runner.Run(ctx, args)
	if err != nil {
		return types.MutationResult{}, a.mapRunError(err, req.ProjectRoot)
	}
	return decodeMutation(result.Stdout)
}

// Truncate caps results at max, preserving order. Negative max means
// unbounded.
func Truncate(results []types.RetrievalResult, max int) []types.RetrievalResult {
	if max < 0 || len(results) <= max {
		return results
	}
	return results[:max]
}

// effectiveCap bounds the requested count by the configured maximum.
// Negative values mean unbounded on either side.
func effectiveCap(requested, max int) int {
	if max >= 0 && (requested < 0 || requested > max) {
		return max
	}
	return requested
}

// resolveOptions overlays a per-invocation payload on the adapter defaults
// and normalizes the merged result.
func (a *Adapter) resolveOptions(raw json.RawMessage) (options.ToolOptions, error) {
	merged, err := options.Merge(a.defaults, raw)
	if err != nil {
		return options.ToolOptions{}, err
	}
	return options.Normalize(merged)
}

// summarizePermitted combines the configured enablement with the
// invocation-level override.
func summarizePermitted(override *bool, opts options.ToolOptions) bool {
	if !opts.Summarize.Enabled {
		return false
	}
	return override == nil || *override
}

// excludeList builds the --exclude identifiers: paths this conversation has
// already surfaced, restricted to files that still exist.
func (a *Adapter) excludeList(ctx context.Context, conv *conversation.Conversation, visible []string) []string {
	seen := make(map[string]struct{})
	var union []string
	for _, id := range append(conv.References(), visible...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		union = append(union, id)
	}
	return existingFiles(ctx, union)
}

// existingFiles filters paths to those that exist as regular files,
// preserving input order. Stat calls run concurrently.
func existingFiles(ctx context.Context, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	keep := make([]bool, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				keep[i] = true
			}
			return nil
		})
	}
	g.Wait()

	out := make([]string, 0, len(paths))
	for i, p := range paths {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// validateProjectRoot accepts an empty root (the caller resolves it) and
// otherwise requires an existing directory.
func validateProjectRoot(root string) error {
	if root == "" {
		return nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidProjectRoot, root)
	}
	return nil
}

// mapRunError rewrites recognized service diagnostics into actionable
// errors; everything else propagates with its original text.
func (a *Adapter) mapRunError(err error, projectRoot string) error {
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(exitErr.Stderr), collectionNotFoundPattern) {
		target := projectRoot
		if target == "" {
			target = "the current project"
		}
		return fmt.Errorf("%w: %s has not been vectorised yet; run the vectorise operation first", ErrCollectionNotFound, target)
	}
	return err
}

// decodeMutation tolerates an empty payload: some service versions print
// nothing for removals.
func decodeMutation(stdout []byte) (types.MutationResult, error) {
	if len(strings.TrimSpace(string(stdout))) == 0 {
		return types.MutationResult{}, nil
	}
	return types.DecodeMutationResult(stdout)
}
