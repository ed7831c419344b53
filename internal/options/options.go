// Package options defines the tool-level configuration surface and its
// normalization rules. Hosts hand the tool adapter a partial options payload;
// Merge layers it over the defaults key-by-key and Normalize collapses the
// mode-dependent fields so that everything downstream sees plain values.
package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend selector.
const (
	BackendSession = "session"
	BackendProcess = "process"
)

// DefaultSystemPrompt seeds the summarization request when the host supplies
// no prompt of its own.
const DefaultSystemPrompt = "You are a code comprehension assistant. " +
	"Summarise the retrieved source fragments into a short technical briefing " +
	"for another engineer: what each file contributes, how the pieces relate, " +
	"and anything directly relevant to the stated query. Always keep file " +
	"paths verbatim. Do not invent code that is not in the fragments."

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrAmbiguousCount = errors.New("composite count missing branch for active mode")
)

// Count is a result-count setting: either a single integer or a pair of
// per-mode integers ({chunk, document}) that collapses to one of its branches
// during normalization. A negative value means unbounded. The zero Count is
// "unset" and inherits whatever default it is merged over.
type Count struct {
	scalar   *int
	chunk    *int
	document *int
}

// CountOf returns a plain integer count.
func CountOf(n int) Count {
	return Count{scalar: &n}
}

// CountByMode returns a composite count with separate chunk-mode and
// document-mode values.
func CountByMode(chunk, document int) Count {
	return Count{chunk: &chunk, document: &document}
}

// IsZero reports whether the count is unset.
func (c Count) IsZero() bool {
	return c.scalar == nil && c.chunk == nil && c.document == nil
}

// IsScalar reports whether the count has already collapsed to a plain
// integer.
func (c Count) IsScalar() bool {
	return c.scalar != nil
}

// Value returns the plain integer of a scalar count. It is only meaningful
// after normalization; composite or unset counts report zero.
func (c Count) Value() int {
	if c.scalar != nil {
		return *c.scalar
	}
	return 0
}

// Equal reports whether two counts denote the same setting.
func (c Count) Equal(o Count) bool {
	eq := func(a, b *int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	}
	return eq(c.scalar, o.scalar) && eq(c.chunk, o.chunk) && eq(c.document, o.document)
}

// Resolve collapses the count to a plain integer for the given mode. A
// composite count lacking the branch for the active mode is a configuration
// error, never a silent coercion.
func (c Count) Resolve(chunkMode bool) (int, error) {
	if c.scalar != nil {
		return *c.scalar, nil
	}
	if chunkMode {
		if c.chunk == nil {
			return 0, fmt.Errorf("%w: chunk", ErrAmbiguousCount)
		}
		return *c.chunk, nil
	}
	if c.document == nil {
		return 0, fmt.Errorf("%w: document", ErrAmbiguousCount)
	}
	return *c.document, nil
}

type compositeCount struct {
	Chunk    *int `json:"chunk" yaml:"chunk"`
	Document *int `json:"document" yaml:"document"`
}

// UnmarshalJSON accepts either a bare integer or a {chunk, document} object.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = CountOf(n)
		return nil
	}
	var pair compositeCount
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("count must be an integer or a {chunk, document} object: %w", err)
	}
	*c = Count{chunk: pair.Chunk, document: pair.Document}
	return nil
}

// MarshalJSON emits the scalar form when collapsed, the composite form
// otherwise. Unset counts marshal as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if c.scalar != nil {
		return json.Marshal(*c.scalar)
	}
	if c.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(compositeCount{Chunk: c.chunk, Document: c.document})
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON.
func (c *Count) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*c = CountOf(n)
		return nil
	}
	var pair compositeCount
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("count must be an integer or a {chunk, document} mapping: %w", err)
	}
	*c = Count{chunk: pair.Chunk, document: pair.Document}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (c Count) MarshalYAML() (interface{}, error) {
	if c.scalar != nil {
		return *c.scalar, nil
	}
	if c.IsZero() {
		return nil, nil
	}
	return compositeCount{Chunk: c.chunk, Document: c.document}, nil
}

// SummarizeOptions controls the optional summarization step.
type SummarizeOptions struct {
	// Enabled turns summarization on; each invocation must still permit it.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Threshold suppresses summarization for batches smaller than this many
	// results. Zero summarizes every non-empty batch.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// QueryAugmented appends the original query terms to the system prompt.
	QueryAugmented bool `json:"query_augmented" yaml:"query_augmented"`
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// DedupeBeforeSummary additionally runs the de-duplication filter on the
	// batch before it is summarized. Off by default: a summary re-exposes the
	// same underlying content in compressed form, so hosts that want strict
	// no-repeat behavior must opt in.
	DedupeBeforeSummary bool `json:"dedupe_before_summary" yaml:"dedupe_before_summary"`
}

// ToolOptions is the full option surface of the retrieval tool.
type ToolOptions struct {
	Backend        string           `json:"backend,omitempty" yaml:"backend,omitempty"`
	MaxResults     Count            `json:"max_results,omitempty" yaml:"max_results,omitempty"`
	DefaultResults Count            `json:"default_results,omitempty" yaml:"default_results,omitempty"`
	Dedupe         *bool            `json:"dedupe,omitempty" yaml:"dedupe,omitempty"`
	ChunkMode      bool             `json:"chunk_mode" yaml:"chunk_mode"`
	Summarize      SummarizeOptions `json:"summarize" yaml:"summarize"`
}

// DedupeEnabled reports whether de-duplication applies. Unset means enabled.
func (o ToolOptions) DedupeEnabled() bool {
	return o.Dedupe == nil || *o.Dedupe
}

// Defaults returns the library defaults: process backend, ten results per
// query, unbounded cap, de-duplication on, summarization off.
func Defaults() ToolOptions {
	dedupe := true
	return ToolOptions{
		Backend:        BackendProcess,
		MaxResults:     CountOf(-1),
		DefaultResults: CountOf(10),
		Dedupe:         &dedupe,
	}
}

// Merge decodes a partial JSON options payload over a copy of base. Keys
// absent from the payload keep their base values, nested objects merge
// key-by-key, which matches the decode-over-defaults behavior of
// encoding/json.
func Merge(base ToolOptions, raw []byte) (ToolOptions, error) {
	merged := base
	if len(raw) == 0 {
		return merged, nil
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return ToolOptions{}, fmt.Errorf("invalid options payload: %w", err)
	}
	return merged, nil
}

// Normalize validates o and collapses every mode-dependent field: the backend
// falls back to the process default, composite counts resolve against
// ChunkMode, the dedupe flag becomes concrete, and the summarization prompt
// is filled in. Normalizing an already-normalized value returns it unchanged.
func Normalize(o ToolOptions) (ToolOptions, error) {
	out := o

	switch out.Backend {
	case "":
		out.Backend = BackendProcess
	case BackendSession, BackendProcess:
	default:
		return ToolOptions{}, fmt.Errorf("%w: %q", ErrUnknownBackend, out.Backend)
	}

	if out.MaxResults.IsZero() {
		out.MaxResults = Defaults().MaxResults
	}
	if out.DefaultResults.IsZero() {
		out.DefaultResults = Defaults().DefaultResults
	}

	maxN, err := out.MaxResults.Resolve(out.ChunkMode)
	if err != nil {
		return ToolOptions{}, fmt.Errorf("max_results: %w", err)
	}
	out.MaxResults = CountOf(maxN)

	defaultN, err := out.DefaultResults.Resolve(out.ChunkMode)
	if err != nil {
		return ToolOptions{}, fmt.Errorf("default_results: %w", err)
	}
	out.DefaultResults = CountOf(defaultN)

	if out.Dedupe == nil {
		dedupe := true
		out.Dedupe = &dedupe
	}
	if out.Summarize.SystemPrompt == "" {
		out.Summarize.SystemPrompt = DefaultSystemPrompt
	}
	return out, nil
}
