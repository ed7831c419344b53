// Package dedupe filters retrieval results against what a conversation has
// already seen. Each Filter owns one conversation's seen-set; whoever manages
// conversation lifecycle constructs the Filter and passes it into every call,
// so there is no process-wide table keyed by opaque session identifiers.
package dedupe

import (
	"sync"

	"codectx/internal/types"
)

// Filter accumulates the identifiers a conversation has been shown. The
// seen-set only ever grows; entries are never removed while the conversation
// lives. Safe for concurrent use.
type Filter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{seen: make(map[string]struct{})}
}

// Apply returns the results not yet surfaced in this conversation. An item's
// identifier is its chunk ID when present, else its path; it is retained iff
// the identifier appears neither in existing (identifiers already visible in
// the conversation) nor in the accumulated seen-set. Retained identifiers are
// recorded as a side effect, the only mutation this package performs.
//
// Chunk-mode items without a chunk ID cannot be distinguished reliably and
// are always retained without being recorded.
func (f *Filter) Apply(results []types.RetrievalResult, existing []string) []types.RetrievalResult {
	visible := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		visible[id] = struct{}{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	kept := make([]types.RetrievalResult, 0, len(results))
	for _, r := range results {
		if r.Chunk != "" && r.ChunkID == "" {
			kept = append(kept, r)
			continue
		}
		id := r.Identifier()
		if _, ok := visible[id]; ok {
			continue
		}
		if _, ok := f.seen[id]; ok {
			continue
		}
		f.seen[id] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}

// Seen reports whether an identifier has been recorded.
func (f *Filter) Seen(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[id]
	return ok
}

// Size returns the number of recorded identifiers.
func (f *Filter) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
