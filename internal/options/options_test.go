package options

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestCountUnmarshalScalar(t *testing.T) {
	var c Count
	if err := json.Unmarshal([]byte(`5`), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !c.IsScalar() || c.Value() != 5 {
		t.Errorf("expected scalar 5, got %+v", c)
	}
}

func TestCountUnmarshalComposite(t *testing.T) {
	var c Count
	if err := json.Unmarshal([]byte(`{"chunk": 30, "document": 10}`), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if c.IsScalar() {
		t.Fatal("composite count must not report scalar")
	}
	chunkN, err := c.Resolve(true)
	if err != nil || chunkN != 30 {
		t.Errorf("chunk branch = %d, %v", chunkN, err)
	}
	docN, err := c.Resolve(false)
	if err != nil || docN != 10 {
		t.Errorf("document branch = %d, %v", docN, err)
	}
}

func TestCountUnmarshalYAML(t *testing.T) {
	var scalar Count
	if err := yaml.Unmarshal([]byte(`-1`), &scalar); err != nil {
		t.Fatalf("scalar yaml: %v", err)
	}
	if scalar.Value() != -1 {
		t.Errorf("scalar = %d", scalar.Value())
	}

	var pair Count
	if err := yaml.Unmarshal([]byte("chunk: 7\ndocument: 3\n"), &pair); err != nil {
		t.Fatalf("composite yaml: %v", err)
	}
	n, err := pair.Resolve(true)
	if err != nil || n != 7 {
		t.Errorf("chunk branch = %d, %v", n, err)
	}
}

func TestCountResolveMissingBranch(t *testing.T) {
	var c Count
	if err := json.Unmarshal([]byte(`{"document": 10}`), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, err := c.Resolve(true); !errors.Is(err, ErrAmbiguousCount) {
		t.Errorf("expected ErrAmbiguousCount, got %v", err)
	}
}

func TestCountMarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(CountByMode(30, 10))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back Count
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Equal(CountByMode(30, 10)) {
		t.Errorf("round trip lost value: %s", data)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := ToolOptions{
		Backend:        BackendSession,
		MaxResults:     CountByMode(20, 5),
		DefaultResults: CountByMode(8, 4),
		ChunkMode:      true,
		Summarize:      SummarizeOptions{Enabled: true},
	}

	once, err := Normalize(raw)
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("normalize not idempotent (-first +second):\n%s", diff)
	}

	if !once.MaxResults.IsScalar() || once.MaxResults.Value() != 20 {
		t.Errorf("max_results did not collapse to chunk branch: %+v", once.MaxResults)
	}
	if once.DefaultResults.Value() != 8 {
		t.Errorf("default_results = %d, want 8", once.DefaultResults.Value())
	}
	if once.Summarize.SystemPrompt == "" {
		t.Error("system prompt not defaulted")
	}
}

func TestNormalizeDefaultsBackend(t *testing.T) {
	normalized, err := Normalize(ToolOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if normalized.Backend != BackendProcess {
		t.Errorf("backend = %q, want process default", normalized.Backend)
	}
	if normalized.MaxResults.Value() != -1 {
		t.Errorf("max_results = %d, want unbounded", normalized.MaxResults.Value())
	}
	if normalized.DefaultResults.Value() != 10 {
		t.Errorf("default_results = %d, want 10", normalized.DefaultResults.Value())
	}
	if !normalized.DedupeEnabled() {
		t.Error("dedupe must default to enabled")
	}
}

func TestNormalizeRejectsUnknownBackend(t *testing.T) {
	_, err := Normalize(ToolOptions{Backend: "carrier-pigeon"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestNormalizeRejectsAmbiguousComposite(t *testing.T) {
	var c Count
	if err := json.Unmarshal([]byte(`{"chunk": 30}`), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	_, err := Normalize(ToolOptions{MaxResults: c, ChunkMode: false})
	if !errors.Is(err, ErrAmbiguousCount) {
		t.Errorf("expected ErrAmbiguousCount, got %v", err)
	}
}

func TestMergeLayersPartialPayload(t *testing.T) {
	merged, err := Merge(Defaults(), []byte(`{"chunk_mode": true, "summarize": {"enabled": true}}`))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !merged.ChunkMode {
		t.Error("chunk_mode not applied")
	}
	if !merged.Summarize.Enabled {
		t.Error("summarize.enabled not applied")
	}
	// Untouched keys keep their defaults.
	if merged.Backend != BackendProcess {
		t.Errorf("backend = %q, want inherited default", merged.Backend)
	}
	if merged.DefaultResults.Value() != 10 {
		t.Errorf("default_results = %d, want inherited 10", merged.DefaultResults.Value())
	}
	if !merged.DedupeEnabled() {
		t.Error("dedupe default lost in merge")
	}
}

func TestMergeRejectsGarbage(t *testing.T) {
	if _, err := Merge(Defaults(), []byte(`{"max_results": "many"`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestMergeEmptyPayloadKeepsBase(t *testing.T) {
	merged, err := Merge(Defaults(), nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if diff := cmp.Diff(Defaults(), merged); diff != "" {
		t.Errorf("empty payload changed base (-want +got):\n%s", diff)
	}
}
