package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(n int) *int { return &n }

func TestDecodeRetrievalResults(t *testing.T) {
	payload := []byte(`[
		{"path": "src/a.py", "chunk": "def f():", "chunk_id": "c-1", "start_line": 10, "end_line": 12},
		{"path": "src/b.py", "document": "print(1)"}
	]`)

	results, err := DecodeRetrievalResults(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	want := []RetrievalResult{
		{Path: "src/a.py", Chunk: "def f():", ChunkID: "c-1", StartLine: intPtr(10), EndLine: intPtr(12)},
		{Path: "src/b.py", Document: "print(1)"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRetrievalResultsRejectsAmbiguousEntry(t *testing.T) {
	payload := []byte(`[{"path": "a.py", "document": "x", "chunk": "y"}]`)
	if _, err := DecodeRetrievalResults(payload); err == nil {
		t.Fatal("expected error for entry carrying both document and chunk")
	}
}

func TestDecodeRetrievalResultsMalformed(t *testing.T) {
	if _, err := DecodeRetrievalResults([]byte(`{"not": "an array"`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestIdentifierPrefersChunkID(t *testing.T) {
	tests := []struct {
		name   string
		result RetrievalResult
		want   string
	}{
		{"chunk id present", RetrievalResult{Path: "a.py", ChunkID: "c-9"}, "c-9"},
		{"chunk id absent", RetrievalResult{Path: "a.py"}, "a.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Identifier(); got != tt.want {
				t.Errorf("Identifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasLineRange(t *testing.T) {
	full := RetrievalResult{StartLine: intPtr(1), EndLine: intPtr(3)}
	if !full.HasLineRange() {
		t.Error("expected line range to be reported")
	}
	partial := RetrievalResult{StartLine: intPtr(1)}
	if partial.HasLineRange() {
		t.Error("partial metadata must not count as a line range")
	}
}

func TestContent(t *testing.T) {
	if got := (RetrievalResult{Chunk: "frag"}).Content(); got != "frag" {
		t.Errorf("chunk content = %q", got)
	}
	if got := (RetrievalResult{Document: "whole"}).Content(); got != "whole" {
		t.Errorf("document content = %q", got)
	}
}

func TestDecodeCollections(t *testing.T) {
	payload := []byte(`[{"project-root": "/home/u/proj", "size": 42, "num_files": 7, "embedding_function": "SentenceTransformer"}]`)
	collections, err := DecodeCollections(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(collections) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(collections))
	}
	c := collections[0]
	if c.ProjectRoot != "/home/u/proj" || c.Size != 42 || c.NumFiles != 7 || c.EmbeddingFunction != "SentenceTransformer" {
		t.Errorf("unexpected collection: %+v", c)
	}
}

func TestDecodeFileList(t *testing.T) {
	paths, err := DecodeFileList([]byte(`["a.go", "b/c.go"]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a.go", "b/c.go"}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMutationResult(t *testing.T) {
	m, err := DecodeMutationResult([]byte(`{"add": 3, "update": 1, "removed": 2}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := MutationResult{Added: 3, Updated: 1, Removed: 2}
	if m != want {
		t.Errorf("got %+v, want %+v", m, want)
	}
	if got := m.String(); got != "3 added, 1 updated, 2 removed, 0 skipped, 0 failed" {
		t.Errorf("String() = %q", got)
	}
}
