package summary

import (
	"testing"

	"codectx/internal/types"
)

func intPtr(n int) *int { return &n }

func TestSerializeChunkWithRange(t *testing.T) {
	results := []types.RetrievalResult{
		{Path: "src/a.py", Chunk: "def f():\n    pass", ChunkID: "c-1", StartLine: intPtr(10), EndLine: intPtr(11)},
	}
	want := "<path>src/a.py</path>\n<chunk start=10 end=11>\ndef f():\n    pass\n</chunk>\n"
	if got := Serialize(results); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeChunkWithoutRange(t *testing.T) {
	results := []types.RetrievalResult{{Path: "a.py", Chunk: "x = 1"}}
	want := "<path>a.py</path>\n<chunk>\nx = 1\n</chunk>\n"
	if got := Serialize(results); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeDocument(t *testing.T) {
	results := []types.RetrievalResult{{Path: "b.py", Document: "print(1)"}}
	want := "<path>b.py</path>\n<document>\nprint(1)\n</document>\n"
	if got := Serialize(results); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeSeparatesResults(t *testing.T) {
	results := []types.RetrievalResult{
		{Path: "a.py", Document: "1"},
		{Path: "b.py", Document: "2"},
	}
	want := "<path>a.py</path>\n<document>\n1\n</document>\n\n<path>b.py</path>\n<document>\n2\n</document>\n"
	if got := Serialize(results); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeEmpty(t *testing.T) {
	if got := Serialize(nil); got != "" {
		t.Errorf("Serialize(nil) = %q, want empty", got)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	results := []types.RetrievalResult{
		{Path: "a.py", Chunk: "x", StartLine: intPtr(1), EndLine: intPtr(2)},
		{Path: "b.py", Document: "y"},
	}
	first := Serialize(results)
	for i := 0; i < 5; i++ {
		if got := Serialize(results); got != first {
			t.Fatal("serialization is not deterministic")
		}
	}
}
