// Package types provides the wire-level data shapes exchanged with the
// retrieval service: query results, collection listings, and index mutation
// outcomes. All shapes decode from the service's machine-readable (--pipe)
// JSON output; decoding is strict so a malformed payload surfaces as an error
// instead of a partially populated result.
package types

import (
	"encoding/json"
	"fmt"
)

// RetrievalResult is one retrieved match. Depending on the inclusion mode of
// the query, exactly one of Document (whole-file mode) or Chunk (fragment
// mode) is populated. ChunkID, when present, is stable across queries against
// the same index and is the preferred identity for de-duplication.
type RetrievalResult struct {
	Path      string `json:"path"`
	Document  string `json:"document,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	ChunkID   string `json:"chunk_id,omitempty"`
	StartLine *int   `json:"start_line,omitempty"`
	EndLine   *int   `json:"end_line,omitempty"`
}

// Identifier returns the de-duplication identity for the result: the chunk ID
// when the service provided one, otherwise the file path.
func (r RetrievalResult) Identifier() string {
	if r.ChunkID != "" {
		return r.ChunkID
	}
	return r.Path
}

// HasLineRange reports whether the result carries chunk line metadata.
// Results from older index formats may lack it even in chunk mode.
func (r RetrievalResult) HasLineRange() bool {
	return r.StartLine != nil && r.EndLine != nil
}

// Content returns whichever of Document or Chunk is populated.
func (r RetrievalResult) Content() string {
	if r.Chunk != "" {
		return r.Chunk
	}
	return r.Document
}

// CollectionInfo describes one indexed project as reported by the service's
// collection listing.
type CollectionInfo struct {
	ProjectRoot       string `json:"project-root"`
	Size              int    `json:"size"`
	NumFiles          int    `json:"num_files"`
	EmbeddingFunction string `json:"embedding_function"`
}

// MutationResult is the outcome of an index-refresh or file-removal
// operation.
type MutationResult struct {
	Added   int `json:"add"`
	Updated int `json:"update"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// String renders the mutation counts in the order the service reports them.
func (m MutationResult) String() string {
	return fmt.Sprintf("%d added, %d updated, %d removed, %d skipped, %d failed",
		m.Added, m.Updated, m.Removed, m.Skipped, m.Failed)
}

// DecodeRetrievalResults parses a JSON array of retrieval results. Entries
// carrying both a document and a chunk violate the inclusion-mode contract
// and fail the whole decode.
func DecodeRetrievalResults(data []byte) ([]RetrievalResult, error) {
	var results []RetrievalResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("malformed query payload: %w", err)
	}
	for i, r := range results {
		if r.Document != "" && r.Chunk != "" {
			return nil, fmt.Errorf("result %d (%s): document and chunk are mutually exclusive", i, r.Path)
		}
	}
	return results, nil
}

// DecodeCollections parses a JSON array of collection descriptions.
func DecodeCollections(data []byte) ([]CollectionInfo, error) {
	var collections []CollectionInfo
	if err := json.Unmarshal(data, &collections); err != nil {
		return nil, fmt.Errorf("malformed collection listing: %w", err)
	}
	return collections, nil
}

// DecodeFileList parses a JSON array of file paths.
func DecodeFileList(data []byte) ([]string, error) {
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("malformed file listing: %w", err)
	}
	return paths, nil
}

// DecodeMutationResult parses a single mutation outcome object.
func DecodeMutationResult(data []byte) (MutationResult, error) {
	var m MutationResult
	if err := json.Unmarshal(data, &m); err != nil {
		return MutationResult{}, fmt.Errorf("malformed mutation payload: %w", err)
	}
	return m, nil
}
