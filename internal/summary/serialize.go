package summary

import (
	"fmt"
	"strings"

	"codectx/internal/types"
)

// Serialize renders a result batch as tagged fragments, one per result: the
// path, then the chunk with its line range (when known) or the full
// document. This is the deterministic fallback whenever summarization is
// disabled or fails, and also the corpus handed to the language model.
func Serialize(results []types.RetrievalResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "<path>%s</path>\n", r.Path)
		switch {
		case r.Chunk != "" && r.HasLineRange():
			fmt.Fprintf(&sb, "<chunk start=%d end=%d>\n%s\n</chunk>\n", *r.StartLine, *r.EndLine, r.Chunk)
		case r.Chunk != "":
			fmt.Fprintf(&sb, "<chunk>\n%s\n</chunk>\n", r.Chunk)
		default:
			fmt.Fprintf(&sb, "<document>\n%s\n</document>\n", r.Document)
		}
	}
	return sb.String()
}
