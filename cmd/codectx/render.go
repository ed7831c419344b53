package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"codectx/internal/tools"
	"codectx/internal/types"
)

var (
	pathStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	rangeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// printJSON writes v to stdout as indented JSON, for --pipe consumers.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func renderQueryResponse(resp *tools.QueryResponse) {
	if len(resp.Results) == 0 && resp.Summary == "" {
		fmt.Println("No new results.")
		return
	}

	for i, result := range resp.Results {
		if i > 0 {
			fmt.Println()
		}
		header := pathStyle.Render(result.Path)
		if result.HasLineRange() {
			header += " " + rangeStyle.Render(fmt.Sprintf("(lines %d-%d)", *result.StartLine, *result.EndLine))
		}
		fmt.Println(header)
		if content := result.Content(); content != "" {
			fmt.Println(content)
		}
	}

	if resp.Summary != "" {
		fmt.Println()
		fmt.Println(headerStyle.Render("Summary"))
		fmt.Println(renderMarkdown(resp.Summary))
	}
}

// renderMarkdown renders md for the terminal, falling back to the plain
// text when the renderer is unavailable.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func renderCollections(collections []types.CollectionInfo) {
	if len(collections) == 0 {
		fmt.Println("No vectorised projects.")
		return
	}
	for _, c := range collections {
		fmt.Printf("%s\n", pathStyle.Render(c.ProjectRoot))
		fmt.Printf("  %d files, %d chunks", c.NumFiles, c.Size)
		if c.EmbeddingFunction != "" {
			fmt.Printf(", %s", c.EmbeddingFunction)
		}
		fmt.Println()
	}
}

func renderFileList(paths []string) {
	if len(paths) == 0 {
		fmt.Println("No files in the index.")
		return
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func renderMutation(result types.MutationResult) {
	mark := okStyle.Render("✓")
	if result.Failed > 0 {
		mark = "✗"
	}
	fmt.Printf("%s %s\n", mark, result)
}
