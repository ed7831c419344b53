package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codectx/internal/config"
	"codectx/internal/tools"
	"codectx/internal/types"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	rOut, wOut, _ := os.Pipe()
	os.Stdout = wOut

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	os.Stdout = origOut
	return <-done
}

func TestRootCommandWiring(t *testing.T) {
	want := []string{"query", "ls", "vectorise", "files", "watch", "mcp", "config"}
	for _, name := range want {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPersistentPreRunAppliesLogLevel(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	logLevel = "warn"
	verbose = false
	defer func() { configPath = ""; logLevel = "" }()

	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err != nil {
		t.Fatalf("PersistentPreRunE failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Logging.Level)
	}

	logLevel = "shouting"
	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err == nil {
		t.Fatal("expected error for an invalid log level")
	}
}

func TestConfigInit(t *testing.T) {
	logger = zap.NewNop()
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	defer func() { configPath = "" }()

	output := captureOutput(t, func() {
		if err := runConfigInit(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runConfigInit failed: %v", err)
		}
	})
	if !strings.Contains(output, configPath) {
		t.Errorf("expected output to name the config path, got: %s", output)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file was not written: %v", err)
	}

	// A second run must refuse to overwrite.
	if err := runConfigInit(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error when config file already exists")
	}
}

func TestConfigShow(t *testing.T) {
	cfg = config.DefaultConfig()

	output := captureOutput(t, func() {
		if err := runConfigShow(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runConfigShow failed: %v", err)
		}
	})
	if !strings.Contains(output, "executable: vectorcode") {
		t.Errorf("expected rendered YAML to contain the executable, got: %s", output)
	}
}

func TestPrintJSON(t *testing.T) {
	output := captureOutput(t, func() {
		if err := printJSON(types.MutationResult{Added: 2}); err != nil {
			t.Fatalf("printJSON failed: %v", err)
		}
	})

	var decoded types.MutationResult
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Added != 2 {
		t.Errorf("expected added=2, got %d", decoded.Added)
	}
}

func TestRenderQueryResponseEmpty(t *testing.T) {
	output := captureOutput(t, func() {
		renderQueryResponse(&tools.QueryResponse{})
	})
	if !strings.Contains(output, "No new results") {
		t.Errorf("expected empty-batch notice, got: %s", output)
	}
}

func TestRenderQueryResponse(t *testing.T) {
	start, end := 3, 9
	resp := &tools.QueryResponse{
		Results: []types.RetrievalResult{
			{Path: "src/parser.go", Chunk: "func Parse() {}", ChunkID: "c1", StartLine: &start, EndLine: &end},
			{Path: "src/lexer.go", Document: "package lexer"},
		},
		Count: 2,
	}

	output := captureOutput(t, func() {
		renderQueryResponse(resp)
	})
	for _, want := range []string{"src/parser.go", "lines 3-9", "func Parse() {}", "src/lexer.go", "package lexer"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestRenderQueryResponseSummary(t *testing.T) {
	resp := &tools.QueryResponse{
		Results: []types.RetrievalResult{{Path: "a.go", Document: "x"}},
		Summary: "Both files implement the parser.",
		Count:   1,
	}

	output := captureOutput(t, func() {
		renderQueryResponse(resp)
	})
	if !strings.Contains(output, "Summary") {
		t.Errorf("expected summary heading, got: %s", output)
	}
	if !strings.Contains(output, "parser") {
		t.Errorf("expected summary text, got: %s", output)
	}
}

func TestRenderCollections(t *testing.T) {
	output := captureOutput(t, func() {
		renderCollections([]types.CollectionInfo{
			{ProjectRoot: "/home/x/proj", Size: 120, NumFiles: 14, EmbeddingFunction: "ollama"},
		})
	})
	for _, want := range []string{"/home/x/proj", "14 files", "120 chunks", "ollama"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}

	output = captureOutput(t, func() {
		renderCollections(nil)
	})
	if !strings.Contains(output, "No vectorised projects") {
		t.Errorf("expected empty notice, got: %s", output)
	}
}

func TestRenderMutation(t *testing.T) {
	output := captureOutput(t, func() {
		renderMutation(types.MutationResult{Added: 2, Updated: 1})
	})
	if !strings.Contains(output, "2 added, 1 updated") {
		t.Errorf("expected mutation counts, got: %s", output)
	}

	output = captureOutput(t, func() {
		renderMutation(types.MutationResult{Failed: 3})
	})
	if !strings.Contains(output, "✗") {
		t.Errorf("expected failure mark, got: %s", output)
	}
}

func TestRenderFileList(t *testing.T) {
	output := captureOutput(t, func() {
		renderFileList([]string{"a.go", "b.go"})
	})
	if !strings.Contains(output, "a.go\nb.go\n") {
		t.Errorf("expected one path per line, got: %s", output)
	}

	output = captureOutput(t, func() {
		renderFileList(nil)
	})
	if !strings.Contains(output, "No files in the index") {
		t.Errorf("expected empty notice, got: %s", output)
	}
}
