package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codectx/internal/watcher"
)

var watchPaths []string

// watchCmd keeps the index in sync with the working tree
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the working tree and re-vectorise changed files",
	Long: `Watches the configured directories and re-vectorises files as they
change, so the index stays current while you edit.

Changes are debounced: a file is indexed once it has been quiet for the
configured settle window, and a burst of saves becomes a single batch.

Example:
  codectx watch
  codectx watch --path ./internal --path ./docs`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchPaths, "path", nil, "Directory to watch (repeatable, default: configured paths)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	watchCfg := cfg.Watch
	if len(watchPaths) > 0 {
		watchCfg.Paths = watchPaths
	}

	w, err := watcher.New(adapter, watcher.Config{
		Watch:       watchCfg,
		ProjectRoot: projectRoot,
		Debounce:    cfg.GetDebounce(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !pipeOutput {
		fmt.Printf("Watching %d directories. Ctrl-C to stop.\n", len(w.WatchedDirs()))
	}

	// Run until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	w.Stop()

	stats := w.Stats()
	if pipeOutput {
		return printJSON(stats)
	}
	fmt.Printf("Indexed %d file(s) in %d batch(es), %d error(s)\n",
		stats.FilesIndexed, stats.BatchesDispatched, stats.Errors)
	return nil
}
