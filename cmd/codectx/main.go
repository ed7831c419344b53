package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codectx/internal/config"
	"codectx/internal/logging"
	"codectx/internal/options"
	"codectx/internal/runner"
	"codectx/internal/summary"
	"codectx/internal/tools"
	"codectx/internal/version"
)

var (
	// Global flags
	configPath  string
	projectRoot string
	logLevel    string
	verbose     bool
	pipeOutput  bool
	timeout     time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "codectx",
	Short: "Semantic code retrieval tools for LLM agents",
	Long: `codectx wraps a vector-index retrieval service behind a small set of
tools an LLM agent can call: query, ls, vectorise, files_ls and files_rm.

Results are de-duplicated per conversation so an agent never pays twice for
content it has already seen, and query batches can optionally be compressed
through a summarization model.

Run "codectx mcp" to serve the tools over the Model Context Protocol.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/codectx/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", "", "Project directory owning the index (default: inferred)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")
	rootCmd.PersistentFlags().BoolVar(&pipeOutput, "pipe", false, "Emit raw JSON instead of rendered output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	// Add commands to root
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(vectoriseCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext returns the command's context bounded by the global
// timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return context.WithTimeout(baseCtx, timeout)
}

// buildAdapter assembles the tool adapter from the loaded configuration.
// The returned cleanup releases the runner.
func buildAdapter(ctx context.Context) (*tools.Adapter, func(), error) {
	opts, err := options.Normalize(cfg.Tool)
	if err != nil {
		return nil, nil, err
	}

	run := runner.New(ctx, cfg.BuildRunnerConfig(opts.Backend, logger))

	var client summary.LLMClient
	if opts.Summarize.Enabled {
		client, err = summary.NewClient(ctx, cfg.Summary.ProviderConfig())
		if err != nil {
			// Summaries degrade to the deterministic serialization, so a
			// missing provider is not fatal.
			logger.Warn("summarization model unavailable", zap.Error(err))
			client = nil
		}
	}

	adapter, err := tools.NewAdapter(tools.AdapterConfig{
		Runner:     run,
		Defaults:   opts,
		Summarizer: summary.NewOrchestrator(client, logger),
		Logger:     logger,
	})
	if err != nil {
		run.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := run.Close(); err != nil {
			logger.Warn("failed to close runner", zap.Error(err))
		}
	}
	return adapter, cleanup, nil
}
