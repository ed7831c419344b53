// Package config holds the file-level configuration: the retrieval runner
// settings, the tool option defaults, summarization credentials, watcher
// rules, and logging. Configuration loads from a YAML file with environment
// overrides applied on top; a missing file yields the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codectx/internal/options"
)

// Config holds all codectx configuration.
type Config struct {
	// Runner configures how retrieval jobs reach the service.
	Runner RunnerConfig `yaml:"runner"`

	// Tool holds the default tool options; hosts may overlay them per
	// invocation.
	Tool options.ToolOptions `yaml:"tool"`

	// Summary configures the summarization model client.
	Summary SummaryConfig `yaml:"summary"`

	// Watch configures the auto-vectorise file watcher.
	Watch WatchConfig `yaml:"watch"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runner: RunnerConfig{
			Executable:     "vectorcode",
			SessionArgs:    []string{"mcp-server"},
			Timeout:        "60s",
			ConnectTimeout: "15s",
			MaxOutputBytes: 8 << 20,
		},

		Tool: options.Defaults(),

		Watch: WatchConfig{
			Paths: []string{"."},
			Extensions: []string{
				".go", ".py", ".js", ".ts", ".tsx", ".rs", ".java",
				".c", ".h", ".cpp", ".rb", ".md",
			},
			IgnoreDirs: []string{
				".git", "node_modules", "vendor", "target", "dist",
				"__pycache__", ".venv",
			},
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the default config location,
// ~/.config/codectx/config.yaml on Linux.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(".codectx", "config.yaml")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "codectx", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file is not an
// error: the defaults apply, with environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CODECTX_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODECTX_EXECUTABLE"); v != "" {
		c.Runner.Executable = v
	}
	if v := os.Getenv("CODECTX_BACKEND"); v != "" {
		c.Tool.Backend = v
	}
	if v := os.Getenv("CODECTX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CODECTX_SUMMARY_PROVIDER"); v != "" {
		c.Summary.Provider = v
	}
	if v := os.Getenv("CODECTX_SUMMARY_MODEL"); v != "" {
		c.Summary.Model = v
	}
	if v := os.Getenv("CODECTX_SUMMARY_API_KEY"); v != "" {
		c.Summary.APIKey = v
	}
}

// Validate checks the configuration for mistakes that would otherwise
// surface deep inside a query.
func (c *Config) Validate() error {
	if _, err := options.Normalize(c.Tool); err != nil {
		return err
	}
	if c.Runner.Executable == "" {
		return fmt.Errorf("runner executable cannot be empty")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
