package config

import (
	"time"

	"go.uber.org/zap"

	"codectx/internal/runner"
)

// RunnerConfig configures the retrieval service runner.
type RunnerConfig struct {
	// Executable is the retrieval CLI binary.
	Executable string `yaml:"executable"`

	// SessionArgs start the service's server mode for the session backend.
	SessionArgs []string `yaml:"session_args"`

	// Timeout bounds one retrieval job.
	Timeout string `yaml:"timeout"`

	// ConnectTimeout bounds session establishment.
	ConnectTimeout string `yaml:"connect_timeout"`

	// MaxOutputBytes caps captured output per stream.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`
}

// GetTimeout returns the job timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Runner.Timeout)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetConnectTimeout returns the session-establishment timeout as a duration.
func (c *Config) GetConnectTimeout() time.Duration {
	d, err := time.ParseDuration(c.Runner.ConnectTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// BuildRunnerConfig assembles the runner settings from the file-level
// configuration. The backend comes from the normalized tool options rather
// than from this section, so callers pass it in.
func (c *Config) BuildRunnerConfig(backend string, logger *zap.Logger) runner.Config {
	return runner.Config{
		Backend:        backend,
		Executable:     c.Runner.Executable,
		SessionArgs:    c.Runner.SessionArgs,
		Timeout:        c.GetTimeout(),
		ConnectTimeout: c.GetConnectTimeout(),
		MaxOutputBytes: c.Runner.MaxOutputBytes,
		Logger:         logger,
	}
}
