// Package runner executes retrieval jobs against the external retrieval
// service. A job is an ordered argument vector whose first element names the
// operation; the runner returns the service's machine-readable stdout payload.
//
// Two backends implement the Runner contract: ProcessRunner spawns the
// retrieval CLI per call, SessionRunner keeps one warm connection to the
// service's server mode and multiplexes calls over it. The backend is chosen
// once per process by New and injected into whoever dispatches jobs; it is
// never re-selected per call.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind tags a runner backend.
type Kind string

const (
	KindProcess Kind = "process"
	KindSession Kind = "session"
)

var (
	ErrEmptyArgs    = errors.New("job requires at least an operation name")
	ErrRunnerClosed = errors.New("runner is closed")
)

// Config carries the backend-independent execution settings.
type Config struct {
	// Backend requests "process" or "session"; New resolves it.
	Backend string
	// Executable is the retrieval CLI binary.
	Executable string
	// SessionArgs are passed to Executable to start its server mode for the
	// session backend.
	SessionArgs []string
	// WorkDir is the working directory for spawned processes.
	WorkDir string
	// Timeout bounds one job. Zero means DefaultTimeout.
	Timeout time.Duration
	// ConnectTimeout bounds session-backend initialization.
	ConnectTimeout time.Duration
	// MaxOutputBytes caps captured stdout/stderr per stream.
	MaxOutputBytes int64
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// DefaultConfig returns the stock settings: the vectorcode CLI, process
// backend, one minute per job.
func DefaultConfig() Config {
	return Config{
		Backend:        string(KindProcess),
		Executable:     "vectorcode",
		SessionArgs:    []string{"mcp-server"},
		Timeout:        time.Minute,
		ConnectTimeout: 15 * time.Second,
		MaxOutputBytes: 8 << 20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Executable == "" {
		c.Executable = def.Executable
	}
	if len(c.SessionArgs) == 0 {
		c.SessionArgs = def.SessionArgs
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = def.MaxOutputBytes
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Result is a completed job's output.
type Result struct {
	Stdout    []byte
	Stderr    []byte
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

// ExitError reports a job the service itself rejected: non-zero exit from the
// process backend or an error-tagged response over the session. The
// diagnostic text is preserved verbatim for pattern matching upstream.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("retrieval command failed with exit status %d", e.Code)
	}
	return fmt.Sprintf("retrieval command failed with exit status %d: %s", e.Code, e.Stderr)
}

// Runner executes jobs. Run blocks; Start returns a Handle that resolves on
// its own goroutine. Implementations deliver exactly one of result/error per
// job and never panic on malformed input.
type Runner interface {
	Run(ctx context.Context, args []string) (*Result, error)
	Start(ctx context.Context, args []string) *Handle
	Kind() Kind
	Close() error
}

// Handle is one in-flight job. Handles are created per call and never
// reused; the zero value is invalid.
type Handle struct {
	id     uuid.UUID
	done   chan struct{}
	result *Result
	err    error
}

func newHandle() *Handle {
	return &Handle{id: uuid.New(), done: make(chan struct{})}
}

// ID identifies the job in logs.
func (h *Handle) ID() uuid.UUID { return h.id }

// Done is closed when the job completes.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job completes or ctx is canceled. Abandoning an
// invocation is simply never calling Wait.
func (h *Handle) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Handle) complete(result *Result, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

// StartJob runs fn on its own goroutine and resolves the returned handle
// with its outcome. Runner implementations build their Start methods on it.
func StartJob(ctx context.Context, args []string, fn func(context.Context, []string) (*Result, error)) *Handle {
	h := newHandle()
	go func() {
		h.complete(fn(ctx, args))
	}()
	return h
}
