package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"codectx/internal/version"
)

// SessionRunner keeps one warm connection to the retrieval service's server
// mode and issues each job as a tool call over it. The subprocess and the
// session are established once in NewSessionRunner and live until Close;
// concurrent jobs multiplex over the single session.
type SessionRunner struct {
	config  Config
	logger  *zap.Logger
	session *mcp.ClientSession

	mu     sync.Mutex
	closed bool
}

// NewSessionRunner spawns the service's server mode and completes the
// session handshake. Any failure here is the caller's cue to fall back to
// the process backend.
func NewSessionRunner(ctx context.Context, config Config) (*SessionRunner, error) {
	config = config.withDefaults()

	connectCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	cmd := exec.Command(config.Executable, config.SessionArgs...)
	cmd.Dir = config.WorkDir

	client := mcp.NewClient(&mcp.Implementation{Name: "codectx", Version: version.Version}, nil)
	session, err := client.Connect(connectCtx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to retrieval session: %w", err)
	}
	if err := session.Ping(connectCtx, nil); err != nil {
		session.Close()
		return nil, fmt.Errorf("retrieval session unresponsive: %w", err)
	}

	config.Logger.Info("retrieval session established",
		zap.String("executable", config.Executable),
		zap.Strings("session_args", config.SessionArgs))

	return &SessionRunner{config: config, logger: config.Logger, session: session}, nil
}

// Kind reports the backend tag.
func (r *SessionRunner) Kind() Kind { return KindSession }

// Start launches the job on its own goroutine.
func (r *SessionRunner) Start(ctx context.Context, args []string) *Handle {
	return StartJob(ctx, args, r.Run)
}

// Run issues one tool call over the session. The operation name is the
// argument vector's first element; two-word operations collapse to
// underscore form on the wire (`files ls` calls the files_ls tool). The
// remaining arguments travel as-is, so both backends accept the same job.
func (r *SessionRunner) Run(ctx context.Context, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, ErrEmptyArgs
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRunnerClosed
	}
	session := r.session
	r.mu.Unlock()

	op, rest := splitOperation(args)

	callCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	r.logger.Debug("dispatching session job", zap.String("operation", op), zap.Strings("args", rest))

	started := time.Now()
	result, err := session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      op,
		Arguments: map[string]any{"args": rest},
	})
	if err != nil {
		return nil, fmt.Errorf("session call %s: %w", op, err)
	}

	text := textContent(result)
	if result.IsError {
		return nil, &ExitError{Code: 1, Stderr: text}
	}

	return &Result{
		Stdout:   []byte(text),
		ExitCode: 0,
		Duration: time.Since(started),
	}, nil
}

// Close tears down the session and its subprocess. Hosts typically never
// call it; tests do.
func (r *SessionRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.session.Close()
}

// splitOperation separates the operation name from the remaining arguments,
// joining two-word operations into their wire tool name.
func splitOperation(args []string) (string, []string) {
	op, rest := args[0], args[1:]
	if op == "files" && len(rest) > 0 {
		op, rest = op+"_"+rest[0], rest[1:]
	}
	return op, rest
}

func textContent(result *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
