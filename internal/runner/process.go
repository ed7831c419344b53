package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// ProcessRunner spawns the retrieval CLI once per job. It keeps no state
// between calls and has no cleanup obligations beyond the subprocess's own
// lifetime.
type ProcessRunner struct {
	config Config
	logger *zap.Logger
}

// NewProcessRunner returns a process-backend runner.
func NewProcessRunner(config Config) *ProcessRunner {
	config = config.withDefaults()
	return &ProcessRunner{config: config, logger: config.Logger}
}

// Kind reports the backend tag.
func (r *ProcessRunner) Kind() Kind { return KindProcess }

// Close is a no-op; the process backend holds no persistent resources.
func (r *ProcessRunner) Close() error { return nil }

// Start launches the job on its own goroutine.
func (r *ProcessRunner) Start(ctx context.Context, args []string) *Handle {
	return StartJob(ctx, args, r.Run)
}

// Run spawns `<executable> <args...>`, capturing stdout as the payload and
// stderr as diagnostic text. Non-zero exit, spawn failure, and timeout all
// surface as errors; a result is only returned for a clean exit.
func (r *ProcessRunner) Run(ctx context.Context, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, ErrEmptyArgs
	}

	execCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.config.Executable, args...)
	cmd.Dir = r.config.WorkDir

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: r.config.MaxOutputBytes}
	stderr := &limitedWriter{w: &stderrBuf, max: r.config.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("spawning retrieval command",
		zap.String("executable", r.config.Executable),
		zap.Strings("args", args))

	started := time.Now()
	err := cmd.Run()
	duration := time.Since(started)

	if stdout.truncated || stderr.truncated {
		r.logger.Warn("retrieval output truncated",
			zap.Int64("discarded_bytes", stdout.discarded+stderr.discarded))
	}

	if err != nil {
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			return nil, fmt.Errorf("retrieval command killed after %s: %w", r.config.Timeout, execCtx.Err())
		case execCtx.Err() == context.Canceled:
			return nil, execCtx.Err()
		default:
			if exitErr, ok := err.(*exec.ExitError); ok {
				return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: stderrBuf.String()}
			}
			return nil, fmt.Errorf("spawning %s: %w", r.config.Executable, err)
		}
	}

	r.logger.Debug("retrieval command completed",
		zap.Duration("duration", duration),
		zap.Int("stdout_bytes", stdoutBuf.Len()))

	return &Result{
		Stdout:    stdoutBuf.Bytes(),
		Stderr:    stderrBuf.Bytes(),
		ExitCode:  0,
		Duration:  duration,
		Truncated: stdout.truncated || stderr.truncated,
	}, nil
}

// limitedWriter caps total bytes written, discarding the excess while
// reporting full writes so the subprocess never sees a short-write error.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
