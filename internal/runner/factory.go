package runner

import (
	"context"

	"go.uber.org/zap"
)

// New resolves the configured backend exactly once and returns it. When the
// session backend is requested but cannot be initialized, the process
// backend is returned instead and a single warning is logged; because
// callers inject the returned Runner wherever jobs are dispatched, no
// further selection or session attempt happens for the process lifetime.
func New(ctx context.Context, config Config) Runner {
	config = config.withDefaults()

	if config.Backend == string(KindSession) {
		session, err := NewSessionRunner(ctx, config)
		if err == nil {
			return session
		}
		config.Logger.Warn("session backend unavailable, falling back to process execution",
			zap.String("executable", config.Executable),
			zap.Error(err))
	}

	return NewProcessRunner(config)
}
