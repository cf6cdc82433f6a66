package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command when no timeout is configured. It
// has to cover every generation step a faculty action triggers.
const DefaultCommandTimeout = 5 * time.Minute

// EnsureContext returns a non-nil context.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	return logging.Ensure(logger)
}
