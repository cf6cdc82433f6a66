package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with validation, timeout, logging,
// telemetry and error categorisation.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	telemetry Telemetry[T]
	mapErr    func(error) error
	now       func() time.Time
}

// NewHandler creates a handler that satisfies go-command's Commander interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute conforms to command.Commander[T].Execute.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}

	ctx = EnsureContext(ctx)
	ctx, cancel := WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	fields := map[string]any{
		"command": command.GetMessageType(msg),
	}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		for key, value := range h.fields(msg) {
			fields[key] = value
		}
	}
	logger := logging.WithFields(h.logger, fields).WithContext(ctx)

	if err := ctx.Err(); err != nil {
		wrapped := wrapContextError(err)
		h.report(ctx, msg, fields, logger, 0, wrapped, TelemetryStatusContextError)
		return wrapped
	}

	logger.Debug("command.execute.start")
	started := h.now()

	if err := h.exec(ctx, msg); err != nil {
		status := TelemetryStatusFailed
		var wrapped error
		if ctx.Err() != nil && isContextError(err) {
			status = TelemetryStatusContextError
			wrapped = wrapContextError(err)
		} else {
			if h.mapErr != nil {
				err = h.mapErr(err)
			}
			wrapped = wrapExecuteError(err)
		}
		h.report(ctx, msg, fields, logger, h.now().Sub(started), wrapped, status)
		return wrapped
	}

	if err := ctx.Err(); err != nil {
		wrapped := wrapContextError(err)
		h.report(ctx, msg, fields, logger, h.now().Sub(started), wrapped, TelemetryStatusContextError)
		return wrapped
	}

	h.report(ctx, msg, fields, logger, h.now().Sub(started), nil, TelemetryStatusSuccess)
	return nil
}

func (h *Handler[T]) report(ctx context.Context, msg T, fields map[string]any, logger interfaces.Logger, elapsed time.Duration, err error, status TelemetryStatus) {
	if h.telemetry != nil {
		h.telemetry(ctx, msg, TelemetryInfo{
			Command:   command.GetMessageType(msg),
			Operation: h.operation,
			Fields:    fields,
			Duration:  elapsed,
			Error:     err,
			Status:    status,
			Logger:    logger,
		})
		return
	}
	switch status {
	case TelemetryStatusSuccess:
		logger.Info("command.execute.success")
	case TelemetryStatusContextError:
		logger.Error("command.execute.context_error", "error", err)
	default:
		logger.Error("command.execute.failed", "error", err)
	}
}

// WithTimeout overrides the default execution timeout. Zero disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution. Defaults to a no-op logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation sets the operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds message specific structured fields to log entries
// and telemetry.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithTelemetry replaces the default outcome logging with the callback.
func WithTelemetry[T command.Message](telemetry Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = telemetry
	}
}

// WithErrorMapper lets a command module categorise its domain errors before
// the generic execution wrapping applies.
func WithErrorMapper[T command.Message](fn func(error) error) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.mapErr = fn
	}
}

// WithClock overrides the clock used to measure execution time.
func WithClock[T command.Message](now func() time.Time) HandlerOption[T] {
	return func(h *Handler[T]) {
		if now != nil {
			h.now = now
		}
	}
}
