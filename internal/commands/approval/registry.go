package approvalcmd

import (
	"errors"
	"time"

	"github.com/goliatone/go-courseflow/internal/approval"
	"github.com/goliatone/go-courseflow/internal/commands"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// ErrServiceRequired is returned when registration has no coordinator.
var ErrServiceRequired = errors.New("approval command registration: service is nil")

// CommandRegistry is the registration contract used when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the approval command handlers.
type HandlerSet struct {
	Start    *StartWorkflowHandler
	Action   *FacultyActionHandler
	Complete *CompleteWorkflowHandler
	PLT      *RequestPLTHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	timeout    time.Duration
	onResult   ResultObserver
	onTree     TreeObserver
	startOpts  []commands.HandlerOption[StartWorkflowCommand]
	actionOpts []commands.HandlerOption[FacultyActionCommand]
}

// WithTimeout bounds every approval command.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithResultObserver receives the result of start, action and complete commands.
func WithResultObserver(fn ResultObserver) Option {
	return func(o *options) {
		o.onResult = fn
	}
}

// WithTreeObserver receives learning trees produced by plt commands.
func WithTreeObserver(fn TreeObserver) Option {
	return func(o *options) {
		o.onTree = fn
	}
}

// WithStartHandlerOptions forwards options to the start handler.
func WithStartHandlerOptions(opts ...commands.HandlerOption[StartWorkflowCommand]) Option {
	return func(o *options) {
		o.startOpts = append(o.startOpts, opts...)
	}
}

// WithActionHandlerOptions forwards options to the faculty action handler.
func WithActionHandlerOptions(opts ...commands.HandlerOption[FacultyActionCommand]) Option {
	return func(o *options) {
		o.actionOpts = append(o.actionOpts, opts...)
	}
}

// RegisterApprovalCommands builds the approval handlers and registers them
// with reg when one is supplied.
func RegisterApprovalCommands(reg CommandRegistry, service approval.Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	cfg := options{timeout: commands.DefaultCommandTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "approval")
	set := &HandlerSet{
		Start: NewStartWorkflowHandler(service, logger, cfg.onResult,
			append([]commands.HandlerOption[StartWorkflowCommand]{commands.WithTimeout[StartWorkflowCommand](cfg.timeout)}, cfg.startOpts...)...),
		Action: NewFacultyActionHandler(service, logger, cfg.onResult,
			append([]commands.HandlerOption[FacultyActionCommand]{commands.WithTimeout[FacultyActionCommand](cfg.timeout)}, cfg.actionOpts...)...),
		Complete: NewCompleteWorkflowHandler(service, logger, cfg.onResult,
			commands.WithTimeout[CompleteWorkflowCommand](cfg.timeout)),
		PLT: NewRequestPLTHandler(service, logger, cfg.onTree,
			commands.WithTimeout[RequestPLTCommand](cfg.timeout)),
	}

	if reg != nil {
		for _, handler := range []any{set.Start, set.Action, set.Complete, set.PLT} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
