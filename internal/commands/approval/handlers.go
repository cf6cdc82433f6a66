package approvalcmd

import (
	"context"

	"github.com/goliatone/go-courseflow/internal/approval"
	"github.com/goliatone/go-courseflow/internal/commands"
	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	startOperation    = "approval.start_workflow"
	actionOperation   = "approval.faculty_action"
	completeOperation = "approval.complete_workflow"
	pltOperation      = "approval.request_plt"
)

var (
	_ command.Commander[StartWorkflowCommand]    = (*StartWorkflowHandler)(nil)
	_ command.Commander[FacultyActionCommand]    = (*FacultyActionHandler)(nil)
	_ command.Commander[CompleteWorkflowCommand] = (*CompleteWorkflowHandler)(nil)
	_ command.Commander[RequestPLTCommand]       = (*RequestPLTHandler)(nil)
)

// ResultObserver receives the outcome of an accepted workflow mutation.
type ResultObserver func(ctx context.Context, result *approval.ActionResult)

// TreeObserver receives a generated learning tree.
type TreeObserver func(ctx context.Context, tree *interfaces.LearningTree)

// StartWorkflowHandler runs StartWorkflowCommand through the coordinator.
type StartWorkflowHandler struct {
	inner *commands.Handler[StartWorkflowCommand]
}

func NewStartWorkflowHandler(service approval.Service, logger interfaces.Logger, observe ResultObserver, opts ...commands.HandlerOption[StartWorkflowCommand]) *StartWorkflowHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg StartWorkflowCommand) error {
		result, err := service.StartWorkflow(ctx, approval.StartRequest{
			CourseID:   msg.CourseID,
			FacultyID:  msg.FacultyID,
			Title:      msg.Title,
			RawContent: msg.RawContent,
			Source:     msg.Source,
		})
		if err != nil {
			return err
		}
		notify(ctx, observe, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[StartWorkflowCommand]{
		commands.WithLogger[StartWorkflowCommand](logger),
		commands.WithOperation[StartWorkflowCommand](startOperation),
		commands.WithMessageFields(func(msg StartWorkflowCommand) map[string]any {
			fields := map[string]any{
				"course_id":  msg.CourseID,
				"faculty_id": msg.FacultyID,
			}
			if msg.Source != "" {
				fields["source"] = msg.Source
			}
			return fields
		}),
		commands.WithErrorMapper[StartWorkflowCommand](categorize),
		commands.WithTelemetry(commands.DefaultTelemetry[StartWorkflowCommand](logger)),
	}
	return &StartWorkflowHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[StartWorkflowCommand].
func (h *StartWorkflowHandler) Execute(ctx context.Context, msg StartWorkflowCommand) error {
	return h.inner.Execute(ctx, msg)
}

// FacultyActionHandler runs FacultyActionCommand through the coordinator.
type FacultyActionHandler struct {
	inner *commands.Handler[FacultyActionCommand]
}

func NewFacultyActionHandler(service approval.Service, logger interfaces.Logger, observe ResultObserver, opts ...commands.HandlerOption[FacultyActionCommand]) *FacultyActionHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg FacultyActionCommand) error {
		result, err := service.SubmitFacultyAction(ctx, approval.ActionRequest{
			CourseID: msg.CourseID,
			Action:   domain.NormalizeAction(msg.Action),
			Actor:    msg.Actor,
			Comment:  msg.Comment,
			Payload:  msg.Payload,
		})
		if err != nil {
			return err
		}
		notify(ctx, observe, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[FacultyActionCommand]{
		commands.WithLogger[FacultyActionCommand](logger),
		commands.WithOperation[FacultyActionCommand](actionOperation),
		commands.WithMessageFields(func(msg FacultyActionCommand) map[string]any {
			fields := map[string]any{
				"course_id": msg.CourseID,
				"action":    string(domain.NormalizeAction(msg.Action)),
			}
			if msg.Actor != "" {
				fields["actor"] = msg.Actor
			}
			return fields
		}),
		commands.WithErrorMapper[FacultyActionCommand](categorize),
		commands.WithTelemetry(commands.DefaultTelemetry[FacultyActionCommand](logger)),
	}
	return &FacultyActionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *FacultyActionHandler) Execute(ctx context.Context, msg FacultyActionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CompleteWorkflowHandler runs CompleteWorkflowCommand through the coordinator.
type CompleteWorkflowHandler struct {
	inner *commands.Handler[CompleteWorkflowCommand]
}

func NewCompleteWorkflowHandler(service approval.Service, logger interfaces.Logger, observe ResultObserver, opts ...commands.HandlerOption[CompleteWorkflowCommand]) *CompleteWorkflowHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg CompleteWorkflowCommand) error {
		result, err := service.CompleteWorkflow(ctx, approval.CompleteRequest{
			CourseID: msg.CourseID,
			Actor:    msg.Actor,
		})
		if err != nil {
			return err
		}
		notify(ctx, observe, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[CompleteWorkflowCommand]{
		commands.WithLogger[CompleteWorkflowCommand](logger),
		commands.WithOperation[CompleteWorkflowCommand](completeOperation),
		commands.WithMessageFields(func(msg CompleteWorkflowCommand) map[string]any {
			return map[string]any{"course_id": msg.CourseID}
		}),
		commands.WithErrorMapper[CompleteWorkflowCommand](categorize),
		commands.WithTelemetry(commands.DefaultTelemetry[CompleteWorkflowCommand](logger)),
	}
	return &CompleteWorkflowHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *CompleteWorkflowHandler) Execute(ctx context.Context, msg CompleteWorkflowCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RequestPLTHandler runs RequestPLTCommand through the coordinator.
type RequestPLTHandler struct {
	inner *commands.Handler[RequestPLTCommand]
}

func NewRequestPLTHandler(service approval.Service, logger interfaces.Logger, observe TreeObserver, opts ...commands.HandlerOption[RequestPLTCommand]) *RequestPLTHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg RequestPLTCommand) error {
		tree, err := service.RequestPLT(ctx, approval.PLTRequest{
			CourseID:  msg.CourseID,
			LearnerID: msg.LearnerID,
			Context:   msg.Context,
		})
		if err != nil {
			return err
		}
		if observe != nil && tree != nil {
			observe(ctx, tree)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RequestPLTCommand]{
		commands.WithLogger[RequestPLTCommand](logger),
		commands.WithOperation[RequestPLTCommand](pltOperation),
		commands.WithMessageFields(func(msg RequestPLTCommand) map[string]any {
			return map[string]any{
				"course_id":  msg.CourseID,
				"learner_id": msg.LearnerID,
			}
		}),
		commands.WithErrorMapper[RequestPLTCommand](categorize),
		commands.WithTelemetry(commands.DefaultTelemetry[RequestPLTCommand](logger)),
	}
	return &RequestPLTHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *RequestPLTHandler) Execute(ctx context.Context, msg RequestPLTCommand) error {
	return h.inner.Execute(ctx, msg)
}

func notify(ctx context.Context, observe ResultObserver, result *approval.ActionResult) {
	if observe != nil && result != nil {
		observe(ctx, result)
	}
}
