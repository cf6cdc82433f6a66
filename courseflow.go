package courseflow

import (
	"context"

	"github.com/goliatone/go-courseflow/internal/approval"
	approvalcmd "github.com/goliatone/go-courseflow/internal/commands/approval"
	"github.com/goliatone/go-courseflow/internal/di"
	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/plt"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// ApprovalService exports the approval coordinator contract.
type ApprovalService = approval.Service

// TreeService exports the learning tree service.
type TreeService = *plt.Service

// CommandHandlers exports the approval command handler set.
type CommandHandlers = *approvalcmd.HandlerSet

type (
	Stage        = domain.Stage
	Action       = domain.Action
	ArtifactKind = domain.ArtifactKind

	StartRequest    = approval.StartRequest
	ActionRequest   = approval.ActionRequest
	CompleteRequest = approval.CompleteRequest
	PLTRequest      = approval.PLTRequest
	ActionResult    = approval.ActionResult
	Status          = approval.Status
	HistoryEntry    = approval.HistoryEntry

	LearnerContext  = interfaces.LearnerContext
	LearningTree    = interfaces.LearningTree
	FinalizedCourse = interfaces.FinalizedCourse
)

const (
	StageContentProcessing             = domain.StageContentProcessing
	StageAwaitingLOApproval            = domain.StageAwaitingLOApproval
	StageLOApproved                    = domain.StageLOApproved
	StageAwaitingStructureConfirmation = domain.StageAwaitingStructureConfirmation
	StageStructureConfirmed            = domain.StageStructureConfirmed
	StageAwaitingKGFinalization        = domain.StageAwaitingKGFinalization
	StageKGFinalized                   = domain.StageKGFinalized
	StagePLTGeneration                 = domain.StagePLTGeneration
	StageCompleted                     = domain.StageCompleted

	ActionApprove  = domain.ActionApprove
	ActionEdit     = domain.ActionEdit
	ActionReject   = domain.ActionReject
	ActionConfirm  = domain.ActionConfirm
	ActionFinalize = domain.ActionFinalize
)

var (
	ErrDuplicateWorkflow = approval.ErrDuplicateWorkflow
	ErrInvalidTransition = approval.ErrInvalidTransition
	ErrEditLimitExceeded = approval.ErrEditLimitExceeded
	ErrNotFinalized      = approval.ErrNotFinalized
	ErrNotFound          = approval.ErrNotFound
	ErrGenerationFailure = approval.ErrGenerationFailure
	ErrConcurrentUpdate  = approval.ErrConcurrentUpdate
	ErrInvalidDraft      = approval.ErrInvalidDraft
)

// Module represents the top level courseflow runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a courseflow module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Approval returns the approval coordinator.
func (m *Module) Approval() ApprovalService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ApprovalService()
}

// Trees returns the learning tree service.
func (m *Module) Trees() TreeService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.TreeService()
}

// Commands returns the approval command handlers, nil when commands are disabled.
func (m *Module) Commands() CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands()
}

// EnsureSchema creates storage tables when bun storage is configured.
func (m *Module) EnsureSchema(ctx context.Context) error {
	return m.container.EnsureSchema(ctx)
}

// Close releases resources the module opened itself.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
