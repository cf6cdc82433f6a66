package approval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/validation"
)

var (
	ErrDuplicateWorkflow  = errors.New("approval: workflow already exists")
	ErrInvalidTransition  = errors.New("approval: action not valid for current stage")
	ErrEditLimitExceeded  = errors.New("approval: edit limit exceeded")
	ErrNotFinalized       = errors.New("approval: course not finalized")
	ErrNotFound           = errors.New("approval: course not found")
	ErrGenerationFailure  = errors.New("approval: generation failed")
	ErrConcurrentUpdate   = errors.New("approval: concurrent update")
	ErrInvalidDraft       = errors.New("approval: draft payload invalid")
	ErrCourseIDRequired   = errors.New("approval: course id required")
	ErrFacultyIDRequired  = errors.New("approval: faculty id required")
	ErrRawContentRequired = errors.New("approval: raw content required")
	ErrLearnerIDRequired  = errors.New("approval: learner id required")
	ErrRepositoryRequired = errors.New("approval: state repository required")
	ErrGeneratorRequired  = errors.New("approval: content generator required")
)

// Collaborators named by GenerationFailureError.
const (
	CollaboratorContentGenerator = "content_generator"
	CollaboratorGraphStore       = "graph_store"
	CollaboratorStateStore       = "state_store"
	CollaboratorPLTGenerator     = "plt_generator"
)

func describe(sentinel error, courseID string, stage domain.Stage, action string) string {
	parts := []string{}
	if courseID != "" {
		parts = append(parts, "course="+courseID)
	}
	if stage != "" {
		parts = append(parts, "stage="+string(stage))
	}
	if action != "" {
		parts = append(parts, "action="+action)
	}
	if len(parts) == 0 {
		return sentinel.Error()
	}
	return fmt.Sprintf("%s: %s", sentinel.Error(), strings.Join(parts, " "))
}

// DuplicateWorkflowError is returned when a workflow already exists for the course.
type DuplicateWorkflowError struct {
	CourseID  string
	Stage     domain.Stage
	FacultyID string
}

func (e *DuplicateWorkflowError) Error() string {
	if e == nil {
		return ErrDuplicateWorkflow.Error()
	}
	return describe(ErrDuplicateWorkflow, e.CourseID, e.Stage, "start")
}

func (e *DuplicateWorkflowError) Unwrap() error {
	return ErrDuplicateWorkflow
}

// InvalidTransitionError names the current stage and the refused action.
type InvalidTransitionError struct {
	CourseID string
	Stage    domain.Stage
	Action   string
}

func (e *InvalidTransitionError) Error() string {
	if e == nil {
		return ErrInvalidTransition.Error()
	}
	return describe(ErrInvalidTransition, e.CourseID, e.Stage, e.Action)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// EditLimitExceededError is returned once a checkpoint used all its edits.
type EditLimitExceededError struct {
	CourseID string
	Stage    domain.Stage
	Limit    int
}

func (e *EditLimitExceededError) Error() string {
	if e == nil {
		return ErrEditLimitExceeded.Error()
	}
	return fmt.Sprintf("%s limit=%d", describe(ErrEditLimitExceeded, e.CourseID, e.Stage, string(domain.ActionEdit)), e.Limit)
}

func (e *EditLimitExceededError) Unwrap() error {
	return ErrEditLimitExceeded
}

// NotFinalizedError is returned for learning tree requests on courses that
// have not reached KG_FINALIZED.
type NotFinalizedError struct {
	CourseID string
	Stage    domain.Stage
}

func (e *NotFinalizedError) Error() string {
	if e == nil {
		return ErrNotFinalized.Error()
	}
	return describe(ErrNotFinalized, e.CourseID, e.Stage, "request_plt")
}

func (e *NotFinalizedError) Unwrap() error {
	return ErrNotFinalized
}

// NotFoundError is returned for unknown courses.
type NotFoundError struct {
	CourseID string
	Action   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return describe(ErrNotFound, e.CourseID, "", e.Action)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// GenerationFailureError reports a failed downstream call. The stage did not
// advance and the same action may be retried.
type GenerationFailureError struct {
	CourseID     string
	Stage        domain.Stage
	Action       string
	Collaborator string
	Cause        error
}

func (e *GenerationFailureError) Error() string {
	if e == nil {
		return ErrGenerationFailure.Error()
	}
	msg := describe(ErrGenerationFailure, e.CourseID, e.Stage, e.Action)
	if e.Collaborator != "" {
		msg += " collaborator=" + e.Collaborator
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationFailureError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return []error{ErrGenerationFailure}
	}
	return []error{ErrGenerationFailure, e.Cause}
}

// ConcurrentUpdateError is returned when the stored record changed after it
// was read. Retrying re-reads the current stage.
type ConcurrentUpdateError struct {
	CourseID string
	Expected int
}

func (e *ConcurrentUpdateError) Error() string {
	if e == nil {
		return ErrConcurrentUpdate.Error()
	}
	return fmt.Sprintf("%s version=%d", describe(ErrConcurrentUpdate, e.CourseID, "", ""), e.Expected)
}

func (e *ConcurrentUpdateError) Unwrap() error {
	return ErrConcurrentUpdate
}

// InvalidDraftError is returned when an edit payload fails schema validation.
type InvalidDraftError struct {
	CourseID string
	Stage    domain.Stage
	Issues   []validation.ValidationIssue
	Cause    error
}

func (e *InvalidDraftError) Error() string {
	if e == nil {
		return ErrInvalidDraft.Error()
	}
	msg := describe(ErrInvalidDraft, e.CourseID, e.Stage, string(domain.ActionEdit))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InvalidDraftError) Unwrap() error {
	return ErrInvalidDraft
}
