package approval

import (
	"context"
	"time"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/google/uuid"
)

// Outcome classifies a history entry.
type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeGenerationFailed Outcome = "generation_failed"
	OutcomeRejectedAttempt  Outcome = "rejected_attempt"
)

// History actions recorded for transitions that are not faculty actions.
const (
	HistoryActionStart            = "start"
	HistoryActionContentGenerated = "content_generated"
	HistoryActionHandOff          = "hand_off"
	HistoryActionComplete         = "complete"
)

// CourseApprovalState is the approval record of a single course.
type CourseApprovalState struct {
	CourseID   string                           `json:"course_id"`
	Stage      domain.Stage                     `json:"stage"`
	FacultyID  string                           `json:"faculty_id"`
	Content    ContentSource                    `json:"content"`
	History    []HistoryEntry                   `json:"history"`
	Artifacts  map[domain.ArtifactKind]Artifact `json:"artifacts"`
	EditCounts map[domain.Stage]int             `json:"edit_counts"`
	Attempts   map[domain.Stage]int             `json:"attempts"`
	Draft      Draft                            `json:"draft"`
	Version    int                              `json:"version"`
	CreatedAt  time.Time                        `json:"created_at"`
	UpdatedAt  time.Time                        `json:"updated_at"`
}

// ContentSource is the raw material objectives are generated from.
type ContentSource struct {
	Title  string `json:"title,omitempty"`
	Raw    string `json:"raw"`
	Origin string `json:"origin,omitempty"`
}

// HistoryEntry is an append-only audit record.
type HistoryEntry struct {
	ID          uuid.UUID    `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	StageBefore domain.Stage `json:"stage_before"`
	Action      string       `json:"action"`
	Via         domain.Stage `json:"via,omitempty"`
	StageAfter  domain.Stage `json:"stage_after"`
	Actor       string       `json:"actor"`
	Comment     string       `json:"comment,omitempty"`
	Outcome     Outcome      `json:"outcome"`
	Error       string       `json:"error,omitempty"`
}

// Artifact is an immutable document produced when a checkpoint is passed.
type Artifact struct {
	Kind      domain.ArtifactKind `json:"kind"`
	ID        uuid.UUID           `json:"id"`
	Payload   map[string]any      `json:"payload"`
	CreatedAt time.Time           `json:"created_at"`
	CreatedBy string              `json:"created_by"`
}

// Draft holds generated material that has not been locked into an artifact
// yet. Earlier sections stay populated once approved.
type Draft struct {
	Objectives []interfaces.LearningObjective `json:"objectives,omitempty"`
	Structure  *interfaces.CourseStructure    `json:"structure,omitempty"`
	Graph      *interfaces.KnowledgeGraph     `json:"graph,omitempty"`
}

// ArtifactRef references a stored artifact without its payload.
type ArtifactRef struct {
	Kind      domain.ArtifactKind `json:"kind"`
	ID        uuid.UUID           `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
}

// Status is the read model answered by GetStatus.
type Status struct {
	CourseID         string                `json:"course_id"`
	Stage            domain.Stage          `json:"stage"`
	FacultyID        string                `json:"faculty_id"`
	ArtifactsPresent []domain.ArtifactKind `json:"artifacts_present"`
	Artifacts        []ArtifactRef         `json:"artifacts,omitempty"`
	EditCounts       map[domain.Stage]int  `json:"edit_counts,omitempty"`
	AvailableActions []domain.Action       `json:"available_actions,omitempty"`
	History          []HistoryEntry        `json:"history"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// StartRequest begins a workflow for a course.
type StartRequest struct {
	CourseID   string
	FacultyID  string
	Title      string
	RawContent string
	Source     string
}

// ActionRequest submits a faculty decision. Payload is only read for edit
// and replaces the pending draft of the current checkpoint.
type ActionRequest struct {
	CourseID string
	Action   domain.Action
	Actor    string
	Comment  string
	Payload  map[string]any
}

// CompleteRequest hands a finalized course off and closes the workflow.
type CompleteRequest struct {
	CourseID string
	Actor    string
}

// PLTRequest asks for a personalized learning tree.
type PLTRequest struct {
	CourseID  string
	LearnerID string
	Context   interfaces.LearnerContext
}

// ActionResult is returned by every accepted mutation.
type ActionResult struct {
	CourseID  string         `json:"course_id"`
	Action    string         `json:"action"`
	StageFrom domain.Stage   `json:"stage_from"`
	Stage     domain.Stage   `json:"stage"`
	Artifact  *ArtifactRef   `json:"artifact,omitempty"`
	Editable  map[string]any `json:"editable,omitempty"`
	EditCount int            `json:"edit_count,omitempty"`
	EditsLeft int            `json:"edits_left"`
	History   HistoryEntry   `json:"history"`
}

// Service is the faculty approval workflow coordinator.
type Service interface {
	StartWorkflow(ctx context.Context, req StartRequest) (*ActionResult, error)
	SubmitFacultyAction(ctx context.Context, req ActionRequest) (*ActionResult, error)
	CompleteWorkflow(ctx context.Context, req CompleteRequest) (*ActionResult, error)
	RequestPLT(ctx context.Context, req PLTRequest) (*interfaces.LearningTree, error)
	GetStatus(ctx context.Context, courseID string) (*Status, error)
	ListWorkflows(ctx context.Context) ([]*Status, error)
	FinalizedCourse(ctx context.Context, courseID string) (*interfaces.FinalizedCourse, error)
}

// TreeService produces learning trees for finalized courses.
type TreeService interface {
	Generate(ctx context.Context, course interfaces.FinalizedCourse, learnerID string, learner interfaces.LearnerContext) (*interfaces.LearningTree, error)
}
