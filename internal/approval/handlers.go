package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/identity"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// StageHandler owns the behaviour of one faculty checkpoint. Handlers work on
// a private copy of the course state; the coordinator persists the copy only
// when the handler returns without error.
type StageHandler interface {
	// Checkpoint returns the awaiting stage the handler serves.
	Checkpoint() domain.Stage
	// Advance locks the pending draft into the checkpoint artifact and
	// generates the draft for the next checkpoint.
	Advance(ctx context.Context, in HandlerInput) (Artifact, error)
	// Regenerate replaces the pending draft with a fresh generation.
	Regenerate(ctx context.Context, in HandlerInput) error
	// Revise replaces the pending draft with a faculty supplied payload.
	Revise(in HandlerInput, payload map[string]any) error
	// Editable returns the pending draft in its editable form.
	Editable(state *CourseApprovalState) (map[string]any, error)
}

// artifactDiscarder is implemented by handlers whose Advance writes outside
// the course state. Discard undoes that write when the state update fails.
type artifactDiscarder interface {
	Discard(ctx context.Context, state *CourseApprovalState) error
}

// HandlerInput carries the working state and the faculty request.
type HandlerInput struct {
	State   *CourseApprovalState
	Actor   string
	Comment string
	Now     time.Time
}

// generationError marks a collaborator failure inside a handler.
type generationError struct {
	collaborator string
	err          error
}

func (e *generationError) Error() string {
	return fmt.Sprintf("%s: %v", e.collaborator, e.err)
}

func (e *generationError) Unwrap() error {
	return e.err
}

func generationFailed(collaborator string, err error) error {
	return &generationError{collaborator: collaborator, err: err}
}

type objectivesDocument struct {
	Objectives []interfaces.LearningObjective `json:"objectives"`
}

func newArtifact(kind domain.ArtifactKind, in HandlerInput, payload map[string]any) (Artifact, error) {
	if err := validation.ValidateArtifact(kind, payload); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Kind:      kind,
		ID:        identity.ArtifactUUID(in.State.CourseID, string(kind)),
		Payload:   payload,
		CreatedAt: in.Now,
		CreatedBy: in.Actor,
	}, nil
}

// validateGenerated checks collaborator output against the checkpoint schema
// so malformed generations never become reviewable drafts.
func validateGenerated(stage domain.Stage, document any) error {
	payload, err := validation.ToPayload(document)
	if err != nil {
		return generationFailed(CollaboratorContentGenerator, err)
	}
	if err := validation.ValidateDraft(stage, payload); err != nil {
		return generationFailed(CollaboratorContentGenerator, err)
	}
	return nil
}

func nextAttempt(state *CourseApprovalState, stage domain.Stage) int {
	if state.Attempts == nil {
		state.Attempts = map[domain.Stage]int{}
	}
	return state.Attempts[stage] + 1
}

func reviseInto(stage domain.Stage, payload map[string]any, target any) error {
	if err := validation.ValidateDraft(stage, payload); err != nil {
		return err
	}
	return validation.FromPayload(payload, target)
}

type objectivesHandler struct {
	generator interfaces.ContentGenerator
}

func (h *objectivesHandler) Checkpoint() domain.Stage {
	return domain.StageAwaitingLOApproval
}

// Generate produces learning objectives from the course content. It serves
// both the initial content processing and LO rejections.
func (h *objectivesHandler) Generate(ctx context.Context, in HandlerInput, attempt int) error {
	state := in.State
	objectives, err := h.generator.GenerateObjectives(ctx, interfaces.ObjectivesRequest{
		CourseID:   state.CourseID,
		RawContent: state.Content.Raw,
		Source:     state.Content.Origin,
		Attempt:    attempt,
		Feedback:   in.Comment,
	})
	if err != nil {
		return generationFailed(CollaboratorContentGenerator, err)
	}
	if err := validateGenerated(h.Checkpoint(), objectivesDocument{Objectives: objectives}); err != nil {
		return err
	}
	state.Draft.Objectives = objectives
	return nil
}

func (h *objectivesHandler) Advance(ctx context.Context, in HandlerInput) (Artifact, error) {
	state := in.State
	payload, err := validation.ToPayload(objectivesDocument{Objectives: state.Draft.Objectives})
	if err != nil {
		return Artifact{}, err
	}
	artifact, err := newArtifact(domain.ArtifactFACD, in, payload)
	if err != nil {
		return Artifact{}, err
	}

	structure, err := h.generator.GenerateStructure(ctx, interfaces.StructureRequest{
		CourseID:   state.CourseID,
		Title:      state.Content.Title,
		Objectives: state.Draft.Objectives,
		RawContent: state.Content.Raw,
		Source:     state.Content.Origin,
	})
	if err != nil {
		return Artifact{}, generationFailed(CollaboratorContentGenerator, err)
	}
	if structure == nil {
		return Artifact{}, generationFailed(CollaboratorContentGenerator, fmt.Errorf("empty course structure"))
	}
	if structure.CourseID == "" {
		structure.CourseID = state.CourseID
	}
	if err := validateGenerated(domain.StageAwaitingStructureConfirmation, structure); err != nil {
		return Artifact{}, err
	}
	state.Draft.Structure = structure
	return artifact, nil
}

func (h *objectivesHandler) Regenerate(ctx context.Context, in HandlerInput) error {
	attempt := nextAttempt(in.State, h.Checkpoint())
	if err := h.Generate(ctx, in, attempt); err != nil {
		return err
	}
	in.State.Attempts[h.Checkpoint()] = attempt
	return nil
}

func (h *objectivesHandler) Revise(in HandlerInput, payload map[string]any) error {
	var doc objectivesDocument
	if err := reviseInto(h.Checkpoint(), payload, &doc); err != nil {
		return err
	}
	in.State.Draft.Objectives = doc.Objectives
	return nil
}

func (h *objectivesHandler) Editable(state *CourseApprovalState) (map[string]any, error) {
	return validation.ToPayload(objectivesDocument{Objectives: state.Draft.Objectives})
}

type structureHandler struct {
	generator interfaces.ContentGenerator
}

func (h *structureHandler) Checkpoint() domain.Stage {
	return domain.StageAwaitingStructureConfirmation
}

func (h *structureHandler) Advance(ctx context.Context, in HandlerInput) (Artifact, error) {
	state := in.State
	if state.Draft.Structure == nil {
		return Artifact{}, fmt.Errorf("approval: no pending structure for %s", state.CourseID)
	}
	payload, err := validation.ToPayload(state.Draft.Structure)
	if err != nil {
		return Artifact{}, err
	}
	artifact, err := newArtifact(domain.ArtifactFCCS, in, payload)
	if err != nil {
		return Artifact{}, err
	}

	graph, err := h.generator.GenerateKnowledgeGraph(ctx, interfaces.GraphRequest{
		CourseID:  state.CourseID,
		Structure: *state.Draft.Structure,
	})
	if err != nil {
		return Artifact{}, generationFailed(CollaboratorContentGenerator, err)
	}
	if graph == nil {
		return Artifact{}, generationFailed(CollaboratorContentGenerator, fmt.Errorf("empty knowledge graph"))
	}
	if err := validateGenerated(domain.StageAwaitingKGFinalization, graph); err != nil {
		return Artifact{}, err
	}
	state.Draft.Graph = graph
	return artifact, nil
}

func (h *structureHandler) Regenerate(ctx context.Context, in HandlerInput) error {
	state := in.State
	attempt := nextAttempt(state, h.Checkpoint())
	structure, err := h.generator.GenerateStructure(ctx, interfaces.StructureRequest{
		CourseID:   state.CourseID,
		Title:      state.Content.Title,
		Objectives: state.Draft.Objectives,
		RawContent: state.Content.Raw,
		Source:     state.Content.Origin,
		Attempt:    attempt,
		Feedback:   in.Comment,
	})
	if err != nil {
		return generationFailed(CollaboratorContentGenerator, err)
	}
	if structure == nil {
		return generationFailed(CollaboratorContentGenerator, fmt.Errorf("empty course structure"))
	}
	if structure.CourseID == "" {
		structure.CourseID = state.CourseID
	}
	if err := validateGenerated(h.Checkpoint(), structure); err != nil {
		return err
	}
	state.Draft.Structure = structure
	state.Attempts[h.Checkpoint()] = attempt
	return nil
}

func (h *structureHandler) Revise(in HandlerInput, payload map[string]any) error {
	var structure interfaces.CourseStructure
	if err := reviseInto(h.Checkpoint(), payload, &structure); err != nil {
		return err
	}
	structure.CourseID = in.State.CourseID
	in.State.Draft.Structure = &structure
	return nil
}

func (h *structureHandler) Editable(state *CourseApprovalState) (map[string]any, error) {
	if state.Draft.Structure == nil {
		return nil, nil
	}
	return validation.ToPayload(state.Draft.Structure)
}

type graphHandler struct {
	generator interfaces.ContentGenerator
	store     interfaces.GraphStore
}

func (h *graphHandler) Checkpoint() domain.Stage {
	return domain.StageAwaitingKGFinalization
}

func (h *graphHandler) Advance(ctx context.Context, in HandlerInput) (Artifact, error) {
	state := in.State
	if state.Draft.Structure == nil || state.Draft.Graph == nil {
		return Artifact{}, fmt.Errorf("approval: no pending knowledge graph for %s", state.CourseID)
	}
	course := interfaces.FinalizedCourse{
		CourseID:    state.CourseID,
		FacultyID:   state.FacultyID,
		Structure:   *state.Draft.Structure,
		Graph:       *state.Draft.Graph,
		FinalizedAt: in.Now,
	}
	payload, err := validation.ToPayload(course)
	if err != nil {
		return Artifact{}, err
	}
	artifact, err := newArtifact(domain.ArtifactFFCS, in, payload)
	if err != nil {
		return Artifact{}, err
	}
	if h.store != nil {
		if err := h.store.SaveGraph(ctx, course); err != nil {
			return Artifact{}, generationFailed(CollaboratorGraphStore, err)
		}
	}
	return artifact, nil
}

func (h *graphHandler) Discard(ctx context.Context, state *CourseApprovalState) error {
	if h.store == nil {
		return nil
	}
	return h.store.DeleteGraph(ctx, state.CourseID)
}

func (h *graphHandler) Regenerate(ctx context.Context, in HandlerInput) error {
	state := in.State
	if state.Draft.Structure == nil {
		return fmt.Errorf("approval: no confirmed structure for %s", state.CourseID)
	}
	attempt := nextAttempt(state, h.Checkpoint())
	graph, err := h.generator.GenerateKnowledgeGraph(ctx, interfaces.GraphRequest{
		CourseID:  state.CourseID,
		Structure: *state.Draft.Structure,
		Attempt:   attempt,
		Feedback:  in.Comment,
	})
	if err != nil {
		return generationFailed(CollaboratorContentGenerator, err)
	}
	if graph == nil {
		return generationFailed(CollaboratorContentGenerator, fmt.Errorf("empty knowledge graph"))
	}
	if err := validateGenerated(h.Checkpoint(), graph); err != nil {
		return err
	}
	state.Draft.Graph = graph
	state.Attempts[h.Checkpoint()] = attempt
	return nil
}

func (h *graphHandler) Revise(in HandlerInput, payload map[string]any) error {
	var graph interfaces.KnowledgeGraph
	if err := reviseInto(h.Checkpoint(), payload, &graph); err != nil {
		return err
	}
	in.State.Draft.Graph = &graph
	return nil
}

func (h *graphHandler) Editable(state *CourseApprovalState) (map[string]any, error) {
	if state.Draft.Graph == nil {
		return nil, nil
	}
	return validation.ToPayload(state.Draft.Graph)
}
