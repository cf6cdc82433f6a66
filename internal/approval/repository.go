package approval

import (
	"context"
	"maps"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// StateRepository persists course approval states keyed by course id.
//
// Create fails with *DuplicateWorkflowError when the course already exists.
// Update writes only when the stored version equals state.Version and fails
// with *ConcurrentUpdateError otherwise; on success the returned record
// carries the incremented version.
type StateRepository interface {
	Create(ctx context.Context, state *CourseApprovalState) (*CourseApprovalState, error)
	Get(ctx context.Context, courseID string) (*CourseApprovalState, error)
	Update(ctx context.Context, state *CourseApprovalState) (*CourseApprovalState, error)
	List(ctx context.Context) ([]*CourseApprovalState, error)
}

func cloneState(state *CourseApprovalState) *CourseApprovalState {
	if state == nil {
		return nil
	}
	cloned := *state
	if state.History != nil {
		cloned.History = make([]HistoryEntry, len(state.History))
		copy(cloned.History, state.History)
	}
	if state.Artifacts != nil {
		cloned.Artifacts = make(map[domain.ArtifactKind]Artifact, len(state.Artifacts))
		for kind, artifact := range state.Artifacts {
			artifact.Payload = validation.ClonePayload(artifact.Payload)
			cloned.Artifacts[kind] = artifact
		}
	}
	cloned.EditCounts = maps.Clone(state.EditCounts)
	cloned.Attempts = maps.Clone(state.Attempts)
	cloned.Draft = cloneDraft(state.Draft)
	return &cloned
}

func cloneDraft(draft Draft) Draft {
	out := Draft{}
	if draft.Objectives != nil {
		out.Objectives = cloneObjectives(draft.Objectives)
	}
	if draft.Structure != nil {
		structure := *draft.Structure
		structure.Objectives = cloneObjectives(draft.Structure.Objectives)
		structure.Components = append([]interfaces.KnowledgeComponent(nil), draft.Structure.Components...)
		structure.Processes = append([]interfaces.LearningProcess(nil), draft.Structure.Processes...)
		structure.Methods = append([]interfaces.InstructionMethod(nil), draft.Structure.Methods...)
		structure.Resources = append([]interfaces.Resource(nil), draft.Structure.Resources...)
		out.Structure = &structure
	}
	if draft.Graph != nil {
		graph := interfaces.KnowledgeGraph{
			Nodes: make([]interfaces.GraphNode, len(draft.Graph.Nodes)),
			Edges: append([]interfaces.GraphEdge(nil), draft.Graph.Edges...),
		}
		for idx, node := range draft.Graph.Nodes {
			node.Properties = validation.ClonePayload(node.Properties)
			graph.Nodes[idx] = node
		}
		out.Graph = &graph
	}
	return out
}

func cloneObjectives(input []interfaces.LearningObjective) []interfaces.LearningObjective {
	if input == nil {
		return nil
	}
	out := make([]interfaces.LearningObjective, len(input))
	for idx, objective := range input {
		objective.Keywords = append([]string(nil), objective.Keywords...)
		out[idx] = objective
	}
	return out
}
