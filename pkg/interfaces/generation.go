package interfaces

import "context"

// ContentGenerator produces the reviewable material for each faculty checkpoint.
// Implementations may call out to LLM providers; the coordinator bounds every
// call with the configured generation timeout.
type ContentGenerator interface {
	// GenerateObjectives extracts learning objectives from raw course content.
	GenerateObjectives(ctx context.Context, req ObjectivesRequest) ([]LearningObjective, error)
	// GenerateStructure expands approved objectives into a full course structure.
	GenerateStructure(ctx context.Context, req StructureRequest) (*CourseStructure, error)
	// GenerateKnowledgeGraph builds the knowledge graph for a confirmed structure.
	GenerateKnowledgeGraph(ctx context.Context, req GraphRequest) (*KnowledgeGraph, error)
}

// ObjectivesRequest carries raw content into objective generation. Attempt is
// zero for the first generation and increments on every faculty rejection.
type ObjectivesRequest struct {
	CourseID   string
	RawContent string
	Source     string
	Attempt    int
	Feedback   string
}

// StructureRequest carries approved objectives into structure generation.
// RawContent and Source repeat the material objectives were derived from.
type StructureRequest struct {
	CourseID   string
	Title      string
	Objectives []LearningObjective
	RawContent string
	Source     string
	Attempt    int
	Feedback   string
}

// GraphRequest carries a confirmed structure into knowledge graph generation.
type GraphRequest struct {
	CourseID  string
	Structure CourseStructure
	Attempt   int
	Feedback  string
}

// LearningObjective is a faculty reviewable unit generated from raw content.
type LearningObjective struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Verb        string   `json:"verb,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// CourseStructure is the full course layout derived from approved objectives.
type CourseStructure struct {
	CourseID   string               `json:"course_id"`
	Title      string               `json:"title,omitempty"`
	Objectives []LearningObjective  `json:"objectives"`
	Components []KnowledgeComponent `json:"components"`
	Processes  []LearningProcess    `json:"processes,omitempty"`
	Methods    []InstructionMethod  `json:"methods,omitempty"`
	Resources  []Resource           `json:"resources,omitempty"`
}

// KnowledgeComponent is an atomic unit of knowledge supporting an objective.
type KnowledgeComponent struct {
	ID          string `json:"id"`
	ObjectiveID string `json:"objective_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// LearningProcess describes the cognitive process a component exercises.
type LearningProcess struct {
	ID          string `json:"id"`
	ComponentID string `json:"component_id"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// InstructionMethod describes how a learning process is taught.
type InstructionMethod struct {
	ID          string `json:"id"`
	ProcessID   string `json:"process_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Resource is a reference material attached to a knowledge component.
type Resource struct {
	ID          string `json:"id"`
	ComponentID string `json:"component_id"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// KnowledgeGraph links objectives, components and resources of a course.
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a vertex of the knowledge graph.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Kind       string         `json:"kind"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphEdge is a directed relation between two graph nodes.
type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// Node kinds used in knowledge graphs.
const (
	GraphNodeCourse    = "course"
	GraphNodeObjective = "objective"
	GraphNodeComponent = "component"
	GraphNodeResource  = "resource"
)

// Edge relations used in knowledge graphs. A prerequisite edge points from
// the objective that must come first to the objective that depends on it.
const (
	RelationHasObjective = "has_objective"
	RelationHasComponent = "has_component"
	RelationHasResource  = "has_resource"
	RelationPrerequisite = "prerequisite_of"
)
