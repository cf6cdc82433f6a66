package interfaces

import (
	"context"
	"time"
)

// PLTGenerator produces a personalized learning tree for a learner from a
// finalized course.
type PLTGenerator interface {
	GenerateTree(ctx context.Context, req PLTRequest) (*LearningTree, error)
}

// LearnerContext describes the learner a tree is generated for.
type LearnerContext struct {
	Level               string         `json:"level,omitempty" yaml:"level"`
	Goals               []string       `json:"goals,omitempty" yaml:"goals"`
	CompletedComponents []string       `json:"completed_components,omitempty" yaml:"completed_components"`
	PreferredMethods    []string       `json:"preferred_methods,omitempty" yaml:"preferred_methods"`
	Attributes          map[string]any `json:"attributes,omitempty" yaml:"attributes"`
}

// PLTRequest carries the finalized course and learner context to a generator.
type PLTRequest struct {
	CourseID  string
	LearnerID string
	Context   LearnerContext
	Course    FinalizedCourse
}

// LearningTree is an ordered, learner specific path through a course.
type LearningTree struct {
	ID          string             `json:"id"`
	CourseID    string             `json:"course_id"`
	LearnerID   string             `json:"learner_id"`
	Fingerprint string             `json:"fingerprint"`
	Nodes       []LearningTreeNode `json:"nodes"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// LearningTreeNode groups the steps for one objective.
type LearningTreeNode struct {
	ObjectiveID string             `json:"objective_id"`
	Title       string             `json:"title"`
	Order       int                `json:"order"`
	Steps       []LearningTreeStep `json:"steps"`
}

// LearningTreeStep is a single knowledge component on the learner's path.
type LearningTreeStep struct {
	ComponentID string   `json:"component_id"`
	Title       string   `json:"title"`
	Process     string   `json:"process,omitempty"`
	Method      string   `json:"method,omitempty"`
	Resources   []string `json:"resources,omitempty"`
	Mastered    bool     `json:"mastered,omitempty"`
}
