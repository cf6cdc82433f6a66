package interfaces

import (
	"context"
	"time"
)

// FinalizedCourse is the locked course structure and knowledge graph produced
// when faculty finalize a course (the FFCS document).
type FinalizedCourse struct {
	CourseID    string          `json:"course_id"`
	FacultyID   string          `json:"faculty_id"`
	Structure   CourseStructure `json:"structure"`
	Graph       KnowledgeGraph  `json:"graph"`
	FinalizedAt time.Time       `json:"finalized_at"`
}

// GraphStore persists finalized knowledge graphs and structure documents.
type GraphStore interface {
	SaveGraph(ctx context.Context, course FinalizedCourse) error
	LoadGraph(ctx context.Context, courseID string) (*FinalizedCourse, error)
	// DeleteGraph removes the stored course. Deleting a missing course is not an error.
	DeleteGraph(ctx context.Context, courseID string) error
}
