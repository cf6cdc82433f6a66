package graphstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

var (
	ErrGraphNotFound    = errors.New("graphstore: graph not found")
	ErrCourseIDRequired = errors.New("graphstore: course id required")
)

// NotFoundError reports a course without a stored graph.
type NotFoundError struct {
	CourseID string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrGraphNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGraphNotFound.Error(), e.CourseID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrGraphNotFound
}

// MemoryStore keeps finalized courses in process.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[string]interfaces.FinalizedCourse
}

var _ interfaces.GraphStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{courses: make(map[string]interfaces.FinalizedCourse)}
}

func (m *MemoryStore) SaveGraph(_ context.Context, course interfaces.FinalizedCourse) error {
	courseID := strings.TrimSpace(course.CourseID)
	if courseID == "" {
		return ErrCourseIDRequired
	}
	payload, err := encodeCourse(course)
	if err != nil {
		return err
	}
	var cloned interfaces.FinalizedCourse
	if err := validation.FromPayload(payload, &cloned); err != nil {
		return fmt.Errorf("graphstore: decode course: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[courseID] = cloned
	return nil
}

func (m *MemoryStore) LoadGraph(_ context.Context, courseID string) (*interfaces.FinalizedCourse, error) {
	courseID = strings.TrimSpace(courseID)
	m.mu.RLock()
	course, ok := m.courses[courseID]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{CourseID: courseID}
	}
	cloned, err := cloneCourse(course)
	if err != nil {
		return nil, err
	}
	return &cloned, nil
}

func (m *MemoryStore) DeleteGraph(_ context.Context, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return ErrCourseIDRequired
	}
	m.mu.Lock()
	delete(m.courses, courseID)
	m.mu.Unlock()
	return nil
}

// encodeCourse converts the course to its FFCS payload and validates it.
func encodeCourse(course interfaces.FinalizedCourse) (map[string]any, error) {
	payload, err := validation.ToPayload(course)
	if err != nil {
		return nil, fmt.Errorf("graphstore: encode course: %w", err)
	}
	if err := validation.ValidateArtifact(domain.ArtifactFFCS, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func cloneCourse(course interfaces.FinalizedCourse) (interfaces.FinalizedCourse, error) {
	var out interfaces.FinalizedCourse
	payload, err := validation.ToPayload(course)
	if err != nil {
		return out, fmt.Errorf("graphstore: encode course: %w", err)
	}
	if err := validation.FromPayload(payload, &out); err != nil {
		return out, fmt.Errorf("graphstore: decode course: %w", err)
	}
	return out, nil
}
