package approval

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStateRepository is an in-memory state store for tests and single
// process deployments.
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[string]*CourseApprovalState
}

// NewMemoryStateRepository constructs the repository.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		states: make(map[string]*CourseApprovalState),
	}
}

// Create inserts a new course state with version 1.
func (m *MemoryStateRepository) Create(_ context.Context, state *CourseApprovalState) (*CourseApprovalState, error) {
	if state == nil {
		return nil, ErrCourseIDRequired
	}
	key := strings.TrimSpace(state.CourseID)
	if key == "" {
		return nil, ErrCourseIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.states[key]; ok {
		return nil, &DuplicateWorkflowError{CourseID: key, Stage: existing.Stage, FacultyID: existing.FacultyID}
	}
	stored := cloneState(state)
	stored.Version = 1
	m.states[key] = stored
	return cloneState(stored), nil
}

// Get retrieves a course state.
func (m *MemoryStateRepository) Get(_ context.Context, courseID string) (*CourseApprovalState, error) {
	key := strings.TrimSpace(courseID)
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[key]
	if !ok {
		return nil, &NotFoundError{CourseID: key}
	}
	return cloneState(state), nil
}

// Update replaces the stored state when versions match.
func (m *MemoryStateRepository) Update(_ context.Context, state *CourseApprovalState) (*CourseApprovalState, error) {
	if state == nil {
		return nil, ErrCourseIDRequired
	}
	key := strings.TrimSpace(state.CourseID)

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.states[key]
	if !ok {
		return nil, &NotFoundError{CourseID: key}
	}
	if existing.Version != state.Version {
		return nil, &ConcurrentUpdateError{CourseID: key, Expected: state.Version}
	}
	stored := cloneState(state)
	stored.Version = existing.Version + 1
	m.states[key] = stored
	return cloneState(stored), nil
}

// List returns every course state ordered by course id.
func (m *MemoryStateRepository) List(_ context.Context) ([]*CourseApprovalState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*CourseApprovalState, 0, len(m.states))
	for _, state := range m.states {
		out = append(out, cloneState(state))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CourseID < out[j].CourseID
	})
	return out, nil
}
