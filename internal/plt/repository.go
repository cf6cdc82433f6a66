package plt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-courseflow/internal/identity"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

var ErrTreeNotFound = errors.New("plt: learning tree not found")

// TreeNotFoundError identifies the missing tree.
type TreeNotFoundError struct {
	CourseID    string
	LearnerID   string
	Fingerprint string
}

func (e *TreeNotFoundError) Error() string {
	if e == nil {
		return ErrTreeNotFound.Error()
	}
	return fmt.Sprintf("%s: course=%s learner=%s", ErrTreeNotFound.Error(), e.CourseID, e.LearnerID)
}

func (e *TreeNotFoundError) Unwrap() error {
	return ErrTreeNotFound
}

// Repository stores learning trees keyed by course, learner and learner
// context fingerprint.
type Repository interface {
	Find(ctx context.Context, courseID, learnerID, fingerprint string) (*interfaces.LearningTree, error)
	Save(ctx context.Context, tree *interfaces.LearningTree) error
	ListByLearner(ctx context.Context, courseID, learnerID string) ([]*interfaces.LearningTree, error)
}

// MemoryRepository keeps learning trees in process.
type MemoryRepository struct {
	mu    sync.RWMutex
	trees map[string]*interfaces.LearningTree
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{trees: make(map[string]*interfaces.LearningTree)}
}

func (m *MemoryRepository) Find(_ context.Context, courseID, learnerID, fingerprint string) (*interfaces.LearningTree, error) {
	key := identity.LearningTreeUUID(courseID, learnerID, fingerprint).String()
	m.mu.RLock()
	defer m.mu.RUnlock()
	tree, ok := m.trees[key]
	if !ok {
		return nil, &TreeNotFoundError{CourseID: courseID, LearnerID: learnerID, Fingerprint: fingerprint}
	}
	return cloneTree(tree), nil
}

func (m *MemoryRepository) Save(_ context.Context, tree *interfaces.LearningTree) error {
	if tree == nil {
		return errors.New("plt: tree required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees[tree.ID] = cloneTree(tree)
	return nil
}

func (m *MemoryRepository) ListByLearner(_ context.Context, courseID, learnerID string) ([]*interfaces.LearningTree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*interfaces.LearningTree{}
	for _, tree := range m.trees {
		if tree.CourseID == courseID && tree.LearnerID == learnerID {
			out = append(out, cloneTree(tree))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.Before(out[j].GeneratedAt)
	})
	return out, nil
}

func cloneTree(tree *interfaces.LearningTree) *interfaces.LearningTree {
	if tree == nil {
		return nil
	}
	cloned := *tree
	cloned.Nodes = make([]interfaces.LearningTreeNode, len(tree.Nodes))
	for idx, node := range tree.Nodes {
		steps := make([]interfaces.LearningTreeStep, len(node.Steps))
		for sIdx, step := range node.Steps {
			step.Resources = append([]string(nil), step.Resources...)
			steps[sIdx] = step
		}
		node.Steps = steps
		cloned.Nodes[idx] = node
	}
	return &cloned
}
