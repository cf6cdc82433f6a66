package approval_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-courseflow/internal/approval"
	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/google/uuid"
)

type stubGenerator struct {
	mu             sync.Mutex
	objectiveCalls atomic.Int32
	structureCalls atomic.Int32
	graphCalls     atomic.Int32
	objectivesErr  error
	structureErr   error
	graphErr       error
	structureDelay time.Duration
	lastObjectives interfaces.ObjectivesRequest
	lastStructure  interfaces.StructureRequest
	lastGraph      interfaces.GraphRequest
	blockUntilCtx  bool
}

func (g *stubGenerator) setStructureErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.structureErr = err
}

func (g *stubGenerator) setObjectivesErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objectivesErr = err
}

func (g *stubGenerator) GenerateObjectives(ctx context.Context, req interfaces.ObjectivesRequest) ([]interfaces.LearningObjective, error) {
	g.objectiveCalls.Add(1)
	g.mu.Lock()
	g.lastObjectives = req
	err := g.objectivesErr
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []interfaces.LearningObjective{
		{ID: "lo-1", Title: fmt.Sprintf("Explain packet switching (attempt %d)", req.Attempt), Verb: "explain"},
		{ID: "lo-2", Title: "Configure static routes", Verb: "configure"},
	}, nil
}

func (g *stubGenerator) GenerateStructure(ctx context.Context, req interfaces.StructureRequest) (*interfaces.CourseStructure, error) {
	g.structureCalls.Add(1)
	g.mu.Lock()
	g.lastStructure = req
	err := g.structureErr
	delay := g.structureDelay
	block := g.blockUntilCtx
	g.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	structure := &interfaces.CourseStructure{
		CourseID:   req.CourseID,
		Title:      req.Title,
		Objectives: req.Objectives,
	}
	for _, objective := range req.Objectives {
		structure.Components = append(structure.Components, interfaces.KnowledgeComponent{
			ID:          "kc-" + objective.ID,
			ObjectiveID: objective.ID,
			Title:       objective.Title,
		})
	}
	return structure, nil
}

func (g *stubGenerator) GenerateKnowledgeGraph(ctx context.Context, req interfaces.GraphRequest) (*interfaces.KnowledgeGraph, error) {
	g.graphCalls.Add(1)
	g.mu.Lock()
	g.lastGraph = req
	err := g.graphErr
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	graph := &interfaces.KnowledgeGraph{}
	for _, component := range req.Structure.Components {
		graph.Nodes = append(graph.Nodes,
			interfaces.GraphNode{ID: component.ObjectiveID, Label: component.Title, Kind: "objective"},
			interfaces.GraphNode{ID: component.ID, Label: component.Title, Kind: "component"},
		)
		graph.Edges = append(graph.Edges, interfaces.GraphEdge{From: component.ObjectiveID, To: component.ID, Relation: "requires"})
	}
	return graph, nil
}

type stubGraphStore struct {
	mu     sync.Mutex
	saved  map[string]interfaces.FinalizedCourse
	errFor error
}

func newStubGraphStore() *stubGraphStore {
	return &stubGraphStore{saved: map[string]interfaces.FinalizedCourse{}}
}

func (s *stubGraphStore) SaveGraph(_ context.Context, course interfaces.FinalizedCourse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errFor != nil {
		return s.errFor
	}
	s.saved[course.CourseID] = course
	return nil
}

func (s *stubGraphStore) LoadGraph(_ context.Context, courseID string) (*interfaces.FinalizedCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.saved[courseID]
	if !ok {
		return nil, errors.New("graph not found")
	}
	return &course, nil
}

func (s *stubGraphStore) DeleteGraph(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, courseID)
	return nil
}

type stubTrees struct {
	calls atomic.Int32
	err   error
}

func (s *stubTrees) Generate(_ context.Context, course interfaces.FinalizedCourse, learnerID string, learner interfaces.LearnerContext) (*interfaces.LearningTree, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	tree := &interfaces.LearningTree{
		ID:        uuid.NewString(),
		CourseID:  course.CourseID,
		LearnerID: learnerID,
	}
	for idx, objective := range course.Structure.Objectives {
		tree.Nodes = append(tree.Nodes, interfaces.LearningTreeNode{ObjectiveID: objective.ID, Title: objective.Title, Order: idx})
	}
	return tree, nil
}

type fixture struct {
	service   approval.Service
	repo      approval.StateRepository
	generator *stubGenerator
	graphs    *stubGraphStore
	trees     *stubTrees
}

func newFixture(t *testing.T, opts ...approval.ServiceOption) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, approval.NewMemoryStateRepository(), opts...)
}

func newFixtureWithRepo(t *testing.T, repo approval.StateRepository, opts ...approval.ServiceOption) *fixture {
	t.Helper()
	f := &fixture{
		repo:      repo,
		generator: &stubGenerator{},
		graphs:    newStubGraphStore(),
		trees:     &stubTrees{},
	}
	base := []approval.ServiceOption{
		approval.WithGraphStore(f.graphs),
		approval.WithTreeService(f.trees),
		approval.WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }),
	}
	svc, err := approval.NewService(repo, f.generator, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.service = svc
	return f
}

func (f *fixture) start(t *testing.T, courseID string) *approval.ActionResult {
	t.Helper()
	result, err := f.service.StartWorkflow(context.Background(), approval.StartRequest{
		CourseID:   courseID,
		FacultyID:  "PROF_1",
		Title:      "Computer Networks",
		RawContent: "# Computer Networks\n\n## Packet switching\n",
		Source:     "elasticsearch",
	})
	if err != nil {
		t.Fatalf("start workflow: %v", err)
	}
	return result
}

func (f *fixture) act(t *testing.T, courseID string, action string) *approval.ActionResult {
	t.Helper()
	result, err := f.service.SubmitFacultyAction(context.Background(), approval.ActionRequest{
		CourseID: courseID,
		Action:   approvalAction(action),
	})
	if err != nil {
		t.Fatalf("%s: %v", action, err)
	}
	return result
}

func (f *fixture) status(t *testing.T, courseID string) *approval.Status {
	t.Helper()
	status, err := f.service.GetStatus(context.Background(), courseID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	return status
}

func approvalAction(action string) domain.Action {
	return domain.NormalizeAction(action)
}
