package plt_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/goliatone/go-courseflow/pkg/testsupport"
)

func loadCourse(t *testing.T) interfaces.FinalizedCourse {
	t.Helper()
	var course interfaces.FinalizedCourse
	if err := testsupport.LoadGolden("testdata/finalized_course.json", &course); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return course
}

type countingGenerator struct {
	calls   atomic.Int32
	gate    chan struct{}
	entered sync.Once
	started chan struct{}
	err     error
}

func newCountingGenerator() *countingGenerator {
	return &countingGenerator{started: make(chan struct{})}
}

func (g *countingGenerator) GenerateTree(ctx context.Context, req interfaces.PLTRequest) (*interfaces.LearningTree, error) {
	g.calls.Add(1)
	g.entered.Do(func() { close(g.started) })
	if g.gate != nil {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &interfaces.LearningTree{
		Nodes: []interfaces.LearningTreeNode{{
			ObjectiveID: "lo-1",
			Title:       "objective for " + req.LearnerID,
			Order:       1,
			Steps:       []interfaces.LearningTreeStep{{ComponentID: "kc-1", Title: "component"}},
		}},
	}, nil
}

var errGenerator = errors.New("generator offline")
