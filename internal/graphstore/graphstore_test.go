package graphstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-courseflow/internal/graphstore"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/goliatone/go-courseflow/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
)

func sampleCourse() interfaces.FinalizedCourse {
	return interfaces.FinalizedCourse{
		CourseID:  "CSN",
		FacultyID: "PROF_1",
		Structure: interfaces.CourseStructure{
			CourseID: "CSN",
			Title:    "Computer Networks",
			Objectives: []interfaces.LearningObjective{
				{ID: "lo-addressing", Title: "Describe IP addressing"},
			},
			Components: []interfaces.KnowledgeComponent{
				{ID: "kc-addressing", ObjectiveID: "lo-addressing", Title: "IPv4 addresses"},
			},
		},
		Graph: interfaces.KnowledgeGraph{
			Nodes: []interfaces.GraphNode{
				{ID: "CSN", Label: "Computer Networks", Kind: interfaces.GraphNodeCourse},
				{ID: "lo-addressing", Label: "Describe IP addressing", Kind: interfaces.GraphNodeObjective},
			},
			Edges: []interfaces.GraphEdge{
				{From: "CSN", To: "lo-addressing", Relation: interfaces.RelationHasObjective},
			},
		},
		FinalizedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

type storeCase struct {
	name  string
	build func(t *testing.T) interfaces.GraphStore
}

func storeCases() []storeCase {
	return []storeCase{
		{
			name: "memory",
			build: func(t *testing.T) interfaces.GraphStore {
				return graphstore.NewMemoryStore()
			},
		},
		{
			name: "bun",
			build: func(t *testing.T) interfaces.GraphStore {
				store := graphstore.NewBunStore(testsupport.NewBunDB(t))
				if err := store.EnsureSchema(context.Background()); err != nil {
					t.Fatalf("ensure schema: %v", err)
				}
				return store
			},
		},
		{
			name: "bun with cache",
			build: func(t *testing.T) interfaces.GraphStore {
				cacheCfg := repocache.DefaultConfig()
				cacheCfg.TTL = time.Minute
				cacheSvc, err := repocache.NewCacheService(cacheCfg)
				if err != nil {
					t.Fatalf("cache service: %v", err)
				}
				store := graphstore.NewBunStoreWithCache(testsupport.NewBunDB(t), cacheSvc, repocache.NewDefaultKeySerializer())
				if err := store.EnsureSchema(context.Background()); err != nil {
					t.Fatalf("ensure schema: %v", err)
				}
				return store
			},
		},
	}
}

func TestGraphStoreRoundTrip(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t)

			if _, err := store.LoadGraph(ctx, "CSN"); !errors.Is(err, graphstore.ErrGraphNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}

			if err := store.SaveGraph(ctx, sampleCourse()); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := store.LoadGraph(ctx, "CSN")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.FacultyID != "PROF_1" || loaded.Structure.Title != "Computer Networks" {
				t.Fatalf("unexpected course: %+v", loaded)
			}
			if len(loaded.Graph.Nodes) != 2 || len(loaded.Graph.Edges) != 1 {
				t.Fatalf("unexpected graph: %+v", loaded.Graph)
			}
			if !loaded.FinalizedAt.Equal(sampleCourse().FinalizedAt) {
				t.Fatalf("unexpected finalized at: %v", loaded.FinalizedAt)
			}

			loaded.Graph.Nodes[0].Label = "mutated"
			again, err := store.LoadGraph(ctx, "CSN")
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if again.Graph.Nodes[0].Label != "Computer Networks" {
				t.Fatalf("expected stored graph to be isolated from callers")
			}
		})
	}
}

func TestGraphStoreDelete(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t)

			if err := store.DeleteGraph(ctx, "CSN"); err != nil {
				t.Fatalf("delete missing graph: %v", err)
			}
			if err := store.SaveGraph(ctx, sampleCourse()); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.DeleteGraph(ctx, "CSN"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.LoadGraph(ctx, "CSN"); !errors.Is(err, graphstore.ErrGraphNotFound) {
				t.Fatalf("expected not found after delete, got %v", err)
			}
			if err := store.DeleteGraph(ctx, " "); !errors.Is(err, graphstore.ErrCourseIDRequired) {
				t.Fatalf("expected course id error, got %v", err)
			}
		})
	}
}

func TestGraphStoreRejectsInvalidCourses(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t)

			if err := store.SaveGraph(ctx, interfaces.FinalizedCourse{}); !errors.Is(err, graphstore.ErrCourseIDRequired) {
				t.Fatalf("expected course id error, got %v", err)
			}

			invalid := sampleCourse()
			invalid.FacultyID = ""
			err := store.SaveGraph(ctx, invalid)
			if !errors.Is(err, validation.ErrSchemaValidation) {
				t.Fatalf("expected schema validation error, got %v", err)
			}
		})
	}
}

func TestMemoryStoreReplacesGraph(t *testing.T) {
	ctx := context.Background()
	store := graphstore.NewMemoryStore()

	if err := store.SaveGraph(ctx, sampleCourse()); err != nil {
		t.Fatalf("save: %v", err)
	}
	updated := sampleCourse()
	updated.FacultyID = "PROF_2"
	if err := store.SaveGraph(ctx, updated); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, err := store.LoadGraph(ctx, "CSN")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.FacultyID != "PROF_2" {
		t.Fatalf("expected replaced graph, got %s", loaded.FacultyID)
	}
}

func TestBunStoreReplacesGraph(t *testing.T) {
	ctx := context.Background()
	store := graphstore.NewBunStore(testsupport.NewBunDB(t))
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if err := store.SaveGraph(ctx, sampleCourse()); err != nil {
		t.Fatalf("save: %v", err)
	}
	updated := sampleCourse()
	updated.FacultyID = "PROF_2"
	if err := store.SaveGraph(ctx, updated); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, err := store.LoadGraph(ctx, "CSN")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.FacultyID != "PROF_2" {
		t.Fatalf("expected replaced graph, got %s", loaded.FacultyID)
	}
}
