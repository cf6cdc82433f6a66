package approval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

func TestMemoryStateRepositoryIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStateRepository()

	state := &CourseApprovalState{
		CourseID:   "CSN",
		Stage:      domain.StageAwaitingLOApproval,
		EditCounts: map[domain.Stage]int{},
		Draft: Draft{Objectives: []interfaces.LearningObjective{
			{ID: "lo-1", Title: "Routing", Keywords: []string{"ip"}},
		}},
	}
	created, err := repo.Create(ctx, state)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Draft.Objectives[0].Keywords[0] = "mutated"
	created.EditCounts[domain.StageAwaitingLOApproval] = 9
	state.Draft.Objectives[0].Title = "mutated"

	loaded, err := repo.Get(ctx, "CSN")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Draft.Objectives[0].Keywords[0] != "ip" || loaded.Draft.Objectives[0].Title != "Routing" {
		t.Fatalf("expected stored draft to be isolated, got %+v", loaded.Draft)
	}
	if loaded.EditCounts[domain.StageAwaitingLOApproval] != 0 {
		t.Fatal("expected stored edit counts to be isolated")
	}
}

func TestMemoryStateRepositoryVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStateRepository()
	created, _ := repo.Create(ctx, &CourseApprovalState{CourseID: "CSN"})

	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, err := repo.Update(ctx, created)
	var conflict *ConcurrentUpdateError
	if !errors.As(err, &conflict) || conflict.Expected != 1 {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestCourseLocksHonourContext(t *testing.T) {
	locks := newCourseLocks()
	release, err := locks.acquire(context.Background(), "CSN")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.acquire(ctx, "CSN"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled acquisition, got %v", err)
	}

	release()
	again, err := locks.acquire(context.Background(), "CSN")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
	if size := locks.size(); size != 0 {
		t.Fatalf("expected idle slot to be evicted, %d remain", size)
	}
}

func TestCourseLocksEvictIdleSlots(t *testing.T) {
	locks := newCourseLocks()
	courses := []string{"CS1", "CS2", "CS3"}
	var wg sync.WaitGroup
	for _, courseID := range courses {
		for range 8 {
			wg.Add(1)
			go func(courseID string) {
				defer wg.Done()
				release, err := locks.acquire(context.Background(), courseID)
				if err != nil {
					t.Errorf("acquire %s: %v", courseID, err)
					return
				}
				release()
			}(courseID)
		}
	}
	wg.Wait()
	if size := locks.size(); size != 0 {
		t.Fatalf("expected every slot to be evicted, %d remain", size)
	}

	held, err := locks.acquire(context.Background(), "CS1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.acquire(ctx, "CS1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled acquisition, got %v", err)
	}
	if size := locks.size(); size != 1 {
		t.Fatalf("expected the held slot to remain, got %d", size)
	}
	held()
	if size := locks.size(); size != 0 {
		t.Fatalf("expected slot eviction after release, %d remain", size)
	}
}
