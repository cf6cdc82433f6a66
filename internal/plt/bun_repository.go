package plt

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-courseflow/internal/identity"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LearningTreeRecord is the bun model for a stored learning tree.
type LearningTreeRecord struct {
	bun.BaseModel `bun:"table:learning_trees,alias:lt"`

	ID          uuid.UUID               `bun:",pk,type:uuid"`
	CourseID    string                  `bun:"course_id,notnull"`
	LearnerID   string                  `bun:"learner_id,notnull"`
	Fingerprint string                  `bun:"fingerprint,notnull"`
	Tree        interfaces.LearningTree `bun:"tree,type:jsonb"`
	GeneratedAt time.Time               `bun:"generated_at,nullzero,default:current_timestamp"`
}

// NewLearningTreeRepository returns the generic repository for tree records.
func NewLearningTreeRepository(db *bun.DB) repository.Repository[*LearningTreeRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*LearningTreeRecord]{
		NewRecord: func() *LearningTreeRecord { return &LearningTreeRecord{} },
		GetID: func(r *LearningTreeRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *LearningTreeRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *LearningTreeRecord) string {
			return r.ID.String()
		},
	})
}

// BunRepository persists learning trees with bun. Trees are addressed by a
// deterministic id so reads go through the optional cache.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*LearningTreeRecord]
}

// NewBunRepository constructs an uncached repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a repository whose reads are served by
// go-repository-cache when a cache service is supplied.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewLearningTreeRepository(db)
	return &BunRepository{
		db:   db,
		repo: wrapWithCache(base, cacheService, keySerializer),
	}
}

// EnsureSchema creates the learning tree table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*LearningTreeRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create learning tree table: %w", err)
	}
	return nil
}

func (r *BunRepository) Find(ctx context.Context, courseID, learnerID, fingerprint string) (*interfaces.LearningTree, error) {
	id := identity.LearningTreeUUID(courseID, learnerID, fingerprint)
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &TreeNotFoundError{CourseID: courseID, LearnerID: learnerID, Fingerprint: fingerprint}
		}
		return nil, fmt.Errorf("learning tree repository error: %w", err)
	}
	tree := record.Tree
	return cloneTree(&tree), nil
}

func (r *BunRepository) Save(ctx context.Context, tree *interfaces.LearningTree) error {
	if tree == nil {
		return fmt.Errorf("plt: tree required")
	}
	id, err := uuid.Parse(tree.ID)
	if err != nil {
		return fmt.Errorf("plt: tree id: %w", err)
	}
	record := &LearningTreeRecord{
		ID:          id,
		CourseID:    tree.CourseID,
		LearnerID:   tree.LearnerID,
		Fingerprint: tree.Fingerprint,
		Tree:        *cloneTree(tree),
		GeneratedAt: tree.GeneratedAt,
	}

	if _, err := r.repo.GetByID(ctx, id.String()); err == nil {
		_, err = r.repo.Update(ctx, record,
			repository.UpdateByID(id.String()),
			repository.UpdateColumns("tree", "generated_at"),
		)
		if err != nil {
			return fmt.Errorf("learning tree repository error: %w", err)
		}
		return nil
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("learning tree repository error: %w", err)
	}

	if _, err := r.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("learning tree repository error: %w", err)
	}
	return nil
}

func (r *BunRepository) ListByLearner(ctx context.Context, courseID, learnerID string) ([]*interfaces.LearningTree, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.course_id = ?", courseID).
				Where("?TableAlias.learner_id = ?", learnerID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.generated_at ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("learning tree repository error: %w", err)
	}
	out := make([]*interfaces.LearningTree, 0, len(records))
	for _, record := range records {
		tree := record.Tree
		out = append(out, cloneTree(&tree))
	}
	return out, nil
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
