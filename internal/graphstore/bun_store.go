package graphstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-courseflow/internal/identity"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GraphRecord is the bun model for a finalized course graph.
type GraphRecord struct {
	bun.BaseModel `bun:"table:knowledge_graphs,alias:kg"`

	ID          uuid.UUID      `bun:",pk,type:uuid"`
	CourseID    string         `bun:"course_id,notnull,unique"`
	FacultyID   string         `bun:"faculty_id,notnull"`
	Document    map[string]any `bun:"document,type:jsonb"`
	NodeCount   int            `bun:"node_count"`
	EdgeCount   int            `bun:"edge_count"`
	FinalizedAt time.Time      `bun:"finalized_at,nullzero"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp"`
}

// NewGraphRepository returns the generic repository for graph records.
func NewGraphRepository(db *bun.DB) repository.Repository[*GraphRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*GraphRecord]{
		NewRecord: func() *GraphRecord { return &GraphRecord{} },
		GetID: func(r *GraphRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *GraphRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "course_id"
		},
		GetIdentifierValue: func(r *GraphRecord) string {
			return r.CourseID
		},
	})
}

// BunStore persists finalized courses in a relational database.
type BunStore struct {
	db   *bun.DB
	repo repository.Repository[*GraphRecord]
	now  func() time.Time
}

var _ interfaces.GraphStore = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache serves graph reads from the repository cache when one
// is configured.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunStore {
	base := NewGraphRepository(db)
	repo := base
	if cacheService != nil && keySerializer != nil {
		repo = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunStore{db: db, repo: repo, now: time.Now}
}

// EnsureSchema creates the knowledge graph table when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*GraphRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create knowledge graph table: %w", err)
	}
	return nil
}

// SaveGraph writes the course, replacing any earlier document for it.
func (s *BunStore) SaveGraph(ctx context.Context, course interfaces.FinalizedCourse) error {
	courseID := strings.TrimSpace(course.CourseID)
	if courseID == "" {
		return ErrCourseIDRequired
	}
	document, err := encodeCourse(course)
	if err != nil {
		return err
	}
	record := &GraphRecord{
		ID:          identity.GraphUUID(courseID),
		CourseID:    courseID,
		FacultyID:   course.FacultyID,
		Document:    document,
		NodeCount:   len(course.Graph.Nodes),
		EdgeCount:   len(course.Graph.Edges),
		FinalizedAt: course.FinalizedAt,
		UpdatedAt:   s.now().UTC(),
	}

	_, err = s.repo.GetByIdentifier(ctx, courseID)
	switch {
	case err == nil:
		_, err = s.repo.Update(ctx, record,
			repository.UpdateByID(record.ID.String()),
			repository.UpdateColumns("faculty_id", "document", "node_count", "edge_count", "finalized_at", "updated_at"),
		)
	case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		_, err = s.repo.Create(ctx, record)
	}
	if err != nil {
		return fmt.Errorf("knowledge graph repository error: %w", err)
	}
	return nil
}

func (s *BunStore) LoadGraph(ctx context.Context, courseID string) (*interfaces.FinalizedCourse, error) {
	courseID = strings.TrimSpace(courseID)
	record, err := s.repo.GetByIdentifier(ctx, courseID)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &NotFoundError{CourseID: courseID}
		}
		return nil, fmt.Errorf("knowledge graph repository error: %w", err)
	}
	var course interfaces.FinalizedCourse
	if err := validation.FromPayload(record.Document, &course); err != nil {
		return nil, fmt.Errorf("graphstore: decode course: %w", err)
	}
	return &course, nil
}

// DeleteGraph removes the course document when one is stored.
func (s *BunStore) DeleteGraph(ctx context.Context, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return ErrCourseIDRequired
	}
	record, err := s.repo.GetByIdentifier(ctx, courseID)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil
		}
		return fmt.Errorf("knowledge graph repository error: %w", err)
	}
	if err := s.repo.Delete(ctx, record); err != nil {
		return fmt.Errorf("knowledge graph repository error: %w", err)
	}
	return nil
}
