package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-courseflow/internal/domain"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CourseStateRecord is the bun model for a course approval state.
type CourseStateRecord struct {
	bun.BaseModel `bun:"table:course_approval_states,alias:cas"`

	ID         uuid.UUID                        `bun:",pk,type:uuid"`
	CourseID   string                           `bun:"course_id,notnull,unique"`
	Stage      string                           `bun:"stage,notnull"`
	FacultyID  string                           `bun:"faculty_id,notnull"`
	Content    ContentSource                    `bun:"content,type:jsonb"`
	History    []HistoryEntry                   `bun:"history,type:jsonb"`
	Artifacts  map[domain.ArtifactKind]Artifact `bun:"artifacts,type:jsonb"`
	EditCounts map[domain.Stage]int             `bun:"edit_counts,type:jsonb"`
	Attempts   map[domain.Stage]int             `bun:"attempts,type:jsonb"`
	Draft      Draft                            `bun:"draft,type:jsonb"`
	Version    int                              `bun:"version,notnull,default:1"`
	CreatedAt  time.Time                        `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt  time.Time                        `bun:"updated_at,nullzero,default:current_timestamp"`
}

// NewCourseStateRepository returns the generic repository for state records.
func NewCourseStateRepository(db *bun.DB) repository.Repository[*CourseStateRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CourseStateRecord]{
		NewRecord: func() *CourseStateRecord { return &CourseStateRecord{} },
		GetID: func(r *CourseStateRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *CourseStateRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "course_id"
		},
		GetIdentifierValue: func(r *CourseStateRecord) string {
			return r.CourseID
		},
	})
}

// BunStateRepository persists course states with bun. Updates are guarded by
// the version column so concurrent writers from other processes are detected.
type BunStateRepository struct {
	db   *bun.DB
	repo repository.Repository[*CourseStateRecord]
}

// NewBunStateRepository constructs a bun backed state repository.
func NewBunStateRepository(db *bun.DB) *BunStateRepository {
	return &BunStateRepository{
		db:   db,
		repo: NewCourseStateRepository(db),
	}
}

// EnsureSchema creates the state table when missing.
func (r *BunStateRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*CourseStateRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create course state table: %w", err)
	}
	return nil
}

func (r *BunStateRepository) Create(ctx context.Context, state *CourseApprovalState) (*CourseApprovalState, error) {
	if state == nil || strings.TrimSpace(state.CourseID) == "" {
		return nil, ErrCourseIDRequired
	}
	if existing, err := r.lookup(ctx, state.CourseID); err == nil {
		return nil, &DuplicateWorkflowError{CourseID: existing.CourseID, Stage: domain.Stage(existing.Stage), FacultyID: existing.FacultyID}
	} else if !isNotFound(err) {
		return nil, err
	}

	record := recordFromState(state)
	record.ID = uuid.New()
	record.Version = 1
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		// unique(course_id) lost a race with another writer
		if existing, lookupErr := r.lookup(ctx, state.CourseID); lookupErr == nil {
			return nil, &DuplicateWorkflowError{CourseID: existing.CourseID, Stage: domain.Stage(existing.Stage), FacultyID: existing.FacultyID}
		}
		return nil, fmt.Errorf("course state repository error: %w", err)
	}
	return stateFromRecord(created), nil
}

func (r *BunStateRepository) Get(ctx context.Context, courseID string) (*CourseApprovalState, error) {
	record, err := r.lookup(ctx, courseID)
	if err != nil {
		return nil, mapRepositoryError(err, courseID)
	}
	return stateFromRecord(record), nil
}

func (r *BunStateRepository) Update(ctx context.Context, state *CourseApprovalState) (*CourseApprovalState, error) {
	if state == nil || strings.TrimSpace(state.CourseID) == "" {
		return nil, ErrCourseIDRequired
	}
	existing, err := r.lookup(ctx, state.CourseID)
	if err != nil {
		return nil, mapRepositoryError(err, state.CourseID)
	}

	record := recordFromState(state)
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.Version = state.Version + 1

	result, err := r.db.NewUpdate().
		Model(record).
		Column("stage", "content", "history", "artifacts", "edit_counts", "attempts", "draft", "version", "updated_at").
		WherePK().
		Where("version = ?", state.Version).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("course state repository error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("course state repository error: %w", err)
	}
	if affected == 0 {
		return nil, &ConcurrentUpdateError{CourseID: state.CourseID, Expected: state.Version}
	}
	return stateFromRecord(record), nil
}

func (r *BunStateRepository) List(ctx context.Context) ([]*CourseApprovalState, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.course_id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("course state repository error: %w", err)
	}
	out := make([]*CourseApprovalState, 0, len(records))
	for _, record := range records {
		out = append(out, stateFromRecord(record))
	}
	return out, nil
}

func (r *BunStateRepository) lookup(ctx context.Context, courseID string) (*CourseStateRecord, error) {
	return r.repo.GetByIdentifier(ctx, strings.TrimSpace(courseID))
}

func isNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}

func mapRepositoryError(err error, courseID string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &NotFoundError{CourseID: strings.TrimSpace(courseID)}
	}
	return fmt.Errorf("course state repository error: %w", err)
}

func recordFromState(state *CourseApprovalState) *CourseStateRecord {
	cloned := cloneState(state)
	return &CourseStateRecord{
		CourseID:   strings.TrimSpace(cloned.CourseID),
		Stage:      string(cloned.Stage),
		FacultyID:  cloned.FacultyID,
		Content:    cloned.Content,
		History:    cloned.History,
		Artifacts:  cloned.Artifacts,
		EditCounts: cloned.EditCounts,
		Attempts:   cloned.Attempts,
		Draft:      cloned.Draft,
		Version:    cloned.Version,
		CreatedAt:  cloned.CreatedAt,
		UpdatedAt:  cloned.UpdatedAt,
	}
}

func stateFromRecord(record *CourseStateRecord) *CourseApprovalState {
	if record == nil {
		return nil
	}
	return cloneState(&CourseApprovalState{
		CourseID:   record.CourseID,
		Stage:      domain.Stage(record.Stage),
		FacultyID:  record.FacultyID,
		Content:    record.Content,
		History:    record.History,
		Artifacts:  record.Artifacts,
		EditCounts: record.EditCounts,
		Attempts:   record.Attempts,
		Draft:      record.Draft,
		Version:    record.Version,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	})
}
