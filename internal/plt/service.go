package plt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-courseflow/internal/identity"
	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"golang.org/x/sync/singleflight"
)

var (
	ErrGeneratorRequired  = errors.New("plt: generator required")
	ErrRepositoryRequired = errors.New("plt: repository required")
	ErrCourseIDRequired   = errors.New("plt: course id required")
	ErrLearnerIDRequired  = errors.New("plt: learner id required")
	ErrEmptyTree          = errors.New("plt: generator returned no tree")
)

// Option configures the learning tree service.
type Option func(*Service)

// WithReuseExisting returns stored trees for repeated requests carrying the
// same learner context instead of regenerating them.
func WithReuseExisting(enabled bool) Option {
	return func(s *Service) {
		s.reuse = enabled
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		s.logger = logging.Ensure(logger)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service generates and stores personalized learning trees. Concurrent
// requests for the same course, learner and context share one generation.
type Service struct {
	generator interfaces.PLTGenerator
	repo      Repository
	group     singleflight.Group
	reuse     bool
	logger    interfaces.Logger
	now       func() time.Time
}

// NewService constructs a learning tree service.
func NewService(generator interfaces.PLTGenerator, repo Repository, opts ...Option) (*Service, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		generator: generator,
		repo:      repo,
		reuse:     true,
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Generate returns the learning tree for learnerID on the finalized course.
func (s *Service) Generate(ctx context.Context, course interfaces.FinalizedCourse, learnerID string, learner interfaces.LearnerContext) (*interfaces.LearningTree, error) {
	courseID := strings.TrimSpace(course.CourseID)
	learnerID = strings.TrimSpace(learnerID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	if learnerID == "" {
		return nil, ErrLearnerIDRequired
	}

	fingerprint, err := Fingerprint(learner)
	if err != nil {
		return nil, err
	}
	key := courseID + "|" + learnerID + "|" + fingerprint

	ch := s.group.DoChan(key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), course, learnerID, fingerprint, learner)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneTree(res.Val.(*interfaces.LearningTree)), nil
	}
}

func (s *Service) generate(ctx context.Context, course interfaces.FinalizedCourse, learnerID, fingerprint string, learner interfaces.LearnerContext) (*interfaces.LearningTree, error) {
	logger := logging.WithLearnerContext(s.logger, course.CourseID, learnerID).WithContext(ctx)

	if s.reuse {
		existing, err := s.repo.Find(ctx, course.CourseID, learnerID, fingerprint)
		switch {
		case err == nil:
			logger.Debug("learning tree reused", "tree_id", existing.ID)
			return existing, nil
		case !errors.Is(err, ErrTreeNotFound):
			return nil, err
		}
	}

	tree, err := s.generator.GenerateTree(ctx, interfaces.PLTRequest{
		CourseID:  course.CourseID,
		LearnerID: learnerID,
		Context:   learner,
		Course:    course,
	})
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrEmptyTree
	}

	stored := cloneTree(tree)
	stored.ID = identity.LearningTreeUUID(course.CourseID, learnerID, fingerprint).String()
	stored.CourseID = course.CourseID
	stored.LearnerID = learnerID
	stored.Fingerprint = fingerprint
	stored.GeneratedAt = s.now().UTC()

	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("plt: save learning tree: %w", err)
	}
	logger.Info("learning tree generated", "tree_id", stored.ID, "nodes", len(stored.Nodes))
	return stored, nil
}

// History lists the stored trees for a learner on a course, oldest first.
func (s *Service) History(ctx context.Context, courseID, learnerID string) ([]*interfaces.LearningTree, error) {
	courseID = strings.TrimSpace(courseID)
	learnerID = strings.TrimSpace(learnerID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	if learnerID == "" {
		return nil, ErrLearnerIDRequired
	}
	return s.repo.ListByLearner(ctx, courseID, learnerID)
}

// Fingerprint returns a stable digest of the learner context. List order and
// letter case of the level do not affect the result.
func Fingerprint(learner interfaces.LearnerContext) (string, error) {
	normalized := interfaces.LearnerContext{
		Level:               strings.ToLower(strings.TrimSpace(learner.Level)),
		Goals:               sortedUnique(learner.Goals),
		CompletedComponents: sortedUnique(learner.CompletedComponents),
		PreferredMethods:    sortedUnique(learner.PreferredMethods),
		Attributes:          learner.Attributes,
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("plt: fingerprint learner context: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
