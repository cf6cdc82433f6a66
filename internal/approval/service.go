package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/internal/workflow"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/google/uuid"
)

// DefaultMaxEditsPerStage bounds edit iterations when no limit is configured.
const DefaultMaxEditsPerStage = 5

var ErrTreeServiceRequired = errors.New("approval: learning tree service not configured")

// IDGenerator produces history entry identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures the coordinator.
type ServiceOption func(*service)

// WithLogger overrides the coordinator logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for history timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides history entry id generation.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithGraphStore persists finalized graphs before finalization commits.
func WithGraphStore(store interfaces.GraphStore) ServiceOption {
	return func(s *service) {
		s.graphStore = store
	}
}

// WithTreeService wires the learning tree service used by RequestPLT.
func WithTreeService(trees TreeService) ServiceOption {
	return func(s *service) {
		if trees != nil {
			s.trees = trees
		}
	}
}

// WithMaxEditsPerStage bounds edit iterations per checkpoint.
func WithMaxEditsPerStage(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxEdits = limit
		}
	}
}

// WithGenerationTimeout bounds every collaborator call. Zero disables the bound.
func WithGenerationTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		if timeout >= 0 {
			s.timeout = timeout
		}
	}
}

// WithRecordRejectedAttempts appends a history entry for refused actions.
func WithRecordRejectedAttempts(enabled bool) ServiceOption {
	return func(s *service) {
		s.recordRejected = enabled
	}
}

// WithEngine overrides the workflow engine.
func WithEngine(engine *workflow.Engine) ServiceOption {
	return func(s *service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

type service struct {
	repo           StateRepository
	generator      interfaces.ContentGenerator
	graphStore     interfaces.GraphStore
	trees          TreeService
	engine         *workflow.Engine
	objectives     *objectivesHandler
	handlers       map[domain.Stage]StageHandler
	locks          *courseLocks
	logger         interfaces.Logger
	now            func() time.Time
	id             IDGenerator
	maxEdits       int
	timeout        time.Duration
	recordRejected bool
}

// NewService constructs the faculty approval coordinator.
func NewService(repo StateRepository, generator interfaces.ContentGenerator, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &service{
		repo:      repo,
		generator: generator,
		engine:    workflow.NewApprovalEngine(),
		locks:     newCourseLocks(),
		logger:    logging.NoOp(),
		now:       time.Now,
		id:        uuid.New,
		maxEdits:  DefaultMaxEditsPerStage,
		timeout:   2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.objectives = &objectivesHandler{generator: generator}
	s.handlers = map[domain.Stage]StageHandler{}
	for _, handler := range []StageHandler{
		s.objectives,
		&structureHandler{generator: generator},
		&graphHandler{generator: generator, store: s.graphStore},
	} {
		s.handlers[handler.Checkpoint()] = handler
	}
	return s, nil
}

func (s *service) StartWorkflow(ctx context.Context, req StartRequest) (*ActionResult, error) {
	courseID := strings.TrimSpace(req.CourseID)
	facultyID := strings.TrimSpace(req.FacultyID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	if facultyID == "" {
		return nil, ErrFacultyIDRequired
	}
	if strings.TrimSpace(req.RawContent) == "" {
		return nil, ErrRawContentRequired
	}

	release, err := s.locks.acquire(ctx, courseID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := logging.WithCourseContext(s.logger, courseID, s.engine.Initial(), domain.Action(HistoryActionStart)).WithContext(ctx)
	now := s.now()
	content := ContentSource{
		Title:  strings.TrimSpace(req.Title),
		Raw:    req.RawContent,
		Origin: strings.TrimSpace(req.Source),
	}

	state := &CourseApprovalState{
		CourseID:   courseID,
		Stage:      s.engine.Initial(),
		FacultyID:  facultyID,
		Content:    content,
		Artifacts:  map[domain.ArtifactKind]Artifact{},
		EditCounts: map[domain.Stage]int{},
		Attempts:   map[domain.Stage]int{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.appendHistory(state, HistoryEntry{
		StageAfter: state.Stage,
		Action:     HistoryActionStart,
		Actor:      facultyID,
		Outcome:    OutcomeAccepted,
	})

	stored, err := s.repo.Create(ctx, state)
	if err != nil {
		var duplicate *DuplicateWorkflowError
		if !errors.As(err, &duplicate) {
			return nil, err
		}
		existing, getErr := s.repo.Get(ctx, courseID)
		if getErr != nil {
			return nil, getErr
		}
		if existing.Stage != s.engine.Initial() || existing.FacultyID != facultyID {
			logger.Warn("approval workflow already exists", "existing_stage", existing.Stage)
			return nil, &DuplicateWorkflowError{CourseID: courseID, Stage: existing.Stage, FacultyID: existing.FacultyID}
		}
		logger.Info("retrying content processing")
		existing.Content = content
		stored = existing
	} else {
		logger.Info("approval workflow created", "faculty_id", facultyID)
	}

	return s.processContent(ctx, stored, facultyID)
}

func (s *service) processContent(ctx context.Context, state *CourseApprovalState, actor string) (*ActionResult, error) {
	transition, err := s.engine.Resolve(state.Stage, workflow.TransitionContentGenerated)
	if err != nil {
		return nil, err
	}

	working := cloneState(state)
	in := HandlerInput{State: working, Actor: actor, Now: s.now()}
	genCtx, cancel := s.generationContext(ctx)
	err = s.objectives.Generate(genCtx, in, working.Attempts[transition.From])
	cancel()
	if err != nil {
		return nil, s.recordFailure(ctx, state, HistoryActionContentGenerated, actor, "", err)
	}

	working.Stage = transition.To
	entry := s.appendHistory(working, HistoryEntry{
		StageBefore: transition.From,
		Action:      transition.Name,
		StageAfter:  transition.To,
		Actor:       actor,
		Outcome:     OutcomeAccepted,
	})
	saved, err := s.repo.Update(ctx, working)
	if err != nil {
		return nil, err
	}

	editable, err := s.objectives.Editable(saved)
	if err != nil {
		return nil, err
	}
	logging.WithCourseContext(s.logger, saved.CourseID, saved.Stage, "").WithContext(ctx).
		Info("learning objectives generated", "objectives", len(saved.Draft.Objectives))
	return &ActionResult{
		CourseID:  saved.CourseID,
		Action:    HistoryActionStart,
		StageFrom: transition.From,
		Stage:     saved.Stage,
		Editable:  editable,
		EditsLeft: s.editsLeft(saved),
		History:   entry,
	}, nil
}

// editsLeft reports the remaining edits at the current stage, zero when the
// stage is not a checkpoint.
func (s *service) editsLeft(state *CourseApprovalState) int {
	if _, ok := s.handlers[state.Stage]; !ok {
		return 0
	}
	return max(s.maxEdits-state.EditCounts[state.Stage], 0)
}

func (s *service) SubmitFacultyAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	courseID := strings.TrimSpace(req.CourseID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	action := domain.NormalizeAction(string(req.Action))

	release, err := s.locks.acquire(ctx, courseID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, withAction(err, string(action))
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = state.FacultyID
	}

	transition, err := s.engine.ResolveAction(state.Stage, action)
	if err != nil {
		return nil, s.refuse(ctx, state, string(action), actor, req.Comment, &InvalidTransitionError{
			CourseID: courseID,
			Stage:    state.Stage,
			Action:   string(action),
		})
	}
	handler, ok := s.handlers[state.Stage]
	if !ok {
		return nil, fmt.Errorf("approval: no stage handler for %s", state.Stage)
	}

	switch action {
	case domain.ActionEdit:
		return s.edit(ctx, state, handler, transition, actor, req)
	case domain.ActionReject:
		return s.reject(ctx, state, handler, transition, actor, req)
	default:
		return s.advance(ctx, state, handler, transition, actor, req)
	}
}

func (s *service) edit(ctx context.Context, state *CourseApprovalState, handler StageHandler, transition workflow.Transition, actor string, req ActionRequest) (*ActionResult, error) {
	stage := state.Stage
	count := state.EditCounts[stage]
	if count >= s.maxEdits {
		return nil, s.refuse(ctx, state, string(domain.ActionEdit), actor, req.Comment, &EditLimitExceededError{
			CourseID: state.CourseID,
			Stage:    stage,
			Limit:    s.maxEdits,
		})
	}

	working := cloneState(state)
	if working.EditCounts == nil {
		working.EditCounts = map[domain.Stage]int{}
	}
	in := HandlerInput{State: working, Actor: actor, Comment: req.Comment, Now: s.now()}
	if len(req.Payload) > 0 {
		if err := handler.Revise(in, req.Payload); err != nil {
			return nil, &InvalidDraftError{
				CourseID: state.CourseID,
				Stage:    stage,
				Issues:   validation.Issues(err),
				Cause:    err,
			}
		}
	}
	working.EditCounts[stage] = count + 1

	entry := s.appendHistory(working, HistoryEntry{
		StageBefore: transition.From,
		Action:      transition.Name,
		StageAfter:  transition.To,
		Actor:       actor,
		Comment:     req.Comment,
		Outcome:     OutcomeAccepted,
	})
	saved, err := s.repo.Update(ctx, working)
	if err != nil {
		return nil, err
	}
	editable, err := handler.Editable(saved)
	if err != nil {
		return nil, err
	}

	logging.WithCourseContext(s.logger, saved.CourseID, stage, domain.ActionEdit).WithContext(ctx).
		Info("faculty edit recorded", "edit_count", count+1, "revised", len(req.Payload) > 0)
	return &ActionResult{
		CourseID:  saved.CourseID,
		Action:    transition.Name,
		StageFrom: transition.From,
		Stage:     saved.Stage,
		Editable:  editable,
		EditCount: count + 1,
		EditsLeft: s.editsLeft(saved),
		History:   entry,
	}, nil
}

func (s *service) reject(ctx context.Context, state *CourseApprovalState, handler StageHandler, transition workflow.Transition, actor string, req ActionRequest) (*ActionResult, error) {
	working := cloneState(state)
	if working.Attempts == nil {
		working.Attempts = map[domain.Stage]int{}
	}
	in := HandlerInput{State: working, Actor: actor, Comment: req.Comment, Now: s.now()}
	genCtx, cancel := s.generationContext(ctx)
	err := handler.Regenerate(genCtx, in)
	cancel()
	if err != nil {
		return nil, s.recordFailure(ctx, state, transition.Name, actor, req.Comment, err)
	}

	entry := s.appendHistory(working, HistoryEntry{
		StageBefore: transition.From,
		Action:      transition.Name,
		StageAfter:  transition.To,
		Actor:       actor,
		Comment:     req.Comment,
		Outcome:     OutcomeAccepted,
	})
	saved, err := s.repo.Update(ctx, working)
	if err != nil {
		return nil, err
	}
	editable, err := handler.Editable(saved)
	if err != nil {
		return nil, err
	}

	logging.WithCourseContext(s.logger, saved.CourseID, saved.Stage, domain.ActionReject).WithContext(ctx).
		Info("draft regenerated", "attempt", saved.Attempts[saved.Stage])
	return &ActionResult{
		CourseID:  saved.CourseID,
		Action:    transition.Name,
		StageFrom: transition.From,
		Stage:     saved.Stage,
		Editable:  editable,
		EditCount: saved.EditCounts[saved.Stage],
		EditsLeft: s.editsLeft(saved),
		History:   entry,
	}, nil
}

func (s *service) advance(ctx context.Context, state *CourseApprovalState, handler StageHandler, transition workflow.Transition, actor string, req ActionRequest) (*ActionResult, error) {
	working := cloneState(state)
	if working.Artifacts == nil {
		working.Artifacts = map[domain.ArtifactKind]Artifact{}
	}
	in := HandlerInput{State: working, Actor: actor, Comment: req.Comment, Now: s.now()}
	genCtx, cancel := s.generationContext(ctx)
	artifact, err := handler.Advance(genCtx, in)
	cancel()
	if err != nil {
		return nil, s.recordFailure(ctx, state, transition.Name, actor, req.Comment, err)
	}
	if _, exists := working.Artifacts[artifact.Kind]; exists {
		return nil, fmt.Errorf("approval: artifact %s already recorded for %s", artifact.Kind, state.CourseID)
	}

	working.Artifacts[artifact.Kind] = artifact
	working.Stage = transition.To
	entry := s.appendHistory(working, HistoryEntry{
		StageBefore: transition.From,
		Action:      transition.Name,
		Via:         transition.Through,
		StageAfter:  transition.To,
		Actor:       actor,
		Comment:     req.Comment,
		Outcome:     OutcomeAccepted,
	})
	saved, err := s.repo.Update(ctx, working)
	if err != nil {
		return nil, s.abandonAdvance(ctx, state, handler, transition, err)
	}

	result := &ActionResult{
		CourseID:  saved.CourseID,
		Action:    transition.Name,
		StageFrom: transition.From,
		Stage:     saved.Stage,
		Artifact:  &ArtifactRef{Kind: artifact.Kind, ID: artifact.ID, CreatedAt: artifact.CreatedAt},
		EditsLeft: s.editsLeft(saved),
		History:   entry,
	}
	if next, ok := s.handlers[saved.Stage]; ok {
		editable, err := next.Editable(saved)
		if err != nil {
			return nil, err
		}
		result.Editable = editable
	}

	logging.WithCourseContext(s.logger, saved.CourseID, saved.Stage, transition.Action()).WithContext(ctx).
		Info("checkpoint passed", "artifact", artifact.Kind, "stage_before", transition.From)
	return result, nil
}

func (s *service) CompleteWorkflow(ctx context.Context, req CompleteRequest) (*ActionResult, error) {
	courseID := strings.TrimSpace(req.CourseID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}

	release, err := s.locks.acquire(ctx, courseID)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, withAction(err, HistoryActionComplete)
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = state.FacultyID
	}

	handOff, err := s.engine.Resolve(state.Stage, workflow.TransitionHandOff)
	if err != nil {
		return nil, s.refuse(ctx, state, HistoryActionComplete, actor, "", &InvalidTransitionError{
			CourseID: courseID,
			Stage:    state.Stage,
			Action:   HistoryActionComplete,
		})
	}
	complete, err := s.engine.Resolve(handOff.To, workflow.TransitionComplete)
	if err != nil {
		return nil, err
	}

	working := cloneState(state)
	working.Stage = handOff.To
	s.appendHistory(working, HistoryEntry{
		StageBefore: handOff.From,
		Action:      handOff.Name,
		StageAfter:  handOff.To,
		Actor:       actor,
		Outcome:     OutcomeAccepted,
	})
	working.Stage = complete.To
	entry := s.appendHistory(working, HistoryEntry{
		StageBefore: complete.From,
		Action:      complete.Name,
		StageAfter:  complete.To,
		Actor:       actor,
		Outcome:     OutcomeAccepted,
	})
	saved, err := s.repo.Update(ctx, working)
	if err != nil {
		return nil, err
	}

	logging.WithCourseContext(s.logger, saved.CourseID, saved.Stage, "").WithContext(ctx).Info("approval workflow completed")
	return &ActionResult{
		CourseID:  saved.CourseID,
		Action:    HistoryActionComplete,
		StageFrom: handOff.From,
		Stage:     saved.Stage,
		History:   entry,
	}, nil
}

func (s *service) RequestPLT(ctx context.Context, req PLTRequest) (*interfaces.LearningTree, error) {
	courseID := strings.TrimSpace(req.CourseID)
	learnerID := strings.TrimSpace(req.LearnerID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	if learnerID == "" {
		return nil, ErrLearnerIDRequired
	}

	state, course, err := s.loadFinalized(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if s.trees == nil {
		return nil, ErrTreeServiceRequired
	}

	logger := logging.WithLearnerContext(logging.WithCourseContext(s.logger, courseID, state.Stage, ""), courseID, learnerID).WithContext(ctx)
	genCtx, cancel := s.generationContext(ctx)
	defer cancel()
	tree, err := s.trees.Generate(genCtx, *course, learnerID, req.Context)
	if err != nil {
		logger.Error("learning tree generation failed", "error", err)
		return nil, &GenerationFailureError{
			CourseID:     courseID,
			Stage:        state.Stage,
			Action:       "request_plt",
			Collaborator: CollaboratorPLTGenerator,
			Cause:        err,
		}
	}
	logger.Info("learning tree ready", "tree_id", tree.ID)
	return tree, nil
}

func (s *service) FinalizedCourse(ctx context.Context, courseID string) (*interfaces.FinalizedCourse, error) {
	_, course, err := s.loadFinalized(ctx, strings.TrimSpace(courseID))
	return course, err
}

func (s *service) loadFinalized(ctx context.Context, courseID string) (*CourseApprovalState, *interfaces.FinalizedCourse, error) {
	state, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, nil, withAction(err, "request_plt")
	}
	artifact, ok := state.Artifacts[domain.ArtifactFFCS]
	if !state.Stage.AtLeast(domain.StageKGFinalized) || !ok {
		return nil, nil, &NotFinalizedError{CourseID: courseID, Stage: state.Stage}
	}
	var course interfaces.FinalizedCourse
	if err := validation.FromPayload(artifact.Payload, &course); err != nil {
		return nil, nil, fmt.Errorf("approval: decode %s artifact: %w", domain.ArtifactFFCS, err)
	}
	return state, &course, nil
}

func (s *service) GetStatus(ctx context.Context, courseID string) (*Status, error) {
	trimmed := strings.TrimSpace(courseID)
	if trimmed == "" {
		return nil, ErrCourseIDRequired
	}
	state, err := s.repo.Get(ctx, trimmed)
	if err != nil {
		return nil, withAction(err, "status")
	}
	return s.toStatus(state), nil
}

func (s *service) ListWorkflows(ctx context.Context) ([]*Status, error) {
	states, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Status, 0, len(states))
	for _, state := range states {
		out = append(out, s.toStatus(state))
	}
	return out, nil
}

func (s *service) toStatus(state *CourseApprovalState) *Status {
	status := &Status{
		CourseID:         state.CourseID,
		Stage:            state.Stage,
		FacultyID:        state.FacultyID,
		ArtifactsPresent: []domain.ArtifactKind{},
		AvailableActions: s.engine.AvailableActions(state.Stage),
		History:          append([]HistoryEntry(nil), state.History...),
		UpdatedAt:        state.UpdatedAt,
	}
	for _, kind := range domain.ArtifactKinds() {
		artifact, ok := state.Artifacts[kind]
		if !ok {
			continue
		}
		status.ArtifactsPresent = append(status.ArtifactsPresent, kind)
		status.Artifacts = append(status.Artifacts, ArtifactRef{Kind: kind, ID: artifact.ID, CreatedAt: artifact.CreatedAt})
	}
	if len(state.EditCounts) > 0 {
		status.EditCounts = make(map[domain.Stage]int, len(state.EditCounts))
		for stage, count := range state.EditCounts {
			status.EditCounts[stage] = count
		}
	}
	return status
}

func (s *service) appendHistory(state *CourseApprovalState, entry HistoryEntry) HistoryEntry {
	now := s.now()
	entry.ID = s.id()
	entry.Timestamp = now
	state.History = append(state.History, entry)
	state.UpdatedAt = now
	return entry
}

// recordFailure appends a failed generation entry to the stored state and
// returns the error for the caller. Only collaborator failures are recorded.
func (s *service) recordFailure(ctx context.Context, state *CourseApprovalState, action, actor, comment string, cause error) error {
	var genErr *generationError
	if !errors.As(cause, &genErr) {
		return cause
	}

	failure := &GenerationFailureError{
		CourseID:     state.CourseID,
		Stage:        state.Stage,
		Action:       action,
		Collaborator: genErr.collaborator,
		Cause:        genErr.err,
	}

	working := cloneState(state)
	if action == HistoryActionContentGenerated {
		if working.Attempts == nil {
			working.Attempts = map[domain.Stage]int{}
		}
		working.Attempts[state.Stage]++
	}
	s.appendHistory(working, HistoryEntry{
		StageBefore: state.Stage,
		Action:      action,
		StageAfter:  state.Stage,
		Actor:       actor,
		Comment:     comment,
		Outcome:     OutcomeGenerationFailed,
		Error:       genErr.err.Error(),
	})

	logger := logging.WithCourseContext(s.logger, state.CourseID, state.Stage, domain.Action(action)).WithContext(ctx)
	logger.Error("generation failed", "collaborator", genErr.collaborator, "error", genErr.err)
	if _, err := s.repo.Update(context.WithoutCancel(ctx), working); err != nil {
		logger.Error("failed to record generation failure", "error", err)
	}
	return failure
}

// abandonAdvance undoes side effects of a checkpoint whose state update
// failed, so no artifact outlives the transition it belongs to.
func (s *service) abandonAdvance(ctx context.Context, state *CourseApprovalState, handler StageHandler, transition workflow.Transition, cause error) error {
	logger := logging.WithCourseContext(s.logger, state.CourseID, state.Stage, transition.Action()).WithContext(ctx)
	if discarder, ok := handler.(artifactDiscarder); ok {
		if err := discarder.Discard(context.WithoutCancel(ctx), state); err != nil {
			logger.Error("failed to discard checkpoint output", "error", err)
		}
	}
	if errors.Is(cause, ErrConcurrentUpdate) {
		return cause
	}
	logger.Error("checkpoint state update failed", "error", cause)
	return &GenerationFailureError{
		CourseID:     state.CourseID,
		Stage:        state.Stage,
		Action:       transition.Name,
		Collaborator: CollaboratorStateStore,
		Cause:        cause,
	}
}

// refuse reports a refused action, optionally logging it in history.
func (s *service) refuse(ctx context.Context, state *CourseApprovalState, action, actor, comment string, cause error) error {
	logging.WithCourseContext(s.logger, state.CourseID, state.Stage, domain.Action(action)).WithContext(ctx).
		Warn("faculty action refused", "error", cause)
	if !s.recordRejected {
		return cause
	}
	working := cloneState(state)
	s.appendHistory(working, HistoryEntry{
		StageBefore: state.Stage,
		Action:      action,
		StageAfter:  state.Stage,
		Actor:       actor,
		Comment:     comment,
		Outcome:     OutcomeRejectedAttempt,
		Error:       cause.Error(),
	})
	if _, err := s.repo.Update(context.WithoutCancel(ctx), working); err != nil {
		s.logger.Error("failed to record rejected attempt", "course_id", state.CourseID, "error", err)
	}
	return cause
}

func (s *service) generationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func withAction(err error, action string) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) && notFound.Action == "" {
		return &NotFoundError{CourseID: notFound.CourseID, Action: action}
	}
	return err
}
