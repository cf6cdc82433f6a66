package workflow

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-courseflow/internal/domain"
)

var (
	// ErrInvalidTransition indicates the requested transition is not allowed from the current stage.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrUnknownStage indicates the stage is not declared by the definition.
	ErrUnknownStage = errors.New("workflow: unknown stage")
)

// Engine resolves transitions against a validated definition. It holds no
// per-course state and is safe for concurrent use.
type Engine struct {
	definition  Definition
	states      map[domain.Stage]StateDefinition
	transitions map[string]Transition
	byStage     map[domain.Stage][]Transition
}

// New validates the definition and builds a transition engine.
func New(definition Definition) (*Engine, error) {
	if err := definition.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		definition:  definition,
		states:      make(map[domain.Stage]StateDefinition, len(definition.States)),
		transitions: make(map[string]Transition, len(definition.Transitions)),
		byStage:     make(map[domain.Stage][]Transition),
	}
	for _, state := range definition.States {
		engine.states[state.Stage] = state
	}
	for _, transition := range definition.Transitions {
		engine.transitions[transitionKey(transition.Name, transition.From)] = transition
		engine.byStage[transition.From] = append(engine.byStage[transition.From], transition)
	}
	return engine, nil
}

// NewApprovalEngine returns an engine for the faculty approval lifecycle.
func NewApprovalEngine() *Engine {
	engine, err := New(ApprovalDefinition())
	if err != nil {
		panic(fmt.Sprintf("workflow: approval definition invalid: %v", err))
	}
	return engine
}

// Definition returns the definition backing the engine.
func (e *Engine) Definition() Definition {
	return e.definition
}

// Initial returns the stage new workflows start in.
func (e *Engine) Initial() domain.Stage {
	return e.definition.Initial
}

// Resolve returns the transition named by name from stage.
func (e *Engine) Resolve(stage domain.Stage, name string) (Transition, error) {
	if _, ok := e.states[stage]; !ok {
		return Transition{}, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	transition, ok := e.transitions[transitionKey(name, stage)]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, stage)
	}
	return transition, nil
}

// ResolveAction is Resolve restricted to faculty actions.
func (e *Engine) ResolveAction(stage domain.Stage, action domain.Action) (Transition, error) {
	if !action.Valid() {
		return Transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, stage)
	}
	return e.Resolve(stage, string(action))
}

// AvailableActions returns the faculty actions accepted in stage, in
// declaration order.
func (e *Engine) AvailableActions(stage domain.Stage) []domain.Action {
	transitions := e.byStage[stage]
	if len(transitions) == 0 {
		return nil
	}
	actions := make([]domain.Action, 0, len(transitions))
	for _, transition := range transitions {
		if transition.Faculty() {
			actions = append(actions, transition.Action())
		}
	}
	if len(actions) == 0 {
		return nil
	}
	return actions
}

