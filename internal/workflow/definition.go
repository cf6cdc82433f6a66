package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-courseflow/internal/domain"
)

var (
	// ErrDefinitionNameRequired indicates the workflow definition lacks a name.
	ErrDefinitionNameRequired = errors.New("workflow: definition name required")
	// ErrDefinitionStatesRequired indicates the workflow definition does not declare any states.
	ErrDefinitionStatesRequired = errors.New("workflow: definition requires at least one state")
	// ErrStateNameRequired indicates a workflow state is missing its stage.
	ErrStateNameRequired = errors.New("workflow: state name required")
	// ErrDuplicateState indicates duplicate workflow stages were declared.
	ErrDuplicateState = errors.New("workflow: duplicate state")
	// ErrTransitionNameRequired indicates a transition lacks a name.
	ErrTransitionNameRequired = errors.New("workflow: transition name required")
	// ErrTransitionStateUnknown indicates a transition references a state that was not declared.
	ErrTransitionStateUnknown = errors.New("workflow: transition references unknown state")
	// ErrDuplicateTransition indicates the same transition name is declared multiple times for a state.
	ErrDuplicateTransition = errors.New("workflow: duplicate transition for state")
	// ErrTransitionRegresses indicates a transition targets a state declared before its source.
	ErrTransitionRegresses = errors.New("workflow: transition moves backwards")
	// ErrTransitionThroughInvalid indicates the intermediate state does not sit between source and target.
	ErrTransitionThroughInvalid = errors.New("workflow: invalid intermediate state")
	// ErrTransitionSkipsCheckpoint indicates a transition jumps over a faculty checkpoint.
	ErrTransitionSkipsCheckpoint = errors.New("workflow: transition skips checkpoint")
	// ErrInitialStateInvalid indicates the initial state is unknown.
	ErrInitialStateInvalid = errors.New("workflow: invalid initial state")
)

// Automatic transition names. Faculty transitions are named after domain.Action values.
const (
	TransitionContentGenerated = "content_generated"
	TransitionHandOff          = "hand_off"
	TransitionComplete         = "complete"
)

// StateDefinition describes a single stage of the lifecycle.
type StateDefinition struct {
	Stage       domain.Stage
	Description string
	Checkpoint  bool
	Terminal    bool
}

// Transition moves a course from one stage to another. Through names the
// automatic stage a course passes while generation runs, if any.
type Transition struct {
	Name        string
	Description string
	From        domain.Stage
	Through     domain.Stage
	To          domain.Stage
}

// Faculty reports whether the transition is triggered by a faculty action.
func (t Transition) Faculty() bool {
	return domain.NormalizeAction(t.Name).Valid()
}

// Action returns the faculty action for faculty transitions.
func (t Transition) Action() domain.Action {
	return domain.NormalizeAction(t.Name)
}

// Advances reports whether the transition leaves its source stage.
func (t Transition) Advances() bool {
	return t.From != t.To
}

// Definition declares the ordered states and transitions of a workflow.
type Definition struct {
	Name        string
	Initial     domain.Stage
	States      []StateDefinition
	Transitions []Transition
}

// ApprovalDefinition returns the faculty approval lifecycle: three sequential
// checkpoints, each accepting edit and reject without leaving the stage.
func ApprovalDefinition() Definition {
	return Definition{
		Name:    "faculty_approval",
		Initial: domain.StageContentProcessing,
		States: []StateDefinition{
			{Stage: domain.StageContentProcessing, Description: "Generating learning objectives from raw content"},
			{Stage: domain.StageAwaitingLOApproval, Description: "Learning objectives awaiting faculty approval", Checkpoint: true},
			{Stage: domain.StageLOApproved, Description: "Generating course structure"},
			{Stage: domain.StageAwaitingStructureConfirmation, Description: "Course structure awaiting faculty confirmation", Checkpoint: true},
			{Stage: domain.StageStructureConfirmed, Description: "Generating knowledge graph"},
			{Stage: domain.StageAwaitingKGFinalization, Description: "Knowledge graph awaiting faculty finalization", Checkpoint: true},
			{Stage: domain.StageKGFinalized, Description: "Course structure locked; learning trees available"},
			{Stage: domain.StagePLTGeneration, Description: "Handed off for learning tree generation"},
			{Stage: domain.StageCompleted, Description: "Workflow complete", Terminal: true},
		},
		Transitions: []Transition{
			{Name: TransitionContentGenerated, From: domain.StageContentProcessing, To: domain.StageAwaitingLOApproval},

			{Name: string(domain.ActionApprove), From: domain.StageAwaitingLOApproval, Through: domain.StageLOApproved, To: domain.StageAwaitingStructureConfirmation},
			{Name: string(domain.ActionEdit), From: domain.StageAwaitingLOApproval, To: domain.StageAwaitingLOApproval},
			{Name: string(domain.ActionReject), From: domain.StageAwaitingLOApproval, To: domain.StageAwaitingLOApproval},

			{Name: string(domain.ActionConfirm), From: domain.StageAwaitingStructureConfirmation, Through: domain.StageStructureConfirmed, To: domain.StageAwaitingKGFinalization},
			{Name: string(domain.ActionEdit), From: domain.StageAwaitingStructureConfirmation, To: domain.StageAwaitingStructureConfirmation},
			{Name: string(domain.ActionReject), From: domain.StageAwaitingStructureConfirmation, To: domain.StageAwaitingStructureConfirmation},

			{Name: string(domain.ActionFinalize), From: domain.StageAwaitingKGFinalization, To: domain.StageKGFinalized},
			{Name: string(domain.ActionEdit), From: domain.StageAwaitingKGFinalization, To: domain.StageAwaitingKGFinalization},
			{Name: string(domain.ActionReject), From: domain.StageAwaitingKGFinalization, To: domain.StageAwaitingKGFinalization},

			{Name: TransitionHandOff, From: domain.StageKGFinalized, To: domain.StagePLTGeneration},
			{Name: TransitionComplete, From: domain.StagePLTGeneration, To: domain.StageCompleted},
		},
	}
}

// Validate checks state and transition integrity. Transitions must move
// forward through the declared order and may not jump over a checkpoint.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrDefinitionNameRequired
	}
	if len(d.States) == 0 {
		return fmt.Errorf("%w: %s", ErrDefinitionStatesRequired, d.Name)
	}

	order, err := indexStates(d.States)
	if err != nil {
		return err
	}
	if _, ok := order[d.Initial]; !ok {
		return fmt.Errorf("%w: %s", ErrInitialStateInvalid, d.Initial)
	}

	seen := make(map[string]struct{}, len(d.Transitions))
	for idx, transition := range d.Transitions {
		name := strings.TrimSpace(transition.Name)
		if name == "" {
			return fmt.Errorf("%w at index %d", ErrTransitionNameRequired, idx)
		}

		from, ok := order[transition.From]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.From)
		}
		to, ok := order[transition.To]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.To)
		}
		if to < from {
			return fmt.Errorf("%w: %s %s -> %s", ErrTransitionRegresses, name, transition.From, transition.To)
		}

		if transition.Through != "" {
			through, ok := order[transition.Through]
			if !ok {
				return fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.Through)
			}
			if through <= from || through >= to || d.States[through].Checkpoint {
				return fmt.Errorf("%w: %s via %s", ErrTransitionThroughInvalid, name, transition.Through)
			}
		}

		for step := from + 1; step < to; step++ {
			if d.States[step].Checkpoint {
				return fmt.Errorf("%w: %s skips %s", ErrTransitionSkipsCheckpoint, name, d.States[step].Stage)
			}
		}

		key := transitionKey(name, transition.From)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s from %s", ErrDuplicateTransition, name, transition.From)
		}
		seen[key] = struct{}{}
	}

	return nil
}

func indexStates(states []StateDefinition) (map[domain.Stage]int, error) {
	order := make(map[domain.Stage]int, len(states))
	for idx, state := range states {
		if strings.TrimSpace(string(state.Stage)) == "" {
			return nil, fmt.Errorf("%w at index %d", ErrStateNameRequired, idx)
		}
		if _, exists := order[state.Stage]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateState, state.Stage)
		}
		order[state.Stage] = idx
	}
	return order, nil
}

func transitionKey(name string, from domain.Stage) string {
	return strings.ToLower(strings.TrimSpace(name)) + "::" + string(from)
}
