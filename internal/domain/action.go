package domain

import "strings"

// Action is a faculty decision submitted at a checkpoint.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionEdit     Action = "edit"
	ActionReject   Action = "reject"
	ActionConfirm  Action = "confirm"
	ActionFinalize Action = "finalize"
)

// Actions lists the faculty actions accepted by the coordinator.
func Actions() []Action {
	return []Action{ActionApprove, ActionEdit, ActionReject, ActionConfirm, ActionFinalize}
}

// NormalizeAction lower-cases and trims the supplied action name.
func NormalizeAction(input string) Action {
	return Action(strings.ToLower(strings.TrimSpace(input)))
}

// Valid reports whether the action is one of the known faculty actions.
func (a Action) Valid() bool {
	for _, candidate := range Actions() {
		if candidate == a {
			return true
		}
	}
	return false
}

// Advances reports whether the action moves a course past its checkpoint.
func (a Action) Advances() bool {
	switch a {
	case ActionApprove, ActionConfirm, ActionFinalize:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}
