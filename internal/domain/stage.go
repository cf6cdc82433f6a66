package domain

import "strings"

// Stage represents a position in the faculty approval lifecycle of a course.
type Stage string

const (
	StageContentProcessing             Stage = "CONTENT_PROCESSING"
	StageAwaitingLOApproval            Stage = "AWAITING_LO_APPROVAL"
	StageLOApproved                    Stage = "LO_APPROVED"
	StageAwaitingStructureConfirmation Stage = "AWAITING_STRUCTURE_CONFIRMATION"
	StageStructureConfirmed            Stage = "STRUCTURE_CONFIRMED"
	StageAwaitingKGFinalization        Stage = "AWAITING_KG_FINALIZATION"
	StageKGFinalized                   Stage = "KG_FINALIZED"
	StagePLTGeneration                 Stage = "PLT_GENERATION"
	StageCompleted                     Stage = "COMPLETED"
)

var stageOrder = []Stage{
	StageContentProcessing,
	StageAwaitingLOApproval,
	StageLOApproved,
	StageAwaitingStructureConfirmation,
	StageStructureConfirmed,
	StageAwaitingKGFinalization,
	StageKGFinalized,
	StagePLTGeneration,
	StageCompleted,
}

// Stages returns the ordered stage sequence.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Rank returns the zero-based position of the stage in the lifecycle, or -1
// when the stage is unknown.
func (s Stage) Rank() int {
	for idx, candidate := range stageOrder {
		if candidate == s {
			return idx
		}
	}
	return -1
}

// Valid reports whether the stage is part of the lifecycle.
func (s Stage) Valid() bool {
	return s.Rank() >= 0
}

// Awaiting reports whether the stage is a faculty checkpoint.
func (s Stage) Awaiting() bool {
	switch s {
	case StageAwaitingLOApproval, StageAwaitingStructureConfirmation, StageAwaitingKGFinalization:
		return true
	default:
		return false
	}
}

// AtLeast reports whether s is the same as or later than other.
func (s Stage) AtLeast(other Stage) bool {
	rank := s.Rank()
	return rank >= 0 && rank >= other.Rank()
}

// Terminal reports whether no further transitions can occur.
func (s Stage) Terminal() bool {
	return s == StageCompleted
}

func (s Stage) String() string {
	return string(s)
}

// NormalizeStage coerces user supplied stage names ("awaiting-lo-approval",
// "awaiting_lo_approval") into the canonical representation.
func NormalizeStage(input string) Stage {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "-", "_")
	trimmed = strings.ReplaceAll(trimmed, " ", "_")
	return Stage(strings.ToUpper(trimmed))
}
