package approvalcmd

import (
	"errors"

	"github.com/goliatone/go-courseflow/internal/approval"
	"github.com/goliatone/go-courseflow/internal/commands"
	goerrors "github.com/goliatone/go-errors"
)

type errorClass struct {
	target   error
	category goerrors.Category
	code     string
	message  string
}

var errorClasses = []errorClass{
	{approval.ErrNotFound, goerrors.CategoryNotFound, "COURSE_NOT_FOUND", "course workflow not found"},
	{approval.ErrDuplicateWorkflow, goerrors.CategoryConflict, "DUPLICATE_WORKFLOW", "course workflow already exists"},
	{approval.ErrConcurrentUpdate, goerrors.CategoryConflict, "CONCURRENT_UPDATE", "course workflow changed concurrently"},
	{approval.ErrNotFinalized, goerrors.CategoryConflict, "COURSE_NOT_FINALIZED", "course is not finalized"},
	{approval.ErrInvalidTransition, goerrors.CategoryBadInput, "INVALID_TRANSITION", "action not allowed in current stage"},
	{approval.ErrEditLimitExceeded, goerrors.CategoryBadInput, "EDIT_LIMIT_EXCEEDED", "edit limit reached for stage"},
	{approval.ErrInvalidDraft, goerrors.CategoryValidation, "INVALID_DRAFT", "edited draft failed validation"},
	{approval.ErrGenerationFailure, goerrors.CategoryExternal, "GENERATION_FAILED", "generation step failed"},
	{approval.ErrCourseIDRequired, goerrors.CategoryValidation, "REQUEST_INVALID", "course id required"},
	{approval.ErrFacultyIDRequired, goerrors.CategoryValidation, "REQUEST_INVALID", "faculty id required"},
	{approval.ErrRawContentRequired, goerrors.CategoryValidation, "REQUEST_INVALID", "raw content required"},
	{approval.ErrLearnerIDRequired, goerrors.CategoryValidation, "REQUEST_INVALID", "learner id required"},
}

// categorize maps coordinator errors to go-errors categories and stable text
// codes. Unknown errors pass through for the generic command wrapping.
func categorize(err error) error {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return commands.Categorize(err, class.category, class.code, class.message)
		}
	}
	return err
}
