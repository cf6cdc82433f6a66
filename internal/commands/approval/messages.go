package approvalcmd

import (
	"strings"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	startWorkflowMessageType    = "courseflow.approval.start_workflow"
	facultyActionMessageType    = "courseflow.approval.faculty_action"
	completeWorkflowMessageType = "courseflow.approval.complete_workflow"
	requestPLTMessageType       = "courseflow.approval.request_plt"
)

// StartWorkflowCommand opens the approval workflow for a course.
type StartWorkflowCommand struct {
	CourseID   string `json:"course_id"`
	FacultyID  string `json:"faculty_id"`
	Title      string `json:"title,omitempty"`
	RawContent string `json:"raw_content"`
	// Source names where the raw content came from, e.g. a search index.
	Source string `json:"source,omitempty"`
}

// Type implements command.Message.
func (StartWorkflowCommand) Type() string { return startWorkflowMessageType }

// Validate implements command.Message.
func (cmd StartWorkflowCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.CourseID, validation.Required, validation.By(notBlank("course_id"))),
		validation.Field(&cmd.FacultyID, validation.Required, validation.By(notBlank("faculty_id"))),
		validation.Field(&cmd.RawContent, validation.Required, validation.By(notBlank("raw_content"))),
	)
}

// FacultyActionCommand submits approve, confirm, finalize, edit or reject.
type FacultyActionCommand struct {
	CourseID string `json:"course_id"`
	Action   string `json:"action"`
	Actor    string `json:"actor,omitempty"`
	Comment  string `json:"comment,omitempty"`
	// Payload replaces the pending draft; only read for edit. An edit without
	// a payload still counts toward the edit limit and returns the draft.
	Payload map[string]any `json:"payload,omitempty"`
}

func (FacultyActionCommand) Type() string { return facultyActionMessageType }

func (cmd FacultyActionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.CourseID, validation.Required, validation.By(notBlank("course_id"))),
		validation.Field(&cmd.Action, validation.Required, validation.By(func(value any) error {
			if !domain.NormalizeAction(value.(string)).Valid() {
				return validation.NewError("courseflow.approval.action_unknown", "action must be one of approve, confirm, finalize, edit, reject")
			}
			return nil
		})),
	)
}

// CompleteWorkflowCommand hands a finalized course off for learner use.
type CompleteWorkflowCommand struct {
	CourseID string `json:"course_id"`
	Actor    string `json:"actor,omitempty"`
}

func (CompleteWorkflowCommand) Type() string { return completeWorkflowMessageType }

func (cmd CompleteWorkflowCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.CourseID, validation.Required, validation.By(notBlank("course_id"))),
	)
}

// RequestPLTCommand asks for a learner's personalized learning tree.
type RequestPLTCommand struct {
	CourseID  string                    `json:"course_id"`
	LearnerID string                    `json:"learner_id"`
	Context   interfaces.LearnerContext `json:"context"`
}

func (RequestPLTCommand) Type() string { return requestPLTMessageType }

func (cmd RequestPLTCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.CourseID, validation.Required, validation.By(notBlank("course_id"))),
		validation.Field(&cmd.LearnerID, validation.Required, validation.By(notBlank("learner_id"))),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError("courseflow.approval."+field+"_required", field+" is required")
		}
		return nil
	}
}
