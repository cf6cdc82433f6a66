package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

const (
	rootModule       = "courseflow"
	approvalModule   = "courseflow.approval"
	pltModule        = "courseflow.plt"
	generationModule = "courseflow.generation"
	storageModule    = "courseflow.storage"
)

const (
	fieldCourseID  = "course_id"
	fieldStage     = "stage"
	fieldAction    = "action"
	fieldLearnerID = "learner_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ApprovalLogger returns the logger namespace reserved for the approval coordinator.
func ApprovalLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, approvalModule)
}

// PLTLogger returns the logger namespace reserved for learning tree generation.
func PLTLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pltModule)
}

// GenerationLogger returns the logger namespace reserved for content generators.
func GenerationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generationModule)
}

// StorageLogger returns the logger namespace reserved for storage bootstrapping.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// WithCourseContext enriches the logger with the course, stage and action
// under evaluation. Empty values are ignored.
func WithCourseContext(logger interfaces.Logger, courseID string, stage domain.Stage, action domain.Action) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(courseID); trimmed != "" {
		fields[fieldCourseID] = trimmed
	}
	if stage != "" {
		fields[fieldStage] = string(stage)
	}
	if action != "" {
		fields[fieldAction] = string(action)
	}
	return WithFields(logger, fields)
}

// WithLearnerContext enriches the logger with course and learner identifiers.
func WithLearnerContext(logger interfaces.Logger, courseID, learnerID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(courseID); trimmed != "" {
		fields[fieldCourseID] = trimmed
	}
	if trimmed := strings.TrimSpace(learnerID); trimmed != "" {
		fields[fieldLearnerID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
