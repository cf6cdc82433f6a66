package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-courseflow/internal/domain"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "courseflow.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Debug("noop")
}

func TestApprovalLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	ApprovalLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != approvalModule {
		t.Fatalf("expected module %s, got %v", approvalModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != approvalModule {
		t.Fatalf("expected module field, got %v", rec.fields)
	}
}

func TestWithCourseContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	WithCourseContext(rec, " CSN ", domain.StageAwaitingLOApproval, "")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got[fieldCourseID] != "CSN" {
		t.Fatalf("expected trimmed course id, got %v", got[fieldCourseID])
	}
	if got[fieldStage] != string(domain.StageAwaitingLOApproval) {
		t.Fatalf("expected stage field, got %v", got[fieldStage])
	}
	if _, ok := got[fieldAction]; ok {
		t.Fatalf("expected empty action to be skipped, got %v", got)
	}
}

func TestWithFieldsIgnoresEmptyInput(t *testing.T) {
	rec := &recordingLogger{}
	if WithFields(rec, nil) != rec {
		t.Fatal("expected logger to be returned unchanged")
	}
	if len(rec.fields) != 0 {
		t.Fatalf("expected no WithFields call, got %d", len(rec.fields))
	}
	if _, ok := Ensure(nil).(noopLogger); !ok {
		t.Fatal("expected Ensure(nil) to return noop logger")
	}
}
