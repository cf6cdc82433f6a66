package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: l.fields})
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func TestDefaultTelemetryLogsWithMessageFields(t *testing.T) {
	logger := newRecordingLogger()
	telemetry := DefaultTelemetry[testMessage](logger)

	telemetry(context.Background(), testMessage{CourseID: "CSN"}, TelemetryInfo{
		Fields: map[string]any{"course_id": "CSN"},
		Status: TelemetryStatusSuccess,
	})
	telemetry(context.Background(), testMessage{}, TelemetryInfo{
		Status: TelemetryStatusFailed,
		Error:  errors.New("boom"),
	})

	entries := *logger.entries
	if len(entries) != 2 {
		t.Fatalf("expected two log entries, got %d", len(entries))
	}
	if entries[0].level != "info" || entries[0].msg != "command.execute.success" || entries[0].fields["course_id"] != "CSN" {
		t.Fatalf("unexpected success entry %+v", entries[0])
	}
	if entries[1].level != "error" || entries[1].msg != "command.execute.failed" || len(entries[1].fields) != 0 {
		t.Fatalf("unexpected failure entry %+v", entries[1])
	}
}
