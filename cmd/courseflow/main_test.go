package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-courseflow/internal/approval"
)

const content = `# Computer Networks

## Describe IP addressing

### Address classes

## Configure subnets

- Subnet masks
`

func newWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	contentPath := filepath.Join(dir, "course.md")
	if err := os.WriteFile(contentPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write content: %v", err)
	}
	dsn := "file:" + filepath.Join(dir, "cli.db") + "?cache=shared"
	return dsn, contentPath
}

func runCLI(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := run(context.Background(), append([]string{"-dsn", dsn, "-log-level", "error"}, args...), &buf)
	return buf.String(), err
}

func TestRunLifecyclePersistsBetweenInvocations(t *testing.T) {
	dsn, contentPath := newWorkspace(t)

	out, err := runCLI(t, dsn, "start", "-course", "CSN", "-faculty", "PROF_1", "-content", contentPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	var started approval.ActionResult
	if err := json.Unmarshal([]byte(out), &started); err != nil {
		t.Fatalf("decode start output %q: %v", out, err)
	}
	if started.Stage != "AWAITING_LO_APPROVAL" {
		t.Fatalf("expected AWAITING_LO_APPROVAL, got %s", started.Stage)
	}

	for _, action := range []string{"approve", "confirm", "finalize"} {
		if _, err := runCLI(t, dsn, "action", "-course", "CSN", "-action", action, "-actor", "PROF_1"); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}

	out, err = runCLI(t, dsn, "plt", "-course", "CSN", "-learner", "learner-1", "-level", "beginner", "-methods", "lab, lecture")
	if err != nil {
		t.Fatalf("plt: %v", err)
	}
	if !strings.Contains(out, `"learner_id": "learner-1"`) {
		t.Fatalf("expected tree output, got %s", out)
	}

	if _, err := runCLI(t, dsn, "complete", "-course", "CSN", "-actor", "PROF_1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	out, err = runCLI(t, dsn, "status", "-course", "CSN")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status approval.Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Stage != "COMPLETED" || len(status.ArtifactsPresent) != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	out, err = runCLI(t, dsn, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"course_id": "CSN"`) {
		t.Fatalf("expected CSN in list, got %s", out)
	}
}

func TestRunReportsInvalidTransition(t *testing.T) {
	dsn, contentPath := newWorkspace(t)
	if _, err := runCLI(t, dsn, "start", "-course", "CSN", "-faculty", "PROF_1", "-content", contentPath); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := runCLI(t, dsn, "action", "-course", "CSN", "-action", "finalize")
	if !errors.Is(err, approval.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	dsn, _ := newWorkspace(t)
	if _, err := runCLI(t, dsn, "publish"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := runCLI(t, dsn); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error without command, got %v", err)
	}
}

func TestRunStartRequiresContent(t *testing.T) {
	dsn, _ := newWorkspace(t)
	if _, err := runCLI(t, dsn, "start", "-course", "CSN", "-faculty", "PROF_1"); err == nil {
		t.Fatal("expected missing content to fail")
	}
}
