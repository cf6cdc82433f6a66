package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-courseflow/internal/domain"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrSchemaUnknown    = errors.New("schema unknown")
)

// Schema names for checkpoint drafts and artifacts.
const (
	SchemaObjectives = "objectives"
	SchemaStructure  = "structure"
	SchemaGraph      = "graph"
	SchemaFinalized  = "finalized"
)

const schemaBaseURL = "https://courseflow.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Schema string
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// SchemaForArtifact returns the schema name an artifact payload must satisfy.
func SchemaForArtifact(kind domain.ArtifactKind) (string, bool) {
	switch kind {
	case domain.ArtifactFACD:
		return SchemaObjectives, true
	case domain.ArtifactFCCS:
		return SchemaStructure, true
	case domain.ArtifactFFCS:
		return SchemaFinalized, true
	default:
		return "", false
	}
}

// SchemaForCheckpoint returns the schema name of the draft reviewed at stage.
func SchemaForCheckpoint(stage domain.Stage) (string, bool) {
	switch stage {
	case domain.StageAwaitingLOApproval:
		return SchemaObjectives, true
	case domain.StageAwaitingStructureConfirmation:
		return SchemaStructure, true
	case domain.StageAwaitingKGFinalization:
		return SchemaGraph, true
	default:
		return "", false
	}
}

// ValidateArtifact validates an artifact payload against the schema of its kind.
func ValidateArtifact(kind domain.ArtifactKind, payload map[string]any) error {
	name, ok := SchemaForArtifact(kind)
	if !ok {
		return fmt.Errorf("%w: artifact %s", ErrSchemaUnknown, kind)
	}
	return ValidatePayload(name, payload)
}

// ValidateDraft validates a faculty revised draft for the checkpoint at stage.
func ValidateDraft(stage domain.Stage, payload map[string]any) error {
	name, ok := SchemaForCheckpoint(stage)
	if !ok {
		return fmt.Errorf("%w: checkpoint %s", ErrSchemaUnknown, stage)
	}
	return ValidatePayload(name, payload)
}

// ValidatePayload validates payload against a named built-in schema.
func ValidatePayload(name string, payload map[string]any) error {
	schema, err := lookupSchema(name)
	if err != nil {
		return err
	}
	var instance any = payload
	if payload == nil {
		instance = map[string]any{}
	}
	if err := schema.Validate(instance); err != nil {
		return &PayloadValidationError{
			Schema: name,
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func lookupSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileSchemas()
	})
	if compileErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, compileErr)
	}
	schema, ok := compiled[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnknown, name)
	}
	return schema, nil
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	result := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result[name] = schema
	}
	return result, nil
}

// ToPayload converts a typed document into the generic payload stored in
// artifacts and drafts.
func ToPayload(value any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FromPayload decodes a generic payload into target.
func FromPayload(payload map[string]any, target any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, target)
}

// ClonePayload deep copies a payload so stored artifacts cannot be mutated
// through caller held references.
func ClonePayload(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return ClonePayload(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
