package outline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-courseflow/internal/generation/outline"
	"github.com/goliatone/go-courseflow/internal/validation"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/goliatone/go-courseflow/pkg/testsupport"
)

func loadOutline(t *testing.T) string {
	t.Helper()
	data, err := testsupport.LoadFixture("testdata/networks.md")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return string(data)
}

func generateAll(t *testing.T) ([]interfaces.LearningObjective, *interfaces.CourseStructure, *interfaces.KnowledgeGraph) {
	t.Helper()
	ctx := context.Background()
	raw := loadOutline(t)
	gen := outline.NewGenerator()

	objectives, err := gen.GenerateObjectives(ctx, interfaces.ObjectivesRequest{CourseID: "CSN", RawContent: raw})
	if err != nil {
		t.Fatalf("generate objectives: %v", err)
	}
	structure, err := gen.GenerateStructure(ctx, interfaces.StructureRequest{
		CourseID:   "CSN",
		Objectives: objectives,
		RawContent: raw,
	})
	if err != nil {
		t.Fatalf("generate structure: %v", err)
	}
	graph, err := gen.GenerateKnowledgeGraph(ctx, interfaces.GraphRequest{CourseID: "CSN", Structure: *structure})
	if err != nil {
		t.Fatalf("generate graph: %v", err)
	}
	return objectives, structure, graph
}

func TestGenerateObjectivesFromOutline(t *testing.T) {
	objectives, _, _ := generateAll(t)

	titles := []string{"Describe IP addressing", "Configure subnets", "Analyze routing tables"}
	if len(objectives) != len(titles) {
		t.Fatalf("expected %d objectives, got %+v", len(titles), objectives)
	}
	seen := map[string]bool{}
	for i, objective := range objectives {
		if objective.Title != titles[i] {
			t.Fatalf("objective %d: expected %q, got %q", i, titles[i], objective.Title)
		}
		if !strings.HasPrefix(objective.ID, "lo-") || seen[objective.ID] {
			t.Fatalf("unexpected objective id %q", objective.ID)
		}
		seen[objective.ID] = true
	}

	first := objectives[0]
	if first.Verb != "describe" {
		t.Fatalf("expected describe verb, got %q", first.Verb)
	}
	if !strings.Contains(first.Description, "reachable through an address") {
		t.Fatalf("unexpected description %q", first.Description)
	}
	if len(first.Keywords) != 2 || first.Keywords[0] != "ipv4 addresses" {
		t.Fatalf("unexpected keywords %v", first.Keywords)
	}
}

func TestGenerateObjectivesRequiresSections(t *testing.T) {
	_, err := outline.NewGenerator().GenerateObjectives(context.Background(), interfaces.ObjectivesRequest{
		CourseID:   "CSN",
		RawContent: "Just a paragraph without headings.",
	})
	if !errors.Is(err, outline.ErrNoObjectives) {
		t.Fatalf("expected no objectives error, got %v", err)
	}
}

func TestGenerateObjectivesWithoutFrontMatter(t *testing.T) {
	objectives, err := outline.NewGenerator().GenerateObjectives(context.Background(), interfaces.ObjectivesRequest{
		CourseID:   "CSN",
		RawContent: "## Explain congestion control\n\nTCP windows.\n",
	})
	if err != nil {
		t.Fatalf("generate objectives: %v", err)
	}
	if len(objectives) != 1 || objectives[0].Verb != "explain" {
		t.Fatalf("unexpected objectives %+v", objectives)
	}
}

func TestGenerateStructure(t *testing.T) {
	objectives, structure, _ := generateAll(t)

	if structure.Title != "Computer Networks" {
		t.Fatalf("expected frontmatter title, got %q", structure.Title)
	}

	perObjective := map[string][]string{}
	for _, comp := range structure.Components {
		perObjective[comp.ObjectiveID] = append(perObjective[comp.ObjectiveID], comp.Title)
	}
	if got := perObjective[objectives[0].ID]; len(got) != 2 || got[0] != "IPv4 addresses" || got[1] != "Address classes" {
		t.Fatalf("unexpected addressing components %v", got)
	}
	if got := perObjective[objectives[1].ID]; len(got) != 2 || got[0] != "Subnet masks" || got[1] != "CIDR notation" {
		t.Fatalf("unexpected subnet components %v", got)
	}
	if got := perObjective[objectives[2].ID]; len(got) != 1 || got[0] != "Analyze routing tables" {
		t.Fatalf("expected a component mirroring the objective, got %v", got)
	}

	if len(structure.Processes) != len(structure.Components) || len(structure.Methods) != len(structure.Processes) {
		t.Fatalf("expected one process and method per component")
	}
	kinds := map[string]string{}
	for _, process := range structure.Processes {
		kinds[process.ComponentID] = process.Kind
	}
	for _, comp := range structure.Components {
		want := map[string]string{
			objectives[0].ID: outline.ProcessComprehension,
			objectives[1].ID: outline.ProcessApplication,
			objectives[2].ID: outline.ProcessAnalysis,
		}[comp.ObjectiveID]
		if kinds[comp.ID] != want {
			t.Fatalf("component %s: expected %s, got %s", comp.ID, want, kinds[comp.ID])
		}
	}

	if len(structure.Resources) != 1 {
		t.Fatalf("expected one resource, got %+v", structure.Resources)
	}
	resource := structure.Resources[0]
	if resource.Title != "RFC 791" || resource.URL != "https://www.rfc-editor.org/rfc/rfc791" {
		t.Fatalf("unexpected resource %+v", resource)
	}

	payload, err := validation.ToPayload(structure)
	if err != nil {
		t.Fatalf("to payload: %v", err)
	}
	if err := validation.ValidatePayload(validation.SchemaStructure, payload); err != nil {
		t.Fatalf("structure does not validate: %v", err)
	}
}

func TestGenerateStructureKeepsEditedObjectives(t *testing.T) {
	structure, err := outline.NewGenerator().GenerateStructure(context.Background(), interfaces.StructureRequest{
		CourseID: "CSN",
		Title:    "Edited",
		Objectives: []interfaces.LearningObjective{
			{ID: "lo-custom", Title: "Design a campus network"},
		},
		RawContent: loadOutline(t),
	})
	if err != nil {
		t.Fatalf("generate structure: %v", err)
	}
	if structure.Title != "Edited" {
		t.Fatalf("expected request title, got %q", structure.Title)
	}
	if len(structure.Components) != 1 || structure.Components[0].ObjectiveID != "lo-custom" {
		t.Fatalf("unexpected components %+v", structure.Components)
	}
	if structure.Processes[0].Kind != outline.ProcessSynthesis || structure.Methods[0].Name != "project" {
		t.Fatalf("unexpected process %+v method %+v", structure.Processes[0], structure.Methods[0])
	}
}

func TestGenerateKnowledgeGraph(t *testing.T) {
	objectives, structure, graph := generateAll(t)

	kinds := map[string]int{}
	for _, node := range graph.Nodes {
		kinds[node.Kind]++
	}
	if kinds[interfaces.GraphNodeCourse] != 1 ||
		kinds[interfaces.GraphNodeObjective] != len(objectives) ||
		kinds[interfaces.GraphNodeComponent] != len(structure.Components) ||
		kinds[interfaces.GraphNodeResource] != len(structure.Resources) {
		t.Fatalf("unexpected node kinds %v", kinds)
	}

	var prerequisites []interfaces.GraphEdge
	for _, edge := range graph.Edges {
		if edge.Relation == interfaces.RelationPrerequisite {
			prerequisites = append(prerequisites, edge)
		}
	}
	if len(prerequisites) != 2 {
		t.Fatalf("expected a two edge prerequisite chain, got %+v", prerequisites)
	}
	if prerequisites[0].From != objectives[0].ID || prerequisites[1].To != objectives[2].ID {
		t.Fatalf("unexpected chain %+v", prerequisites)
	}

	payload, err := validation.ToPayload(graph)
	if err != nil {
		t.Fatalf("to payload: %v", err)
	}
	if err := validation.ValidatePayload(validation.SchemaGraph, payload); err != nil {
		t.Fatalf("graph does not validate: %v", err)
	}
}

func TestGeneratorHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := outline.NewGenerator().GenerateObjectives(ctx, interfaces.ObjectivesRequest{CourseID: "CSN", RawContent: loadOutline(t)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRejectionFeedbackDropsNamedTitles(t *testing.T) {
	ctx := context.Background()
	raw := loadOutline(t)
	gen := outline.NewGenerator()

	objectives, err := gen.GenerateObjectives(ctx, interfaces.ObjectivesRequest{
		CourseID:   "CSN",
		RawContent: raw,
		Attempt:    1,
		Feedback:   "Too broad.\ndrop: Configure subnets",
	})
	if err != nil {
		t.Fatalf("generate objectives: %v", err)
	}
	if len(objectives) != 2 || objectives[0].Title != "Describe IP addressing" || objectives[1].Title != "Analyze routing tables" {
		t.Fatalf("expected subnets objective to be dropped, got %+v", objectives)
	}

	structure, err := gen.GenerateStructure(ctx, interfaces.StructureRequest{
		CourseID:   "CSN",
		Objectives: objectives,
		RawContent: raw,
		Attempt:    1,
		Feedback:   "Remove Address classes; skip \"RFC 791\"",
	})
	if err != nil {
		t.Fatalf("generate structure: %v", err)
	}
	var titles []string
	for _, comp := range structure.Components {
		if comp.ObjectiveID == objectives[0].ID {
			titles = append(titles, comp.Title)
		}
	}
	if len(titles) != 1 || titles[0] != "IPv4 addresses" {
		t.Fatalf("expected address classes to be dropped, got %v", titles)
	}
	if len(structure.Resources) != 0 {
		t.Fatalf("expected rfc resource to be dropped, got %+v", structure.Resources)
	}
}

func TestRejectionFeedbackKeepsAComponentPerObjective(t *testing.T) {
	structure, err := outline.NewGenerator().GenerateStructure(context.Background(), interfaces.StructureRequest{
		CourseID: "CSN",
		Objectives: []interfaces.LearningObjective{
			{ID: "lo-subnets", Title: "Configure subnets", Verb: "configure"},
		},
		RawContent: loadOutline(t),
		Feedback:   "drop Subnet masks\ndrop CIDR notation",
	})
	if err != nil {
		t.Fatalf("generate structure: %v", err)
	}
	if len(structure.Components) != 1 || structure.Components[0].Title != "Configure subnets" {
		t.Fatalf("expected a mirroring component, got %+v", structure.Components)
	}
}

func TestRejectionFeedbackDropsGraphResources(t *testing.T) {
	_, structure, _ := generateAll(t)
	graph, err := outline.NewGenerator().GenerateKnowledgeGraph(context.Background(), interfaces.GraphRequest{
		CourseID:  "CSN",
		Structure: *structure,
		Attempt:   1,
		Feedback:  "exclude: rfc 791",
	})
	if err != nil {
		t.Fatalf("generate graph: %v", err)
	}
	for _, node := range graph.Nodes {
		if node.Kind == interfaces.GraphNodeResource {
			t.Fatalf("expected resource node to be dropped, got %+v", node)
		}
	}
	for _, edge := range graph.Edges {
		if edge.Relation == interfaces.RelationHasResource {
			t.Fatalf("expected no resource edges, got %+v", edge)
		}
	}
}

func TestFeedbackWithoutDirectivesKeepsDraft(t *testing.T) {
	ctx := context.Background()
	raw := loadOutline(t)
	gen := outline.NewGenerator()
	first, err := gen.GenerateObjectives(ctx, interfaces.ObjectivesRequest{CourseID: "CSN", RawContent: raw})
	if err != nil {
		t.Fatalf("generate objectives: %v", err)
	}
	// "dropped" must not be read as a drop directive.
	again, err := gen.GenerateObjectives(ctx, interfaces.ObjectivesRequest{
		CourseID:   "CSN",
		RawContent: raw,
		Attempt:    1,
		Feedback:   "dropped the ball on Configure subnets, please rephrase",
	})
	if err != nil {
		t.Fatalf("generate objectives: %v", err)
	}
	if len(again) != len(first) {
		t.Fatalf("expected unchanged draft, got %+v", again)
	}
}
