package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

var (
	ErrNoObjectives     = errors.New("outline: content has no objectives")
	ErrNoStructure      = errors.New("outline: structure has no objectives")
	ErrCourseIDRequired = errors.New("outline: course id required")
)

// Option configures the generator.
type Option func(*Generator)

func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.Ensure(logger)
	}
}

// Generator derives objectives, structure and knowledge graph from a
// markdown course outline. Output only depends on its input. Rejection
// feedback that names titles to drop ("drop: Configure subnets") removes
// them from the regenerated draft; other feedback yields the same draft.
type Generator struct {
	logger interfaces.Logger
}

var _ interfaces.ContentGenerator = (*Generator)(nil)

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *Generator) GenerateObjectives(ctx context.Context, req interfaces.ObjectivesRequest) ([]interfaces.LearningObjective, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := parseDocument(req.RawContent)
	if err != nil {
		return nil, err
	}

	excluded := parseExclusions(req.Feedback)
	ids := newIDAllocator()
	var objectives []interfaces.LearningObjective
	seen := map[string]bool{}
	dropped := 0
	add := func(title, description string, keywords []string) {
		key := strings.ToLower(title)
		if seen[key] {
			return
		}
		if excluded.excludes(title) {
			seen[key] = true
			dropped++
			return
		}
		seen[key] = true
		objectives = append(objectives, interfaces.LearningObjective{
			ID:          ids.next("lo", title),
			Title:       title,
			Description: description,
			Verb:        leadingVerb(title),
			Keywords:    keywords,
		})
	}

	for _, title := range doc.Objectives {
		description := ""
		var keywords []string
		if s := doc.section(title); s != nil {
			description = s.Description
			keywords = componentKeywords(s)
		}
		add(title, description, keywords)
	}
	for _, s := range doc.Sections {
		add(s.Title, s.Description, componentKeywords(s))
	}

	if len(objectives) == 0 {
		return nil, fmt.Errorf("%w: course %s", ErrNoObjectives, req.CourseID)
	}
	g.logger.WithContext(ctx).Debug("objectives generated",
		"course_id", req.CourseID,
		"attempt", req.Attempt,
		"count", len(objectives),
		"dropped", dropped,
	)
	return objectives, nil
}

func (g *Generator) GenerateStructure(ctx context.Context, req interfaces.StructureRequest) (*interfaces.CourseStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CourseID) == "" {
		return nil, ErrCourseIDRequired
	}
	if len(req.Objectives) == 0 {
		return nil, fmt.Errorf("%w: course %s", ErrNoStructure, req.CourseID)
	}
	doc, err := parseDocument(req.RawContent)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = doc.Title
	}
	structure := &interfaces.CourseStructure{
		CourseID:   req.CourseID,
		Title:      title,
		Objectives: append([]interfaces.LearningObjective(nil), req.Objectives...),
		Components: []interfaces.KnowledgeComponent{},
	}

	excluded := parseExclusions(req.Feedback)
	ids := newIDAllocator()
	for _, objective := range req.Objectives {
		entries := []*component{{Title: objective.Title, Description: objective.Description}}
		var sectionLinks []link
		if s := doc.section(objective.Title); s != nil {
			if kept := keepComponents(s.Components, excluded); len(kept) > 0 {
				entries = kept
			}
			sectionLinks = s.Links
		}

		kind := processFor(firstNonEmpty(objective.Verb, leadingVerb(objective.Title)))
		for idx, entry := range entries {
			componentID := ids.next("kc", objective.ID+" "+entry.Title)
			structure.Components = append(structure.Components, interfaces.KnowledgeComponent{
				ID:          componentID,
				ObjectiveID: objective.ID,
				Title:       entry.Title,
				Description: entry.Description,
			})
			processID := ids.next("lp", componentID)
			structure.Processes = append(structure.Processes, interfaces.LearningProcess{
				ID:          processID,
				ComponentID: componentID,
				Kind:        kind,
			})
			structure.Methods = append(structure.Methods, interfaces.InstructionMethod{
				ID:        ids.next("im", componentID),
				ProcessID: processID,
				Name:      methodFor(kind),
			})

			links := entry.Links
			if idx == 0 {
				links = append(append([]link(nil), sectionLinks...), links...)
			}
			for _, l := range links {
				if excluded.excludes(l.Title) {
					continue
				}
				structure.Resources = append(structure.Resources, interfaces.Resource{
					ID:          ids.next("res", componentID+" "+l.Title),
					ComponentID: componentID,
					Title:       l.Title,
					URL:         l.URL,
					Kind:        "link",
				})
			}
		}
	}

	g.logger.WithContext(ctx).Debug("structure generated",
		"course_id", req.CourseID,
		"attempt", req.Attempt,
		"components", len(structure.Components),
	)
	return structure, nil
}

// GenerateKnowledgeGraph links the course to its objectives, components and
// resources. Objectives form a prerequisite chain in structure order.
// Resources named by rejection feedback are left out of the graph.
func (g *Generator) GenerateKnowledgeGraph(ctx context.Context, req interfaces.GraphRequest) (*interfaces.KnowledgeGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	structure := req.Structure
	courseID := firstNonEmpty(structure.CourseID, req.CourseID)
	if courseID == "" {
		return nil, ErrCourseIDRequired
	}
	if len(structure.Objectives) == 0 {
		return nil, fmt.Errorf("%w: course %s", ErrNoStructure, courseID)
	}

	graph := &interfaces.KnowledgeGraph{
		Nodes: []interfaces.GraphNode{{
			ID:    courseID,
			Label: firstNonEmpty(structure.Title, courseID),
			Kind:  interfaces.GraphNodeCourse,
		}},
		Edges: []interfaces.GraphEdge{},
	}

	for idx, objective := range structure.Objectives {
		graph.Nodes = append(graph.Nodes, interfaces.GraphNode{
			ID:         objective.ID,
			Label:      objective.Title,
			Kind:       interfaces.GraphNodeObjective,
			Properties: map[string]any{"verb": firstNonEmpty(objective.Verb, leadingVerb(objective.Title))},
		})
		graph.Edges = append(graph.Edges, interfaces.GraphEdge{
			From: courseID, To: objective.ID, Relation: interfaces.RelationHasObjective,
		})
		if idx > 0 {
			graph.Edges = append(graph.Edges, interfaces.GraphEdge{
				From: structure.Objectives[idx-1].ID, To: objective.ID, Relation: interfaces.RelationPrerequisite,
			})
		}
	}

	processes := map[string]interfaces.LearningProcess{}
	for _, process := range structure.Processes {
		processes[process.ComponentID] = process
	}
	methods := map[string]string{}
	for _, method := range structure.Methods {
		methods[method.ProcessID] = method.Name
	}

	for _, comp := range structure.Components {
		properties := map[string]any{}
		if process, ok := processes[comp.ID]; ok {
			properties["process"] = process.Kind
			if method := methods[process.ID]; method != "" {
				properties["method"] = method
			}
		}
		graph.Nodes = append(graph.Nodes, interfaces.GraphNode{
			ID:         comp.ID,
			Label:      comp.Title,
			Kind:       interfaces.GraphNodeComponent,
			Properties: properties,
		})
		graph.Edges = append(graph.Edges, interfaces.GraphEdge{
			From: comp.ObjectiveID, To: comp.ID, Relation: interfaces.RelationHasComponent,
		})
	}

	excluded := parseExclusions(req.Feedback)
	for _, resource := range structure.Resources {
		if excluded.excludes(resource.Title) {
			continue
		}
		node := interfaces.GraphNode{
			ID:    resource.ID,
			Label: resource.Title,
			Kind:  interfaces.GraphNodeResource,
		}
		if resource.URL != "" {
			node.Properties = map[string]any{"url": resource.URL}
		}
		graph.Nodes = append(graph.Nodes, node)
		graph.Edges = append(graph.Edges, interfaces.GraphEdge{
			From: resource.ComponentID, To: resource.ID, Relation: interfaces.RelationHasResource,
		})
	}

	g.logger.WithContext(ctx).Debug("knowledge graph generated",
		"course_id", courseID,
		"attempt", req.Attempt,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
	)
	return graph, nil
}

// idAllocator builds slug identifiers and suffixes repeats.
type idAllocator struct {
	used map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: map[string]int{}}
}

func (a *idAllocator) next(prefix, value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		normalized = "item"
	}
	normalized = strings.TrimPrefix(normalized, prefix+"-")
	id := prefix + "-" + normalized
	a.used[id]++
	if count := a.used[id]; count > 1 {
		return fmt.Sprintf("%s-%d", id, count)
	}
	return id
}

// keepComponents filters out excluded components. An objective whose
// components are all excluded falls back to a single mirroring component.
func keepComponents(components []*component, excluded exclusions) []*component {
	kept := make([]*component, 0, len(components))
	for _, c := range components {
		if !excluded.excludes(c.Title) {
			kept = append(kept, c)
		}
	}
	return kept
}

func componentKeywords(s *section) []string {
	var keywords []string
	for _, c := range s.Components {
		keywords = append(keywords, strings.ToLower(c.Title))
	}
	return keywords
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
