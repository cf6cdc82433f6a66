package plt

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

// ErrPrerequisiteCycle is returned when objective prerequisites form a cycle.
var ErrPrerequisiteCycle = errors.New("plt: prerequisite cycle between objectives")

const levelAdvanced = "advanced"

// OrderedGenerator is the built-in PLTGenerator. It orders objectives by the
// prerequisite edges of the knowledge graph, keeping structure order among
// peers, and maps every knowledge component to a step.
//
// Learner goals narrow the tree to the matching objectives and their
// prerequisites. Advanced learners skip components they already completed;
// everyone else sees them flagged as mastered.
type OrderedGenerator struct{}

var _ interfaces.PLTGenerator = OrderedGenerator{}

// NewOrderedGenerator returns the built-in generator.
func NewOrderedGenerator() OrderedGenerator {
	return OrderedGenerator{}
}

func (OrderedGenerator) GenerateTree(ctx context.Context, req interfaces.PLTRequest) (*interfaces.LearningTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	structure := req.Course.Structure

	order, err := orderObjectives(structure.Objectives, req.Course.Graph.Edges)
	if err != nil {
		return nil, err
	}
	selected := selectObjectives(structure.Objectives, req.Course.Graph.Edges, req.Context.Goals)

	completed := make(map[string]bool, len(req.Context.CompletedComponents))
	for _, id := range req.Context.CompletedComponents {
		completed[strings.TrimSpace(id)] = true
	}
	skipMastered := strings.EqualFold(strings.TrimSpace(req.Context.Level), levelAdvanced)

	tree := &interfaces.LearningTree{
		CourseID:  req.CourseID,
		LearnerID: req.LearnerID,
		Nodes:     []interfaces.LearningTreeNode{},
	}
	for _, objective := range order {
		if selected != nil && !selected[objective.ID] {
			continue
		}
		steps := []interfaces.LearningTreeStep{}
		for _, component := range structure.Components {
			if component.ObjectiveID != objective.ID {
				continue
			}
			mastered := completed[component.ID]
			if mastered && skipMastered {
				continue
			}
			process, method := pickMethod(structure, component.ID, req.Context.PreferredMethods)
			steps = append(steps, interfaces.LearningTreeStep{
				ComponentID: component.ID,
				Title:       component.Title,
				Process:     process,
				Method:      method,
				Resources:   resourcesFor(structure.Resources, component.ID),
				Mastered:    mastered,
			})
		}
		if len(steps) == 0 {
			continue
		}
		tree.Nodes = append(tree.Nodes, interfaces.LearningTreeNode{
			ObjectiveID: objective.ID,
			Title:       objective.Title,
			Order:       len(tree.Nodes) + 1,
			Steps:       steps,
		})
	}
	return tree, nil
}

// orderObjectives sorts objectives topologically, picking the earliest
// available objective in structure order at each step.
func orderObjectives(objectives []interfaces.LearningObjective, edges []interfaces.GraphEdge) ([]interfaces.LearningObjective, error) {
	index := make(map[string]int, len(objectives))
	for idx, objective := range objectives {
		index[objective.ID] = idx
	}
	indegree := make([]int, len(objectives))
	dependents := make(map[int][]int)
	for _, edge := range edges {
		if edge.Relation != interfaces.RelationPrerequisite {
			continue
		}
		from, okFrom := index[edge.From]
		to, okTo := index[edge.To]
		if !okFrom || !okTo || from == to {
			continue
		}
		dependents[from] = append(dependents[from], to)
		indegree[to]++
	}

	ready := []int{}
	for idx := range objectives {
		if indegree[idx] == 0 {
			ready = append(ready, idx)
		}
	}
	out := make([]interfaces.LearningObjective, 0, len(objectives))
	for len(ready) > 0 {
		slices.Sort(ready)
		next := ready[0]
		ready = ready[1:]
		out = append(out, objectives[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(out) != len(objectives) {
		return nil, ErrPrerequisiteCycle
	}
	return out, nil
}

// selectObjectives returns nil when every objective applies.
func selectObjectives(objectives []interfaces.LearningObjective, edges []interfaces.GraphEdge, goals []string) map[string]bool {
	matched := map[string]bool{}
	for _, goal := range goals {
		goal = strings.ToLower(strings.TrimSpace(goal))
		if goal == "" {
			continue
		}
		for _, objective := range objectives {
			if strings.EqualFold(objective.ID, goal) || strings.Contains(strings.ToLower(objective.Title), goal) {
				matched[objective.ID] = true
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}

	prerequisites := make(map[string][]string)
	for _, edge := range edges {
		if edge.Relation == interfaces.RelationPrerequisite {
			prerequisites[edge.To] = append(prerequisites[edge.To], edge.From)
		}
	}
	queue := make([]string, 0, len(matched))
	for id := range matched {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, prereq := range prerequisites[id] {
			if !matched[prereq] {
				matched[prereq] = true
				queue = append(queue, prereq)
			}
		}
	}
	return matched
}

func pickMethod(structure interfaces.CourseStructure, componentID string, preferred []string) (string, string) {
	var process *interfaces.LearningProcess
	for idx := range structure.Processes {
		if structure.Processes[idx].ComponentID == componentID {
			process = &structure.Processes[idx]
			break
		}
	}
	if process == nil {
		return "", ""
	}
	methods := []string{}
	for _, method := range structure.Methods {
		if method.ProcessID == process.ID {
			methods = append(methods, method.Name)
		}
	}
	if len(methods) == 0 {
		return process.Kind, ""
	}
	for _, want := range preferred {
		for _, name := range methods {
			if strings.EqualFold(strings.TrimSpace(want), name) {
				return process.Kind, name
			}
		}
	}
	return process.Kind, methods[0]
}

func resourcesFor(resources []interfaces.Resource, componentID string) []string {
	var out []string
	for _, resource := range resources {
		if resource.ComponentID == componentID {
			out = append(out, resource.Title)
		}
	}
	return out
}
