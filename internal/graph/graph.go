// Package graph provides a small dependency DAG used to order a build
// plan's nodes. It is a direct generalization of the teacher's
// internal/nebula/graph.go — the same Kahn's-algorithm topological sort
// and wave computation, with "phase ID" renamed to the more general
// "node ID" so it can order compile/archive/link/template nodes instead
// of nebula phases.
package graph

import (
	"fmt"
	"sort"

	"github.com/forgebuild/forge/internal/forgeerr"
)

// Graph is a dependency DAG over node IDs. An edge from A to B means "A
// depends on B": B must complete before A may start.
type Graph struct {
	adjacency map[string]map[string]bool // nodeID -> set of IDs it depends on
	reverse   map[string]map[string]bool // nodeID -> set of IDs that depend on it
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string]map[string]bool),
		reverse:   make(map[string]map[string]bool),
	}
}

// AddNode registers id with no dependencies. Safe to call more than once
// for the same id.
func (g *Graph) AddNode(id string) {
	if g.adjacency[id] == nil {
		g.adjacency[id] = make(map[string]bool)
	}
	if g.reverse[id] == nil {
		g.reverse[id] = make(map[string]bool)
	}
}

// AddDependency records that id depends on dep. Both are registered as
// nodes if not already present.
func (g *Graph) AddDependency(id, dep string) {
	g.AddNode(id)
	g.AddNode(dep)
	g.adjacency[id][dep] = true
	g.reverse[dep][id] = true
}

// Nodes returns every registered node ID, unordered.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.adjacency))
	for id := range g.adjacency {
		out = append(out, id)
	}
	return out
}

// Sort returns node IDs in topological order (dependencies first).
func (g *Graph) Sort() ([]string, error) {
	inDegree := make(map[string]int, len(g.adjacency))
	for id := range g.adjacency {
		inDegree[id] = len(g.adjacency[id])
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var sorted []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var freed []string
		for dependent := range g.reverse[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	if len(sorted) != len(g.adjacency) {
		return nil, fmt.Errorf("%w: not all nodes could be ordered", forgeerr.ErrCycle)
	}
	return sorted, nil
}

// Wave is a group of node IDs that can execute in parallel because all
// their dependencies are satisfied by prior waves.
type Wave struct {
	Number int
	NodeIDs []string
}

// ComputeWaves groups node IDs into dependency waves via Kahn's
// algorithm: wave 1 has no dependencies, wave 2's dependencies are all
// satisfied by wave 1, and so on.
func (g *Graph) ComputeWaves() ([]Wave, error) {
	inDegree := make(map[string]int, len(g.adjacency))
	for id := range g.adjacency {
		inDegree[id] = len(g.adjacency[id])
	}

	var current []string
	for id, deg := range inDegree {
		if deg == 0 {
			current = append(current, id)
		}
	}

	var waves []Wave
	visited := 0
	for len(current) > 0 {
		sort.Strings(current)
		waves = append(waves, Wave{Number: len(waves) + 1, NodeIDs: current})
		visited += len(current)

		var next []string
		for _, id := range current {
			for dependent := range g.reverse[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if visited != len(g.adjacency) {
		return nil, fmt.Errorf("%w: not all nodes could be grouped into waves", forgeerr.ErrCycle)
	}
	return waves, nil
}

// Ready returns node IDs whose dependencies are all in the done set.
func (g *Graph) Ready(done map[string]bool) []string {
	var ready []string
	for id, deps := range g.adjacency {
		if done[id] {
			continue
		}
		allMet := true
		for dep := range deps {
			if !done[dep] {
				allMet = false
				break
			}
		}
		if allMet {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}
