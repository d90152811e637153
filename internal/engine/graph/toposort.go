package graph

import (
	"sort"

	"blueprints/internal/engine/blueprint"
)

// topologicalOrder runs Kahn's algorithm over the discovered adjacency.
// Dependencies come before their dependents and the root comes last.
// Nodes Kahn cannot place participate in a cycle; they are appended after
// the sorted prefix in discovery order, each exactly once, and the cycles
// themselves are reported separately.
func topologicalOrder(project *ResolvedProject, discovered []*blueprint.Blueprint) ([]*blueprint.Blueprint, [][]string) {
	rootName := project.Root.ModuleName

	byName := make(map[string]*blueprint.Blueprint, len(project.Dependencies)+1)
	byName[rootName] = project.Root
	for name, dep := range project.Dependencies {
		byName[name] = dep
	}

	remaining := make(map[string]int, len(byName))
	dependents := make(map[string][]string)
	for name := range byName {
		count := 0
		for _, dep := range project.Adjacency[name] {
			if _, ok := byName[dep]; ok {
				count++
				dependents[dep] = append(dependents[dep], name)
			}
		}
		remaining[name] = count
	}

	var ready []string
	for name, count := range remaining {
		if count == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]*blueprint.Blueprint, 0, len(byName))
	emitted := make(map[string]bool, len(byName))

	for len(ready) > 0 {
		idx := 0
		if ready[idx] == rootName && len(ready) > 1 {
			// Root goes last even when it becomes ready early.
			idx = 1
		}
		name := ready[idx]
		ready = append(ready[:idx], ready[idx+1:]...)

		emitted[name] = true
		order = append(order, byName[name])

		for _, dependent := range dependents[name] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
				sort.Strings(ready)
			}
		}
	}

	if len(emitted) == len(byName) {
		return order, nil
	}

	// Cycle members, in discovery order, then the root if it was blocked.
	leftover := make(map[string]bool)
	for _, bp := range discovered {
		if !emitted[bp.ModuleName] {
			leftover[bp.ModuleName] = true
			order = append(order, bp)
		}
	}
	if !emitted[rootName] {
		leftover[rootName] = true
		order = append(order, project.Root)
	}

	return order, findCycles(project.Adjacency, leftover)
}

// findCycles walks the adjacency restricted to the leftover nodes and
// collects each cycle path found on the DFS stack.
func findCycles(adjacency map[string][]string, leftover map[string]bool) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	names := make([]string, 0, len(leftover))
	for name := range leftover {
		names = append(names, name)
	}
	sort.Strings(names)

	var walk func(curr string, path []string)
	walk = func(curr string, path []string) {
		visited[curr] = true
		onStack[curr] = true
		path = append(path, curr)

		for _, next := range adjacency[curr] {
			if !leftover[next] {
				continue
			}
			if onStack[next] {
				for i, name := range path {
					if name == next {
						cycle := make([]string, len(path)-i)
						copy(cycle, path[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			} else if !visited[next] {
				walk(next, path)
			}
		}

		onStack[curr] = false
	}

	for _, name := range names {
		if !visited[name] {
			walk(name, nil)
		}
	}
	return cycles
}
