package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/amk/internal/ir"
)

// GraphWarning describes a structural property of the surface reaction graph.
//
// None of these stop a compile: an unreachable species simply stays at zero
// coverage when integration starts from a clean surface, and cycles are how
// catalysis works.
type GraphWarning struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Level   string   `json:"level"` // "warning" or "info"
}

// AnalyzeNetwork inspects the directed graph of surface species, where each
// reaction adds an edge from every surface reactant to every surface product.
//
// It reports:
//  1. surface species not reachable from the site species (warning)
//  2. strongly connected components of size > 1, found with Tarjan's
//     algorithm, as catalytic cycles (info)
//
// Output order is deterministic.
func AnalyzeNetwork(n *Network, site string) []GraphWarning {
	graph := buildSpeciesGraph(n, site)

	var warnings []GraphWarning

	reached := reachable(graph, site)
	for _, label := range graph.nodes() {
		if label == site || reached[label] {
			continue
		}
		warnings = append(warnings, GraphWarning{
			Path:    []string{site, label},
			Message: fmt.Sprintf("surface species %s is not reachable from the site species %s", label, site),
			Level:   "warning",
		})
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) < 2 {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		kind := "reaction cycle"
		for _, node := range scc {
			if node == site {
				kind = "catalytic cycle through the site species"
				break
			}
		}
		warnings = append(warnings, GraphWarning{
			Path:    path,
			Message: fmt.Sprintf("%s: %s", kind, strings.Join(path, " → ")),
			Level:   "info",
		})
	}

	return warnings
}

// speciesGraph maps a surface species to the surface species it feeds.
type speciesGraph map[string][]string

func (g speciesGraph) nodes() []string {
	out := make([]string, 0, len(g))
	for node := range g {
		out = append(out, node)
	}
	sort.Strings(out)
	return out
}

func buildSpeciesGraph(n *Network, site string) speciesGraph {
	graph := make(speciesGraph)
	isSurface := func(label string) bool {
		sp, err := n.Species.Lookup(label)
		return err == nil && (sp.Phase == ir.PhaseSurface || label == site)
	}

	for _, sp := range n.Species.All() {
		if isSurface(sp.Label) {
			graph[sp.Label] = []string{}
		}
	}

	for _, r := range n.Reactions.All() {
		var from, to []string
		for _, slot := range ir.Slots {
			label, used := r.Participant(slot)
			if !used || !isSurface(label) {
				continue
			}
			if slot.Direction() == ir.Forward {
				from = append(from, label)
			} else {
				to = append(to, label)
			}
		}
		for _, a := range from {
			for _, b := range to {
				graph[a] = appendUnique(graph[a], b)
			}
		}
	}

	for node := range graph {
		sort.Strings(graph[node])
	}
	return graph
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func reachable(graph speciesGraph, start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range graph[v] {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return seen
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the result is stable.
func tarjanSCC(graph speciesGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.nodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath walks edges inside an SCC from its first member until
// it returns there.
func reconstructCyclePath(scc []string, graph speciesGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
