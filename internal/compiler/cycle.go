package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/statecore/internal/chart"
)

// CycleWarning represents a potential loop of eventless transitions.
//
// Cycles are warnings, not errors, because guards may break them at run
// time. A cycle in which every transition is guarded is reported at
// level "info".
type CycleWarning struct {
	Path    []string `json:"path"`    // state path: ["a", "b", "a"]
	Message string   `json:"message"` // human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeEventlessCycles reports states that can keep firing eventless
// transitions without ever waiting for an event.
//
// The graph has an edge from the source of each eventless transition to
// every state carrying eventless transitions that is active right after
// it fires: the target, its ancestors and its descendants. A guarded
// internal eventless transition is a self-loop. Each strongly connected
// component with more than one state, or with a self-loop, is reported.
//
// An acyclic chart returns an empty list.
func AnalyzeEventlessCycles(c *chart.Chart) []CycleWarning {
	g := buildEventlessGraph(c)
	if len(g.nodes) == 0 {
		return []CycleWarning{}
	}

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || g.hasEdge(scc[0], scc[0]) {
			warnings = append(warnings, g.warning(scc))
		}
	}
	return warnings
}

// eventlessGraph maps a state to the states whose eventless transitions
// may fire right after its own.
type eventlessGraph struct {
	nodes     []string
	edges     map[string][]string
	unguarded map[[2]string]bool
}

func (g *eventlessGraph) hasEdge(from, to string) bool {
	return slices.Contains(g.edges[from], to)
}

func (g *eventlessGraph) addEdge(from, to string, guarded bool) {
	if !g.hasEdge(from, to) {
		g.edges[from] = append(g.edges[from], to)
	}
	if !guarded {
		g.unguarded[[2]string{from, to}] = true
	}
}

func buildEventlessGraph(c *chart.Chart) *eventlessGraph {
	g := &eventlessGraph{
		edges:     make(map[string][]string),
		unguarded: make(map[[2]string]bool),
	}

	// Nodes in registration order keep the output deterministic.
	hasEventless := make(map[string]bool)
	for _, name := range c.States() {
		for _, t := range c.TransitionsFrom(name) {
			if t.Eventless() {
				hasEventless[name] = true
				g.nodes = append(g.nodes, name)
				break
			}
		}
	}

	for _, t := range c.Transitions() {
		if !t.Eventless() || !hasEventless[t.From] {
			continue
		}
		if t.Internal() {
			g.addEdge(t.From, t.From, t.Guard != "")
			continue
		}
		active := append([]string{t.To}, c.AncestorsFor(t.To)...)
		active = append(active, c.DescendantsFor(t.To)...)
		for _, next := range g.nodes {
			if slices.Contains(active, next) {
				g.addEdge(t.From, next, t.Guard != "")
			}
		}
	}
	return g
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(g *eventlessGraph) [][]string {
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

		for _, w := range g.edges[v] {
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
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// warning builds a CycleWarning from an SCC, walking edges inside the
// component from its first registered state back to itself.
func (g *eventlessGraph) warning(scc []string) CycleWarning {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := scc[0]
	for _, n := range g.nodes {
		if members[n] {
			start = n
			break
		}
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range g.edges[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				if w == start {
					break
				}
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}

	level := "info"
	for key := range g.unguarded {
		if members[key[0]] && members[key[1]] {
			level = "warning"
			break
		}
	}

	msg := fmt.Sprintf("Eventless transitions may loop: %s", strings.Join(path, " → "))
	if len(scc) == 1 {
		msg = fmt.Sprintf("Eventless transition on %s may fire repeatedly", start)
	}
	return CycleWarning{Path: path, Message: msg, Level: level}
}
