// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package alias

import (
	"regexp"
	"strings"
)

// commandSeparators splits a chained command string (e.g. "n;look;s") into
// its individual commands, the same separators the parser recognizes for
// sequencing.
var commandSeparators = regexp.MustCompile(`[;&|]+`)

// Graph is a directed graph of alias-name dependencies: an edge a→b means
// alias a's command references alias b as its first word. It detects cycles
// before an alias is expanded, preventing an "alias bomb" of mutually
// recursive aliases from looping forever.
//
// This is node-per-alias with explicit DFS, not the depth-limited walk used
// elsewhere in this module's resolution cache: a graph can report the exact
// cycle path, which a depth counter cannot.
type Graph struct {
	edges map[string][]string
}

// NewGraph creates an empty alias dependency graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// Build populates the graph from a player's alias set, one node per alias
// name with an edge to each alias name its command references.
func (g *Graph) Build(aliases []Alias) {
	g.edges = make(map[string][]string, len(aliases))
	for _, a := range aliases {
		if _, ok := g.edges[a.Name]; !ok {
			g.edges[a.Name] = nil
		}
		for _, ref := range extractReferences(a.Command) {
			g.edges[a.Name] = append(g.edges[a.Name], ref)
		}
	}
}

// extractReferences returns the first word of each separator-delimited
// segment of command — the set of names command might be referencing as
// aliases.
func extractReferences(command string) []string {
	segments := commandSeparators.Split(command, -1)
	refs := make([]string, 0, len(segments))
	for _, seg := range segments {
		words := strings.Fields(seg)
		if len(words) > 0 {
			refs = append(refs, words[0])
		}
	}
	return refs
}

// DetectCycle reports the cycle path (as a sequence of alias names) reachable
// from aliasName, or nil if expanding aliasName cannot loop. Uses recursive
// DFS with an explicit path stack so the cycle, once found, can be reported
// to the caller rather than just a yes/no answer.
func (g *Graph) DetectCycle(aliasName string) []string {
	if _, ok := g.edges[aliasName]; !ok {
		return nil
	}

	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		visited[node] = true
		onPath[node] = true
		path = append(path, node)

		for _, next := range g.edges[node] {
			if onPath[next] {
				// Found the cycle: return the path from next's first
				// occurrence onward.
				for i, n := range path {
					if n == next {
						return append(append([]string{}, path[i:]...), next)
					}
				}
				return []string{next}
			}
			if !visited[next] {
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		onPath[node] = false
		path = path[:len(path)-1]
		return nil
	}

	return visit(aliasName)
}

// IsSafeToExpand reports whether aliasName can be expanded without entering
// a cycle. This is the primary safety check callers should use before
// expanding any alias.
func (g *Graph) IsSafeToExpand(aliasName string) bool {
	return g.DetectCycle(aliasName) == nil
}

// ExpansionDepth returns the length of the longest dependency chain
// reachable from aliasName. Returns 0 if aliasName has no recorded
// dependencies.
func (g *Graph) ExpansionDepth(aliasName string) int {
	if _, ok := g.edges[aliasName]; !ok {
		return 0
	}

	visited := make(map[string]bool)
	var depth func(node string) int
	depth = func(node string) int {
		if visited[node] {
			return 0 // already counted on this search; avoid re-walking a cycle
		}
		visited[node] = true
		defer delete(visited, node)

		max := 0
		for _, next := range g.edges[node] {
			if d := depth(next); d+1 > max {
				max = d + 1
			}
		}
		return max
	}

	return depth(aliasName)
}

// Clear discards all recorded edges.
func (g *Graph) Clear() {
	g.edges = make(map[string][]string)
}
