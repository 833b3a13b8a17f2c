// Package graph provides the directed dependency-graph ADT populated during a
// project walk. It is pure data: no filesystem access, no concurrency.
package graph

import (
	"log/slog"
	"sort"
)

// Graph is a directed graph with unique nodes and typed, unique edges.
// Insertion is idempotent: re-adding a node or an identical (from, to, type)
// triple is a no-op. Not safe for concurrent mutation; a build run is
// single-writer.
type Graph struct {
	nodes    map[string]Node
	order    []string
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outIndex map[string][]int
	inIndex  map[string][]int
	logger   *slog.Logger
}

// New creates an empty graph. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Graph{
		nodes:    make(map[string]Node),
		edgeSet:  make(map[Edge]struct{}),
		outIndex: make(map[string][]int),
		inIndex:  make(map[string][]int),
		logger:   logger,
	}
}

// AddNode inserts a node. The first insert wins: if the ID is already present
// the call is a no-op and any new metadata is discarded.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodes[n.ID]; ok {
		return
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

// AddEdge inserts a typed edge. Both endpoints must already exist; otherwise
// the edge is dropped and logged. Identical triples are inserted once.
func (g *Graph) AddEdge(e Edge) {
	if _, ok := g.nodes[e.From]; !ok {
		g.logger.Warn("edge source missing, dropping edge", "from", e.From, "to", e.To, "type", e.Type)
		return
	}
	if _, ok := g.nodes[e.To]; !ok {
		g.logger.Warn("edge target missing, dropping edge", "from", e.From, "to", e.To, "type", e.Type)
		return
	}
	if _, ok := g.edgeSet[e]; ok {
		return
	}
	g.edgeSet[e] = struct{}{}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outIndex[e.From] = append(g.outIndex[e.From], idx)
	g.inIndex[e.To] = append(g.inIndex[e.To], idx)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the edges leaving the given node.
func (g *Graph) OutEdges(id string) []Edge {
	return g.edgesAt(g.outIndex[id])
}

// InEdges returns the edges arriving at the given node.
func (g *Graph) InEdges(id string) []Edge {
	return g.edgesAt(g.inIndex[id])
}

func (g *Graph) edgesAt(indices []int) []Edge {
	out := make([]Edge, 0, len(indices))
	for _, i := range indices {
		out = append(out, g.edges[i])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// ModulePaths returns the absolute paths of all module-backed nodes, sorted.
// Structural nodes without a backing file are skipped.
func (g *Graph) ModulePaths() []string {
	var paths []string
	for _, n := range g.nodes {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Export returns the serializable {nodes, links} projection in insertion order.
func (g *Graph) Export() Export {
	exp := Export{
		Nodes: make([]ExportNode, 0, len(g.order)),
		Links: make([]ExportLink, 0, len(g.edges)),
	}
	for _, id := range g.order {
		n := g.nodes[id]
		exp.Nodes = append(exp.Nodes, ExportNode{ID: n.ID, Type: n.Type.String(), Label: n.Label})
	}
	for _, e := range g.edges {
		exp.Links = append(exp.Links, ExportLink{Source: e.From, Target: e.To, Type: e.Type.String()})
	}
	return exp
}
