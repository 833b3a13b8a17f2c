package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats holds aggregate metrics for a built graph.
type Stats struct {
	TotalNodes  int            `json:"total_nodes" toon:"total_nodes"`
	TotalEdges  int            `json:"total_edges" toon:"total_edges"`
	NodesByType map[string]int `json:"nodes_by_type" toon:"nodes_by_type"`
	EdgesByType map[string]int `json:"edges_by_type" toon:"edges_by_type"`
	Components  int            `json:"components" toon:"components"`
	Cycles      [][]string     `json:"cycles,omitempty" toon:"cycles,omitempty"`
	Hubs        []Hub          `json:"hubs,omitempty" toon:"hubs,omitempty"`
}

// Hub is a highly referenced node ranked by PageRank.
type Hub struct {
	ID       string  `json:"id" toon:"id"`
	Label    string  `json:"label" toon:"label"`
	PageRank float64 `json:"pagerank" toon:"pagerank"`
	InDegree int     `json:"in_degree" toon:"in_degree"`
}

// gonumView maps graph node IDs onto gonum's int64 node space.
type gonumView struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	toID       map[string]int64
	fromID     map[int64]string
}

func toGonum(g *Graph) *gonumView {
	v := &gonumView{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		toID:       make(map[string]int64),
		fromID:     make(map[int64]string),
	}
	for i, n := range g.Nodes() {
		id := int64(i)
		v.toID[n.ID] = id
		v.fromID[id] = n.ID
		v.directed.AddNode(simple.Node(id))
		v.undirected.AddNode(simple.Node(id))
	}
	// gonum simple graphs reject self-loops.
	for _, e := range g.Edges() {
		from, to := v.toID[e.From], v.toID[e.To]
		if from == to {
			continue
		}
		v.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		if !v.undirected.HasEdgeBetween(from, to) {
			v.undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}
	return v
}

// CalculateStats computes aggregate metrics: per-type counts, weakly connected
// components, reference cycles (Tarjan SCCs larger than one node), and the top
// PageRank hubs.
func CalculateStats(g *Graph, maxHubs int) *Stats {
	s := &Stats{
		TotalNodes:  g.NodeCount(),
		TotalEdges:  g.EdgeCount(),
		NodesByType: make(map[string]int),
		EdgesByType: make(map[string]int),
	}
	for _, n := range g.Nodes() {
		s.NodesByType[n.Type.String()]++
	}
	for _, e := range g.Edges() {
		s.EdgesByType[e.Type.String()]++
	}
	if g.NodeCount() == 0 {
		return s
	}

	v := toGonum(g)

	s.Components = len(topo.ConnectedComponents(v.undirected))

	for _, scc := range topo.TarjanSCC(v.directed) {
		if len(scc) <= 1 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, v.fromID[n.ID()])
		}
		sort.Strings(cycle)
		s.Cycles = append(s.Cycles, cycle)
	}

	rank := network.PageRank(v.directed, 0.85, 1e-6)
	hubs := make([]Hub, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		hubs = append(hubs, Hub{
			ID:       n.ID,
			Label:    n.Label,
			PageRank: rank[v.toID[n.ID]],
			InDegree: len(g.InEdges(n.ID)),
		})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].PageRank != hubs[j].PageRank {
			return hubs[i].PageRank > hubs[j].PageRank
		}
		return hubs[i].ID < hubs[j].ID
	})
	if maxHubs > 0 && len(hubs) > maxHubs {
		hubs = hubs[:maxHubs]
	}
	s.Hubs = hubs

	return s
}
