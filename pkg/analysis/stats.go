package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/hpc-uk/netview/pkg/model"
)

// Stats holds derived document statistics. All fields are populated by
// Analyze and read-only afterwards.
type Stats struct {
	// Degree is recomputed from the loaded edge list. The document carries a
	// precomputed degree attribute per node; this is the live value, used to
	// cross-check it and to annotate isolated nodes.
	Degree map[int]int

	// PageRank scores each node's importance within the network. The report
	// generator stores a centrality attribute for the same purpose; ranking
	// from the edges actually loaded keeps the list ordering honest when the
	// two drift.
	PageRank map[int]float64

	// Components is the number of connected components, counting isolated
	// nodes.
	Components int
}

// Analyze computes statistics for a validated document.
func Analyze(g *model.Graph) *Stats {
	st := &Stats{
		Degree:   make(map[int]int, len(g.Nodes)),
		PageRank: make(map[int]float64, len(g.Nodes)),
	}

	// gonum node IDs are the document indices, so results map back directly.
	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(i))
		st.Degree[i] = 0
	}
	ug := simple.NewUndirectedGraph()
	for i := range g.Nodes {
		ug.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges {
		s, t := g.EdgeEndpoints(e)
		if s < 0 || t < 0 || s == t {
			continue
		}
		// Both arcs: PageRank over an undirected network.
		dg.SetEdge(simple.Edge{F: simple.Node(s), T: simple.Node(t)})
		dg.SetEdge(simple.Edge{F: simple.Node(t), T: simple.Node(s)})
		ug.SetEdge(simple.Edge{F: simple.Node(s), T: simple.Node(t)})
		st.Degree[s]++
		st.Degree[t]++
	}

	for id, score := range network.PageRank(dg, 0.85, 1e-6) {
		st.PageRank[int(id)] = score
	}
	st.Components = len(topo.ConnectedComponents(ug))

	return st
}

// RankedIndices returns node indices ordered by PageRank descending, ties
// broken by document order. Used for the node list panel.
func (st *Stats) RankedIndices() []int {
	idx := make([]int, 0, len(st.PageRank))
	for i := range st.PageRank {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		pa, pb := st.PageRank[idx[a]], st.PageRank[idx[b]]
		if pa != pb {
			return pa > pb
		}
		return idx[a] < idx[b]
	})
	return idx
}
