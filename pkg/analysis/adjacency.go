// Package analysis builds the derived read-only structures the viewer needs
// on top of the network document: the O(1) adjacency index driving
// neighborhood highlighting, and gonum-backed graph statistics used to order
// and annotate the node list.
package analysis

import "github.com/hpc-uk/netview/pkg/model"

type pair struct{ a, b int }

// Adjacency answers "are these two nodes linked, or the same node" in O(1).
// It is built once from the loaded document and never mutated. Only one
// ordering per edge is stored; Linked checks both orderings, so callers never
// need to normalize their arguments.
type Adjacency struct {
	linked map[pair]struct{}
	n      int
}

// BuildAdjacency indexes every self pair and every loaded edge.
func BuildAdjacency(g *model.Graph) *Adjacency {
	adj := &Adjacency{
		linked: make(map[pair]struct{}, len(g.Nodes)+len(g.Edges)),
		n:      len(g.Nodes),
	}
	for i := range g.Nodes {
		adj.linked[pair{i, i}] = struct{}{}
	}
	for _, e := range g.Edges {
		s, t := g.EdgeEndpoints(e)
		if s < 0 || t < 0 {
			// Validate rejects dangling edges before we ever get here.
			continue
		}
		adj.linked[pair{s, t}] = struct{}{}
	}
	return adj
}

// Linked reports whether a and b are joined by an edge or identical.
func (adj *Adjacency) Linked(a, b int) bool {
	if _, ok := adj.linked[pair{a, b}]; ok {
		return true
	}
	_, ok := adj.linked[pair{b, a}]
	return ok
}

// NodeCount returns the number of nodes the index was built over.
func (adj *Adjacency) NodeCount() int {
	return adj.n
}
