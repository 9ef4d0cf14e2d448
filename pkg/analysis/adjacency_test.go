package analysis

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/hpc-uk/netview/pkg/model"
)

func testGraph() *model.Graph {
	g := &model.Graph{
		Nodes: []model.Node{
			{Name: "clusters", Category: model.CategoryMajor},
			{Name: "alaska", Category: model.CategoryMinor},
			{Name: "csd3", Category: model.CategoryMinor},
			{Name: "loner", Category: model.CategoryMinor},
		},
		Edges: []model.Edge{
			{Source: "clusters", Target: "alaska"},
			{Source: "clusters", Target: "csd3"},
		},
	}
	g.Reindex()
	return g
}

func TestLinkedSelfPairs(t *testing.T) {
	adj := BuildAdjacency(testGraph())
	for i := 0; i < adj.NodeCount(); i++ {
		if !adj.Linked(i, i) {
			t.Errorf("Linked(%d, %d) = false, want true", i, i)
		}
	}
}

func TestLinkedBothOrderings(t *testing.T) {
	g := testGraph()
	adj := BuildAdjacency(g)
	for _, e := range g.Edges {
		s, d := g.EdgeEndpoints(e)
		if !adj.Linked(s, d) || !adj.Linked(d, s) {
			t.Errorf("edge %s-%s not linked in both orderings", e.Source, e.Target)
		}
	}
}

func TestNotLinked(t *testing.T) {
	adj := BuildAdjacency(testGraph())
	if adj.Linked(1, 2) {
		t.Error("alaska and csd3 share a neighbor but no edge; Linked should be false")
	}
	if adj.Linked(0, 3) || adj.Linked(3, 0) {
		t.Error("isolated node should only be linked to itself")
	}
}

// Linked must be symmetric and reflexive for arbitrary graphs, not just the
// fixture above.
func TestLinkedSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "nodes")
		g := &model.Graph{}
		for i := 0; i < n; i++ {
			g.Nodes = append(g.Nodes, model.Node{
				Name:     fmt.Sprintf("n%d", i),
				Category: model.CategoryMinor,
			})
		}
		edges := rapid.IntRange(0, 60).Draw(t, "edges")
		for i := 0; i < edges; i++ {
			s := rapid.IntRange(0, n-1).Draw(t, "s")
			d := rapid.IntRange(0, n-1).Draw(t, "d")
			g.Edges = append(g.Edges, model.Edge{
				Source: fmt.Sprintf("n%d", s),
				Target: fmt.Sprintf("n%d", d),
			})
		}
		g.Reindex()
		adj := BuildAdjacency(g)

		for i := 0; i < n; i++ {
			if !adj.Linked(i, i) {
				t.Fatalf("Linked(%d, %d) = false", i, i)
			}
		}
		a := rapid.IntRange(0, n-1).Draw(t, "a")
		b := rapid.IntRange(0, n-1).Draw(t, "b")
		if adj.Linked(a, b) != adj.Linked(b, a) {
			t.Fatalf("Linked(%d, %d) != Linked(%d, %d)", a, b, b, a)
		}
	})
}
