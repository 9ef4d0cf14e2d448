package testutil

import "testing"

func TestGenerateGraphShape(t *testing.T) {
	g := GenerateGraph(3, 4)
	AssertNodeCount(t, g, 3+3*4)
	AssertNoDuplicateNames(t, g)
	AssertAllValid(t, g)
	if err := g.Validate(); err != nil {
		t.Fatalf("generated graph invalid: %v", err)
	}
	AssertEdgeExists(t, g, "major-0", "major-1")
	AssertEdgeExists(t, g, "major-2", "minor-2-3")
}

func TestGenerateGraphDeterministic(t *testing.T) {
	a, b := GenerateGraph(2, 3), GenerateGraph(2, 3)
	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		t.Fatal("generator not deterministic")
	}
	for i := range a.Nodes {
		if a.Nodes[i].Name != b.Nodes[i].Name || a.Nodes[i].Color != b.Nodes[i].Color {
			t.Fatalf("node %d differs between runs", i)
		}
	}
}
