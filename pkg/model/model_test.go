package model

import (
	"strings"
	"testing"
)

func validGraph() *Graph {
	g := &Graph{
		Nodes: []Node{
			{Name: "clusters", Category: CategoryMajor, Color: "#1f77b4"},
			{Name: "alaska", Category: CategoryMinor, Color: "#aec7e8", Degree: 2},
			{Name: "csd3", Category: CategoryMinor, Color: "#aec7e8", Degree: 1},
		},
		Edges: []Edge{
			{Source: "clusters", Target: "alaska"},
			{Source: "clusters", Target: "csd3"},
		},
	}
	g.Reindex()
	return g
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	if err := validGraph().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsUnknownEndpoint(t *testing.T) {
	g := validGraph()
	g.Edges = append(g.Edges, Edge{Source: "alaska", Target: "ghost"})
	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for edge with unknown target")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the offending endpoint, got %q", err)
	}
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	g := validGraph()
	g.Nodes = append(g.Nodes, Node{Name: "alaska", Category: CategoryMinor})
	g.Reindex()
	if err := g.Validate(); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	g := validGraph()
	g.Nodes[1].Category = "cosmic"
	if err := g.Validate(); err == nil {
		t.Fatal("expected unknown category error")
	}
}

func TestValidateRejectsMissingName(t *testing.T) {
	g := validGraph()
	g.Nodes[2].Name = "  "
	if err := g.Validate(); err == nil {
		t.Fatal("expected missing name error")
	}
}

func TestValidateRejectsUnknownTimeseriesNode(t *testing.T) {
	g := validGraph()
	g.TimeseriesNode = "nope"
	if err := g.Validate(); err == nil {
		t.Fatal("expected unknown timeseries node error")
	}
}

func TestNodeIndexRoundTrip(t *testing.T) {
	g := validGraph()
	for i, n := range g.Nodes {
		if got := g.NodeIndex(n.Name); got != i {
			t.Errorf("NodeIndex(%q) = %d, want %d", n.Name, got, i)
		}
		if p := g.NodeByName(n.Name); p == nil || p.Index != i {
			t.Errorf("NodeByName(%q) pointed at wrong node", n.Name)
		}
	}
	if got := g.NodeIndex("missing"); got != -1 {
		t.Errorf("NodeIndex(missing) = %d, want -1", got)
	}
	if p := g.NodeByName("missing"); p != nil {
		t.Error("NodeByName(missing) should be nil")
	}
}

func TestEdgeEndpoints(t *testing.T) {
	g := validGraph()
	s, d := g.EdgeEndpoints(g.Edges[1])
	if s != 0 || d != 2 {
		t.Errorf("EdgeEndpoints = (%d, %d), want (0, 2)", s, d)
	}
}

func TestMajorCount(t *testing.T) {
	if got := validGraph().MajorCount(); got != 1 {
		t.Errorf("MajorCount = %d, want 1", got)
	}
}
