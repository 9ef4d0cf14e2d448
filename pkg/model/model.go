// Package model defines the benchmark network document: the nodes and edges
// loaded once at startup and read by every other package. Only two fields are
// mutable after load: Node.Focused (owned by the UI) and Node.X/Y (owned by
// the physics simulation).
package model

import (
	"fmt"
	"strings"
)

// Category classifies a node or edge. Major nodes are the config-level hubs
// (clusters, apps, compilers, mpi); minor nodes are their concrete members.
type Category string

const (
	CategoryMajor Category = "major"
	CategoryMinor Category = "minor"
)

// Known returns whether the category is one the viewer understands. Unknown
// categories are a load-time validation error rather than a silent default.
func (c Category) Known() bool {
	return c == CategoryMajor || c == CategoryMinor
}

// Node is a single entity in the network document. Index is its position in
// the document's node list and is the key used by the adjacency index and the
// simulation; it never changes after load.
type Node struct {
	Index       int      `json:"-"`
	Name        string   `json:"id"`
	Category    Category `json:"type"`
	Color       string   `json:"colour"`
	Degree      int      `json:"degree"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`

	// Focused is owned exclusively by the interaction layer.
	Focused bool `json:"-"`

	// X, Y are owned exclusively by the physics simulation and are
	// meaningless before the first step.
	X, Y float64 `json:"-"`
}

// Validate checks the fields that must be present in a well-formed document.
func (n Node) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("node %d: missing name", n.Index)
	}
	if !n.Category.Known() {
		return fmt.Errorf("node %q: unknown category %q", n.Name, n.Category)
	}
	if n.Degree < 0 {
		return fmt.Errorf("node %q: negative degree %d", n.Name, n.Degree)
	}
	return nil
}

// Edge links two nodes by name. Source/target are asymmetric fields in the
// document but the link is undirected for highlighting purposes.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Category Category `json:"type,omitempty"`
}

// Graph is the immutable-at-load network document. Node order is insertion
// order from the document and backs the index-based adjacency keys.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"links"`

	// TimeseriesNode names the node that opens the time-series panel on
	// hover. Empty means no node has that role.
	TimeseriesNode string `json:"timeseries_node,omitempty"`

	byName map[string]int
}

// Reindex rebuilds the name lookup and per-node indices. Loaders call it once
// after decoding; it must be called again if Nodes is ever reordered (nothing
// in the viewer does).
func (g *Graph) Reindex() {
	g.byName = make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		g.Nodes[i].Index = i
		g.byName[g.Nodes[i].Name] = i
	}
}

// NodeIndex returns the index for a node name, or -1.
func (g *Graph) NodeIndex(name string) int {
	if i, ok := g.byName[name]; ok {
		return i
	}
	return -1
}

// NodeByName returns a pointer into the node slice, or nil.
func (g *Graph) NodeByName(name string) *Node {
	i := g.NodeIndex(name)
	if i < 0 {
		return nil
	}
	return &g.Nodes[i]
}

// EdgeEndpoints resolves an edge to node indices. Valid only after Reindex
// and a successful Validate.
func (g *Graph) EdgeEndpoints(e Edge) (int, int) {
	return g.NodeIndex(e.Source), g.NodeIndex(e.Target)
}

// Validate checks the whole document: every node valid, names unique, every
// edge endpoint resolvable. A failure here is fatal to startup.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("document has no nodes")
	}
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = struct{}{}
	}
	for i, e := range g.Edges {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge %d: unknown source %q", i, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge %d: unknown target %q", i, e.Target)
		}
	}
	if g.TimeseriesNode != "" {
		if _, ok := seen[g.TimeseriesNode]; !ok {
			return fmt.Errorf("timeseries node %q not in document", g.TimeseriesNode)
		}
	}
	return nil
}

// MajorCount returns how many nodes carry the major category.
func (g *Graph) MajorCount() int {
	count := 0
	for _, n := range g.Nodes {
		if n.Category == CategoryMajor {
			count++
		}
	}
	return count
}
