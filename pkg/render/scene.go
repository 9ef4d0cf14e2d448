// Package render maintains one visual primitive per node and per edge and
// projects simulation output onto them every tick. It owns the opacity and
// stroke rules for neighborhood highlighting; the interaction layer decides
// which node is focused, this package decides what that looks like.
package render

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/hpc-uk/netview/pkg/analysis"
	"github.com/hpc-uk/netview/pkg/model"
)

// Highlight opacities from the report page's visual language.
const (
	OpacityFocused = 1.0
	OpacityLinked  = 0.8
	OpacityDimmed  = 0.3

	// RestingOpacityMinor is the resting opacity for minor nodes; every
	// other node rests at full opacity.
	RestingOpacityMinor = 0.7

	restingEdgeOpacity = 0.6
)

// NoFocus marks the absence of a focused node in highlight calls.
const NoFocus = -1

// Config fixes the visual mapping at scene construction. Explicit rather
// than captured from surrounding scope so a scene can be rebuilt or tested
// in isolation.
type Config struct {
	RadiusMajor      float64
	RadiusTimeseries float64
	RadiusMinor      float64
	EdgeWidth        float64
	EdgeWidthFocused float64
}

// DefaultConfig returns the sizes the viewer ships with.
func DefaultConfig() Config {
	return Config{
		RadiusMajor:      14,
		RadiusTimeseries: 18,
		RadiusMinor:      7,
		EdgeWidth:        1,
		EdgeWidthFocused: 2,
	}
}

// NodePrim is the circle drawn for one node.
type NodePrim struct {
	X, Y    float64
	Radius  float64
	Fill    string
	Opacity float64
	Focused bool
}

// EdgePrim is the line segment drawn for one edge.
type EdgePrim struct {
	X1, Y1  float64
	X2, Y2  float64
	Width   float64
	Opacity float64

	source, target int
}

// Scene binds primitives one-to-one to the document's entities.
type Scene struct {
	cfg   Config
	graph *model.Graph

	Nodes []NodePrim
	Edges []EdgePrim
}

// NewScene builds the primitives for a validated document. Radii and resting
// opacities are applied here; positions stay zero until the first Sync.
func NewScene(g *model.Graph, cfg Config) *Scene {
	s := &Scene{
		cfg:   cfg,
		graph: g,
		Nodes: make([]NodePrim, len(g.Nodes)),
		Edges: make([]EdgePrim, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		s.Nodes[i] = NodePrim{
			Radius:  cfg.radiusFor(g, n),
			Fill:    n.Color,
			Opacity: restingOpacity(n.Category),
		}
	}
	for i, e := range g.Edges {
		src, dst := g.EdgeEndpoints(e)
		s.Edges[i] = EdgePrim{
			Width:   cfg.EdgeWidth,
			Opacity: restingEdgeOpacity,
			source:  src,
			target:  dst,
		}
	}
	return s
}

func (c Config) radiusFor(g *model.Graph, n model.Node) float64 {
	switch {
	case n.Name == g.TimeseriesNode && g.TimeseriesNode != "":
		return c.RadiusTimeseries
	case n.Category == model.CategoryMajor:
		return c.RadiusMajor
	default:
		return c.RadiusMinor
	}
}

func restingOpacity(c model.Category) float64 {
	if c == model.CategoryMinor {
		return RestingOpacityMinor
	}
	return 1.0
}

// Sync projects the current simulation positions onto every primitive. Pure
// projection: calling it twice with the same positions is a no-op.
func (s *Scene) Sync(pos []r2.Vec) {
	for i := range s.Nodes {
		s.Nodes[i].X = pos[i].X
		s.Nodes[i].Y = pos[i].Y
	}
	for i := range s.Edges {
		e := &s.Edges[i]
		e.X1, e.Y1 = pos[e.source].X, pos[e.source].Y
		e.X2, e.Y2 = pos[e.target].X, pos[e.target].Y
	}
}

// ApplyHighlight styles every primitive for the given focused node. Major
// nodes are hubs whose neighbor sets are too large to usefully emphasize, so
// focusing one dims everything else instead of raising its neighbors.
func (s *Scene) ApplyHighlight(focus int, adj *analysis.Adjacency) {
	if focus == NoFocus {
		s.ResetHighlight()
		return
	}
	suppressNeighbors := s.graph.Nodes[focus].Category == model.CategoryMajor
	for i := range s.Nodes {
		n := &s.Nodes[i]
		n.Focused = i == focus
		switch {
		case i == focus:
			n.Opacity = OpacityFocused
		case !suppressNeighbors && adj.Linked(focus, i):
			n.Opacity = OpacityLinked
		default:
			n.Opacity = OpacityDimmed
		}
	}
	for i := range s.Edges {
		e := &s.Edges[i]
		if e.source == focus || e.target == focus {
			e.Opacity = OpacityFocused
			e.Width = s.cfg.EdgeWidthFocused
		} else {
			e.Opacity = OpacityDimmed
			e.Width = s.cfg.EdgeWidth
		}
	}
}

// ResetHighlight restores every primitive to its resting style.
func (s *Scene) ResetHighlight() {
	for i := range s.Nodes {
		s.Nodes[i].Focused = false
		s.Nodes[i].Opacity = restingOpacity(s.graph.Nodes[i].Category)
	}
	for i := range s.Edges {
		s.Edges[i].Opacity = restingEdgeOpacity
		s.Edges[i].Width = s.cfg.EdgeWidth
	}
}
