// Package physics implements the force-directed layout: charge repulsion
// between every node pair, spring attraction along edges toward a
// per-category target length, velocity integration with damping, and soft
// clamping to the layout bounds. A Driver owns the repeating tick that
// advances the simulation.
package physics

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/hpc-uk/netview/pkg/model"
)

// Rect is the layout area. Positions are kept inside it (with a margin for
// the node radius) by a gentle pull rather than a hard wall.
type Rect struct {
	Width  float64
	Height float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() r2.Vec {
	return r2.Vec{X: r.Width / 2, Y: r.Height / 2}
}

// Params are fixed at simulation start.
type Params struct {
	// Charge is the repulsive strength; negative, as in the classic model.
	Charge float64
	// LinkDistance maps an edge category to its preferred length. Nil uses
	// DefaultLinkDistance.
	LinkDistance func(model.Category) float64
	// Bounds is the layout rectangle.
	Bounds Rect
	// Damping scales velocity each step; below 1.
	Damping float64
	// AlphaDecay controls cooling; AlphaMin is the convergence threshold.
	AlphaDecay float64
	AlphaMin   float64
	// MinSeparation floors the distance used for repulsion so coincident
	// nodes never produce an infinite or NaN force.
	MinSeparation float64
	// Spring is the attraction stiffness along edges.
	Spring float64
	// BoundMargin keeps node centers this far inside the bounds.
	BoundMargin float64
}

// DefaultLinkDistance gives major-major edges a shorter preferred length so
// the hub skeleton stays tight while member nodes spread out.
func DefaultLinkDistance(c model.Category) float64 {
	if c == model.CategoryMajor {
		return 60
	}
	return 100
}

// DefaultParams returns the tuning the viewer ships with.
func DefaultParams(bounds Rect) Params {
	return Params{
		Charge:        -180,
		LinkDistance:  DefaultLinkDistance,
		Bounds:        bounds,
		Damping:       0.85,
		AlphaDecay:    0.02,
		AlphaMin:      0.005,
		MinSeparation: 1.0,
		Spring:        0.08,
		BoundMargin:   10,
	}
}

// Simulation holds per-node position and velocity. It is safe for a Driver
// goroutine and the UI to share: every exported method takes the internal
// lock. Step order is deterministic for a given document and seed layout.
type Simulation struct {
	mu     sync.Mutex
	params Params
	g      *model.Graph

	pos    []r2.Vec
	vel    []r2.Vec
	pinned []bool
	alpha  float64
}

// New seeds a simulation for the document. Initial positions follow a
// phyllotaxis spiral around the bounds center, so even a document whose
// nodes would otherwise all start at the origin begins spread out and
// deterministic.
func New(g *model.Graph, params Params) *Simulation {
	if params.LinkDistance == nil {
		params.LinkDistance = DefaultLinkDistance
	}
	s := &Simulation{
		params: params,
		g:      g,
		pos:    make([]r2.Vec, len(g.Nodes)),
		vel:    make([]r2.Vec, len(g.Nodes)),
		pinned: make([]bool, len(g.Nodes)),
		alpha:  1,
	}
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	center := params.Bounds.Center()
	for i := range s.pos {
		radius := 12 * math.Sqrt(float64(i)+0.5)
		angle := goldenAngle * float64(i)
		s.pos[i] = r2.Vec{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	s.clampAllLocked()
	return s
}

// Alpha returns the current cooling value.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Converged reports whether the simulation has cooled below the threshold.
func (s *Simulation) Converged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha < s.params.AlphaMin
}

// Reheat restarts cooling, e.g. after the document changes on disk or a
// drag ends.
func (s *Simulation) Reheat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = 1
}

// Pin holds node i at the given position for the duration of a drag. The
// node still repels and attracts others but its own position is fixed.
func (s *Simulation) Pin(i int, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pos) {
		return
	}
	s.pinned[i] = true
	s.pos[i] = s.clamp(r2.Vec{X: x, Y: y})
	s.vel[i] = r2.Vec{}
}

// Unpin releases node i back into free simulation. Safe to call for a node
// that was never pinned; drag teardown calls it unconditionally.
func (s *Simulation) Unpin(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pinned) {
		return
	}
	s.pinned[i] = false
	s.alpha = math.Max(s.alpha, 0.3)
}

// Step advances the simulation once and reports whether it actually moved
// (false once converged). Forces scale with alpha, which decays every step.
func (s *Simulation) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alpha < s.params.AlphaMin {
		return false
	}

	n := len(s.pos)
	force := make([]r2.Vec, n)

	// Pairwise charge repulsion. The separation floor guards coincident
	// nodes; an exactly zero delta gets a deterministic index-based nudge.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := r2.Sub(s.pos[j], s.pos[i])
			dist := math.Hypot(d.X, d.Y)
			if dist == 0 {
				d = r2.Vec{X: 0.1 * float64(i-j), Y: 0.1}
				dist = math.Hypot(d.X, d.Y)
			}
			if dist < s.params.MinSeparation {
				dist = s.params.MinSeparation
			}
			mag := s.params.Charge * s.alpha / (dist * dist)
			push := r2.Scale(mag/dist, d)
			force[i] = r2.Add(force[i], push)
			force[j] = r2.Sub(force[j], push)
		}
	}

	// Spring attraction along edges toward the category target length.
	for _, e := range s.g.Edges {
		a, b := s.g.EdgeEndpoints(e)
		if a < 0 || b < 0 || a == b {
			continue
		}
		d := r2.Sub(s.pos[b], s.pos[a])
		dist := math.Hypot(d.X, d.Y)
		if dist < s.params.MinSeparation {
			dist = s.params.MinSeparation
		}
		target := s.params.LinkDistance(e.Category)
		mag := s.params.Spring * s.alpha * (dist - target)
		pull := r2.Scale(mag/dist, d)
		force[a] = r2.Add(force[a], pull)
		force[b] = r2.Sub(force[b], pull)
	}

	for i := 0; i < n; i++ {
		if s.pinned[i] {
			continue
		}
		s.vel[i] = r2.Scale(s.params.Damping, r2.Add(s.vel[i], force[i]))
		s.pos[i] = s.clamp(r2.Add(s.pos[i], s.vel[i]))
	}

	s.alpha *= 1 - s.params.AlphaDecay
	return true
}

// Sync writes the current positions into the document's nodes and returns a
// copy of them. It is the single point where simulation output becomes
// visible to the render layer, and it is idempotent between steps.
func (s *Simulation) Sync() []r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]r2.Vec, len(s.pos))
	copy(out, s.pos)
	for i := range s.pos {
		s.g.Nodes[i].X = s.pos[i].X
		s.g.Nodes[i].Y = s.pos[i].Y
	}
	return out
}

// RunToConvergence steps until the simulation cools, bounded by maxSteps.
// Used by headless snapshot export.
func (s *Simulation) RunToConvergence(maxSteps int) int {
	steps := 0
	for steps < maxSteps && s.Step() {
		steps++
	}
	return steps
}

func (s *Simulation) clamp(p r2.Vec) r2.Vec {
	m := s.params.BoundMargin
	maxX := s.params.Bounds.Width - m
	maxY := s.params.Bounds.Height - m
	if p.X < m {
		p.X = m
	} else if maxX > m && p.X > maxX {
		p.X = maxX
	}
	if p.Y < m {
		p.Y = m
	} else if maxY > m && p.Y > maxY {
		p.Y = maxY
	}
	return p
}

func (s *Simulation) clampAllLocked() {
	for i := range s.pos {
		s.pos[i] = s.clamp(s.pos[i])
	}
}
