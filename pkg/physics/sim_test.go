package physics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/hpc-uk/netview/pkg/model"
)

func simGraph() *model.Graph {
	g := &model.Graph{
		Nodes: []model.Node{
			{Name: "clusters", Category: model.CategoryMajor},
			{Name: "apps", Category: model.CategoryMajor},
			{Name: "alaska", Category: model.CategoryMinor},
			{Name: "gromacs", Category: model.CategoryMinor},
			{Name: "loner", Category: model.CategoryMinor},
		},
		Edges: []model.Edge{
			{Source: "clusters", Target: "apps", Category: model.CategoryMajor},
			{Source: "clusters", Target: "alaska"},
			{Source: "apps", Target: "gromacs"},
		},
	}
	g.Reindex()
	return g
}

func testBounds() Rect { return Rect{Width: 400, Height: 300} }

func TestCoincidentNodesSeparate(t *testing.T) {
	g := simGraph()
	sim := New(g, DefaultParams(testBounds()))

	// Force every node onto the same point before stepping.
	for i := range sim.pos {
		sim.pos[i] = testBounds().Center()
	}

	if !sim.Step() {
		t.Fatal("first step reported converged")
	}
	pos := sim.Sync()
	for i, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("node %d has NaN position after step: %+v", i, p)
		}
	}
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			if pos[i] == pos[j] {
				t.Errorf("nodes %d and %d still coincident after one step", i, j)
			}
		}
	}
}

func TestPositionsStayInBounds(t *testing.T) {
	g := simGraph()
	bounds := testBounds()
	sim := New(g, DefaultParams(bounds))
	sim.RunToConvergence(2000)
	for i, p := range sim.Sync() {
		if p.X < 0 || p.X > bounds.Width || p.Y < 0 || p.Y > bounds.Height {
			t.Errorf("node %d escaped bounds: %+v", i, p)
		}
	}
}

func TestConvergence(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	steps := sim.RunToConvergence(5000)
	if steps == 0 || steps == 5000 {
		t.Fatalf("expected convergence within budget, took %d steps", steps)
	}
	if !sim.Converged() {
		t.Error("Converged() = false after RunToConvergence")
	}
	if sim.Step() {
		t.Error("Step() should be a no-op once converged")
	}
}

func TestReheatAfterConvergence(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	sim.RunToConvergence(5000)
	sim.Reheat()
	if sim.Converged() {
		t.Error("Converged() = true immediately after Reheat")
	}
	if !sim.Step() {
		t.Error("Step() should move again after Reheat")
	}
}

func TestPinHoldsPosition(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	sim.Pin(2, 150, 120)
	for i := 0; i < 50; i++ {
		sim.Step()
	}
	pos := sim.Sync()
	if pos[2].X != 150 || pos[2].Y != 120 {
		t.Errorf("pinned node moved to %+v", pos[2])
	}

	sim.Unpin(2)
	for i := 0; i < 50; i++ {
		sim.Step()
	}
	pos = sim.Sync()
	if pos[2].X == 150 && pos[2].Y == 120 {
		t.Error("unpinned node never moved")
	}
}

func TestUnpinNeverPinnedIsSafe(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	sim.Unpin(4)
	sim.Unpin(-1)
	sim.Unpin(99)
}

func TestSyncWritesNodePositions(t *testing.T) {
	g := simGraph()
	sim := New(g, DefaultParams(testBounds()))
	sim.Step()
	pos := sim.Sync()
	for i := range g.Nodes {
		if g.Nodes[i].X != pos[i].X || g.Nodes[i].Y != pos[i].Y {
			t.Errorf("node %d document position not synced", i)
		}
	}
	// Idempotent: a second Sync with no intervening step changes nothing.
	again := sim.Sync()
	for i := range pos {
		if pos[i] != again[i] {
			t.Errorf("Sync not idempotent at node %d", i)
		}
	}
}

// Whatever the graph shape, stepping never produces NaN and never leaves the
// layout rectangle.
func TestStepNeverDegeneratesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 20).Draw(t, "nodes")
		g := &model.Graph{}
		for i := 0; i < n; i++ {
			cat := model.CategoryMinor
			if rapid.Bool().Draw(t, "major") {
				cat = model.CategoryMajor
			}
			g.Nodes = append(g.Nodes, model.Node{Name: fmt.Sprintf("n%d", i), Category: cat})
		}
		for e := rapid.IntRange(0, 40).Draw(t, "edges"); e > 0; e-- {
			g.Edges = append(g.Edges, model.Edge{
				Source: fmt.Sprintf("n%d", rapid.IntRange(0, n-1).Draw(t, "s")),
				Target: fmt.Sprintf("n%d", rapid.IntRange(0, n-1).Draw(t, "d")),
			})
		}
		g.Reindex()

		bounds := Rect{Width: 320, Height: 240}
		sim := New(g, DefaultParams(bounds))
		for i := 0; i < 100; i++ {
			sim.Step()
		}
		for i, p := range sim.Sync() {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				t.Fatalf("node %d NaN position", i)
			}
			if p.X < 0 || p.X > bounds.Width || p.Y < 0 || p.Y > bounds.Height {
				t.Fatalf("node %d out of bounds: %+v", i, p)
			}
		}
	})
}

func TestDriverStartStop(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	d := NewDriver(sim, time.Millisecond)

	stepped := make(chan struct{}, 1)
	d.OnStep(func() {
		select {
		case stepped <- struct{}{}:
		default:
		}
	})

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}

	select {
	case <-stepped:
	case <-time.After(2 * time.Second):
		t.Fatal("driver never stepped")
	}

	d.Stop()
	d.Stop() // idempotent
}

func TestDriverStopBeforeStart(t *testing.T) {
	d := NewDriver(New(simGraph(), DefaultParams(testBounds())), 0)
	d.Stop()
}

func TestDriverStopReturnsWhileCallbackBlocked(t *testing.T) {
	sim := New(simGraph(), DefaultParams(testBounds()))
	d := NewDriver(sim, time.Millisecond)

	// Callback that hands off on an unbuffered channel, the way a UI loop
	// consumes step notifications. After the first handoff nobody drains,
	// so the next invocation blocks inside the callback.
	handoff := make(chan struct{})
	d.OnStep(func() { handoff <- struct{}{} })

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-handoff:
	case <-time.After(2 * time.Second):
		t.Fatal("driver never stepped")
	}

	// Let the driver tick again and wedge in the callback, then stop from
	// the consumer's side without ever draining the handoff.
	time.Sleep(10 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on the in-flight callback")
	}

	// Release the wedged callback so the forwarder can exit.
	select {
	case <-handoff:
	default:
	}
}
