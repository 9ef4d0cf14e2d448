package physics

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTickInterval is the cadence of the layout loop. 30ms keeps the
// animation smooth without saturating slow terminals.
const DefaultTickInterval = 30 * time.Millisecond

// ErrAlreadyStarted is returned by Start when the driver is already running.
var ErrAlreadyStarted = errors.New("driver already started")

// Driver owns the repeating tick that advances a Simulation. The tick loop
// never runs the on-step callback itself: it publishes into a one-slot
// coalescing channel and a forwarder goroutine invokes the callback. That
// keeps Stop deterministic even when the callback blocks in the caller
// (e.g. posting to a UI loop whose own goroutine is the one calling Stop):
// Stop only waits for the tick loop, which cannot block. After Stop returns
// no new step is dispatched; a callback already in flight may still
// complete. One callback is supported; the UI registers it before Start.
type Driver struct {
	sim      *Simulation
	interval time.Duration

	mu      sync.Mutex
	onStep  func()
	cancel  context.CancelFunc
	done    chan struct{}
	steps   chan struct{}
	started bool
}

// NewDriver creates a driver for the simulation. A non-positive interval
// uses DefaultTickInterval.
func NewDriver(sim *Simulation, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Driver{sim: sim, interval: interval}
}

// OnStep registers the callback invoked after steps that moved the
// simulation. It runs on the driver's forwarder goroutine, so it should
// only hand off (e.g. post a message to the UI loop), not render. Steps
// are coalesced: a slow callback sees one notification for a burst of
// ticks, not a backlog.
func (d *Driver) OnStep(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onStep = fn
}

// Start begins ticking. The driver keeps ticking after convergence so that
// a Reheat (document change, drag release) resumes animation without a
// restart; converged ticks are cheap no-ops.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.steps = make(chan struct{}, 1)
	d.started = true

	go d.run(ctx, d.steps)
	go d.forward(ctx, d.steps)
	return nil
}

func (d *Driver) run(ctx context.Context, steps chan<- struct{}) {
	defer close(d.done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.sim.Step() {
				continue
			}
			// Coalescing publish; never blocks the tick loop.
			select {
			case steps <- struct{}{}:
			default:
			}
		}
	}
}

func (d *Driver) forward(ctx context.Context, steps <-chan struct{}) {
	for range steps {
		if ctx.Err() != nil {
			return
		}
		d.mu.Lock()
		fn := d.onStep
		d.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
}

// Stop cancels the tick loop and waits for it to exit, then closes the step
// channel so the forwarder winds down on its own. Stop never waits on the
// forwarder, so a callback blocked in the caller cannot deadlock it.
// Idempotent; safe to call on a driver that never started.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	cancel, done, steps := d.cancel, d.done, d.steps
	d.started = false
	d.mu.Unlock()

	cancel()
	<-done
	close(steps)
}
