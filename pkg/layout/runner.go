package layout

import (
	"context"
	"sync"
	"time"

	"github.com/vanderheijden86/cooc/pkg/debug"
)

// DefaultInterval is roughly one animation frame.
const DefaultInterval = 16 * time.Millisecond

// Runner steps a simulation on a ticker until it cools, then idles until
// Restart wakes it. Every step holds mu so the owner can mutate the graph
// between ticks.
type Runner struct {
	sim      *Simulation
	mu       sync.Locker
	interval time.Duration
	wake     chan struct{}

	// OnStep, if set, is called with the lock held after each step.
	OnStep func(d time.Duration, alpha float64)
}

// NewRunner binds a runner to sim. mu guards sim and everything its tick
// listeners touch. A zero interval uses DefaultInterval.
func NewRunner(sim *Simulation, mu sync.Locker, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Runner{
		sim:      sim,
		mu:       mu,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
	mu.Lock()
	sim.wake = r.Wake
	mu.Unlock()
	return r
}

// Wake signals the runner that the simulation may be running again.
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		r.mu.Lock()
		running := r.sim.Running()
		if running {
			start := time.Now()
			running = r.sim.Step()
			if r.OnStep != nil {
				r.OnStep(time.Since(start), r.sim.Alpha())
			}
		}
		r.mu.Unlock()

		if running {
			continue
		}

		debug.Log("layout: simulation cooled after %d ticks", r.sim.Ticks())
		ticker.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
		ticker.Reset(r.interval)
	}
}
