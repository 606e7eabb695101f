// Package layout computes node positions with a velocity Verlet force
// simulation: link springs, many-body charge and a centering force, cooled
// by an exponentially decaying alpha.
package layout

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
)

const (
	DefaultAlphaMin       = 0.001
	DefaultVelocityDecay  = 0.4
	DefaultLinkDistance   = 30.0
	DefaultChargeStrength = -30.0
	DefaultTheta          = 0.9

	// DragAlphaTarget keeps the simulation warm while a node is dragged.
	DragAlphaTarget = 0.3

	initialRadius = 10.0
)

var (
	// DefaultAlphaDecay cools alpha from 1 to alphaMin in 300 ticks.
	DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

	initialAngle = math.Pi * (3 - math.Sqrt(5))
)

// Config holds the tunable parameters of a simulation built for a graph.
type Config struct {
	Width, Height  float64
	LinkDistance   float64
	ChargeStrength float64
	Theta          float64
	VelocityDecay  float64
	Seed           uint64
	ExactCharge    bool
}

// DefaultConfig returns parameters for a 600x600 canvas.
func DefaultConfig() Config {
	return Config{
		Width:          600,
		Height:         600,
		LinkDistance:   DefaultLinkDistance,
		ChargeStrength: DefaultChargeStrength,
		Theta:          DefaultTheta,
		VelocityDecay:  DefaultVelocityDecay,
		Seed:           1,
	}
}

type namedForce struct {
	name  string
	force Force
}

// Simulation is not safe for concurrent use; callers serialize access
// (see Runner).
type Simulation struct {
	nodes []*model.Node

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	forces    []namedForce
	listeners []func()
	rng       *rand.Rand
	stopped   bool
	ticks     int
	wake      func()
}

// New returns a hot simulation over nodes with no forces. Unplaced nodes are
// laid out on a phyllotaxis spiral.
func New(nodes []*model.Node, seed uint64) *Simulation {
	s := &Simulation{
		nodes:         nodes,
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	s.initializeNodes()
	return s
}

// ForGraph resolves the graph's links and returns a simulation with the
// link, charge and center forces configured from cfg.
func ForGraph(g *model.Graph, cfg Config) (*Simulation, error) {
	if g == nil {
		return nil, errors.New("nil graph")
	}
	if err := g.Resolve(); err != nil {
		return nil, err
	}
	s := New(g.Nodes, cfg.Seed)
	if cfg.VelocityDecay > 0 {
		s.velocityDecay = 1 - cfg.VelocityDecay
	}

	link := NewLinkForce(g.Links)
	if cfg.LinkDistance > 0 {
		link.Distance = cfg.LinkDistance
	}
	charge := NewManyBodyForce()
	if cfg.ChargeStrength != 0 {
		charge.Strength = cfg.ChargeStrength
	}
	if cfg.Theta > 0 {
		charge.Theta = cfg.Theta
	}
	charge.Exact = cfg.ExactCharge

	s.AddForce("link", link)
	s.AddForce("charge", charge)
	s.AddForce("center", NewCenterForce(cfg.Width/2, cfg.Height/2))
	return s, nil
}

// SetGraph swaps in a new graph, keeping forces, listeners and any runner.
// Nodes that already carry a position keep it. The simulation is reheated.
func (s *Simulation) SetGraph(g *model.Graph) error {
	if err := g.Resolve(); err != nil {
		return err
	}
	s.nodes = g.Nodes
	s.initializeNodes()
	for _, nf := range s.forces {
		if lf, ok := nf.force.(*LinkForce); ok {
			lf.Links = g.Links
		}
		nf.force.Initialize(s.nodes, s.random)
	}
	s.Reheat()
	return nil
}

func (s *Simulation) initializeNodes() {
	for i, n := range s.nodes {
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X = r * math.Cos(a)
			n.Y = r * math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
}

func (s *Simulation) random() float64 {
	return s.rng.Float64()
}

// AddForce registers a force under name, replacing any force with that name.
func (s *Simulation) AddForce(name string, f Force) {
	f.Initialize(s.nodes, s.random)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Nodes returns the simulated nodes.
func (s *Simulation) Nodes() []*model.Node { return s.nodes }

// OnTick registers fn to run after every Step.
func (s *Simulation) OnTick(fn func()) {
	s.listeners = append(s.listeners, fn)
}

// Tick advances the simulation once without notifying listeners.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}
	for _, n := range s.nodes {
		if n.FX == nil {
			n.VX *= s.velocityDecay
			n.X += n.VX
		} else {
			n.X = *n.FX
			n.VX = 0
		}
		if n.FY == nil {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		} else {
			n.Y = *n.FY
			n.VY = 0
		}
	}
	s.ticks++
}

// Step runs one tick, notifies listeners, and stops the simulation once
// alpha falls below alphaMin. It reports whether the simulation is still
// running.
func (s *Simulation) Step() bool {
	stop := metrics.Timer(metrics.SimulationTick)
	s.Tick()
	stop()
	s.notify()
	if s.alpha < s.alphaMin {
		s.stopped = true
	}
	return !s.stopped
}

// Settle ticks until the simulation cools or maxTicks is reached, then
// notifies listeners once. It returns the number of ticks run.
func (s *Simulation) Settle(maxTicks int) int {
	n := 0
	for !s.stopped && n < maxTicks {
		s.Tick()
		n++
		if s.alpha < s.alphaMin {
			s.stopped = true
		}
	}
	s.notify()
	return n
}

func (s *Simulation) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current temperature.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the temperature alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget sets the temperature alpha decays toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Done reports whether alpha has dropped below alphaMin.
func (s *Simulation) Done() bool { return s.alpha < s.alphaMin }

// Running reports whether Step would advance the simulation.
func (s *Simulation) Running() bool { return !s.stopped }

// Stop halts the simulation until Restart.
func (s *Simulation) Stop() { s.stopped = true }

// Restart resumes a stopped simulation and wakes its runner, if any.
func (s *Simulation) Restart() {
	s.stopped = false
	if s.wake != nil {
		s.wake()
	}
}

// Reheat sets alpha back to 1 and restarts.
func (s *Simulation) Reheat() {
	s.alpha = 1
	s.Restart()
}

// Fix pins n at (x, y).
func (s *Simulation) Fix(n *model.Node, x, y float64) { n.Pin(x, y) }

// Unfix releases a pinned node.
func (s *Simulation) Unfix(n *model.Node) { n.Unpin() }

// Find returns the node closest to (x, y) within radius, or nil. A radius
// <= 0 means unbounded.
func (s *Simulation) Find(x, y, radius float64) *model.Node {
	best := math.Inf(1)
	if radius > 0 {
		best = radius * radius
	}
	var found *model.Node
	for _, n := range s.nodes {
		dx, dy := x-n.X, y-n.Y
		d2 := dx*dx + dy*dy
		if d2 < best {
			best = d2
			found = n
		}
	}
	return found
}
