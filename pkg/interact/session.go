package interact

import (
	"fmt"
	"sync"
	"time"

	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// Options configures a Session.
type Options struct {
	Layout  layout.Config
	Scene   scene.Options
	MatchBy MatchBy
}

// DefaultOptions returns a 600x600 session with label matching.
func DefaultOptions() Options {
	return Options{
		Layout:  layout.DefaultConfig(),
		Scene:   scene.DefaultOptions(),
		MatchBy: MatchLabel,
	}
}

// Session binds a graph, its simulation, its scene and the visual state.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	graph   *model.Graph
	sim     *layout.Simulation
	scene   *scene.Scene
	ctrl    *Controller
	reducer Reducer
	visual  Visual
	opts    Options
}

// NewSession resolves g and prepares it for simulation and display.
func NewSession(g *model.Graph, opts Options) (*Session, error) {
	sim, err := layout.ForGraph(g, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("prepare layout: %w", err)
	}
	s := &Session{
		graph:   g,
		sim:     sim,
		ctrl:    NewController(g, sim),
		reducer: Reducer{MatchBy: opts.MatchBy},
		opts:    opts,
	}
	s.scene = scene.Build(g, opts.Scene)
	s.visual = Initial(SceneView(s.scene))
	sim.OnTick(func() { s.scene.Update() })
	return s, nil
}

// Locker returns the mutex guarding the session, for layout.Runner.
func (s *Session) Locker() sync.Locker { return &s.mu }

// Runner returns a runner that ticks the session's simulation.
func (s *Session) Runner(interval time.Duration) *layout.Runner {
	return layout.NewRunner(s.sim, &s.mu, interval)
}

// Apply runs ev through the reducer and the drag controller, then copies
// the resulting visual state onto the scene.
func (s *Session) Apply(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer metrics.Timer(metrics.HoverReduce)()

	if id := ev.Node(); id != "" && s.graph.NodeByID(id) == nil {
		return fmt.Errorf("%s: %w: %q", ev.Kind(), ErrUnknownNode, id)
	}
	if err := s.ctrl.Handle(ev); err != nil {
		return err
	}
	s.visual = s.reducer.Reduce(s.visual, ev, SceneView(s.scene))
	s.applyVisual()
	debug.Log("interact: %s %s", ev.Kind(), ev.Node())
	return nil
}

func (s *Session) applyVisual() {
	for i, v := range s.scene.Nodes {
		v.Opacity = s.visual.NodeOpacity[i]
		v.LabelVisible = s.visual.LabelVisible[i]
	}
	for i, v := range s.scene.Links {
		v.Opacity = s.visual.LinkOpacity[i]
	}
}

// Reload swaps in a freshly loaded graph. Nodes whose ids survive keep
// their positions; hover and drags are cleared, the view transform is kept.
func (s *Session) Reload(g *model.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.CarryPositions(s.graph)
	if err := s.sim.SetGraph(g); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	transform := s.visual.Transform
	s.graph = g
	s.ctrl = NewController(g, s.sim)
	s.sim.SetAlphaTarget(0)
	s.scene = scene.Build(g, s.opts.Scene)
	s.visual = Initial(SceneView(s.scene))
	s.visual.Transform = transform
	debug.Log("interact: reloaded %d nodes, %d links", len(g.Nodes), len(g.Links))
	return nil
}

// Step advances the simulation once if it is running.
func (s *Session) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sim.Running() {
		return false
	}
	return s.sim.Step()
}

// Settle runs the simulation to rest, at most maxTicks ticks.
func (s *Session) Settle(maxTicks int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Settle(maxTicks)
}

// Reheat restarts a cooled simulation at full temperature.
func (s *Session) Reheat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Reheat()
}

// Running reports whether the simulation is still moving.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Running()
}

// View calls fn with the scene and visual state under the session lock.
// fn must not retain either.
func (s *Session) View(fn func(sc *scene.Scene, v Visual)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.scene, s.visual)
}

// Visual returns the current visual state.
func (s *Session) Visual() Visual {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visual.clone()
}

// Graph returns the current graph. Callers must not mutate it without
// holding Locker.
func (s *Session) Graph() *model.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// NodeByLabel returns the id of the first node with label, or "".
func (s *Session) NodeByLabel(label string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.graph.Nodes {
		if n.Label == label {
			return n.ID
		}
	}
	return ""
}

// Neighbors returns the ids linked to node id under the session's match rule.
func (s *Session) Neighbors(id string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.NodeByID(id)
	if n == nil {
		return nil
	}
	return s.reducer.Neighbors(n, SceneView(s.scene))
}
