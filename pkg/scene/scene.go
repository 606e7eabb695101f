// Package scene projects a simulated graph onto drawable views: one circle
// and label per node, one line per link.
package scene

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scale"
)

const (
	ColorByLouvain = "louvain"
	ColorByFstgrdy = "fstgrdy"

	// DefaultLabelThreshold is the radius above which labels start hidden.
	DefaultLabelThreshold = 2.0

	// LinkOpacity is the resting stroke opacity of every link.
	LinkOpacity = 0.6
)

// Options configures a scene build.
type Options struct {
	Width, Height  float64
	RadiusMin      float64
	RadiusMax      float64
	LabelThreshold float64
	ColorBy        string
}

// DefaultOptions returns a 600x600 canvas with radii in [2, 20].
func DefaultOptions() Options {
	return Options{
		Width:          600,
		Height:         600,
		RadiusMin:      2,
		RadiusMax:      20,
		LabelThreshold: DefaultLabelThreshold,
		ColorBy:        ColorByLouvain,
	}
}

// Validate reports option values the renderer cannot use.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.RadiusMin < 0 || o.RadiusMax < o.RadiusMin {
		return fmt.Errorf("invalid radius range [%v, %v]", o.RadiusMin, o.RadiusMax)
	}
	switch o.ColorBy {
	case "", ColorByLouvain, ColorByFstgrdy:
	default:
		return fmt.Errorf("unknown color_by %q (want %s or %s)", o.ColorBy, ColorByLouvain, ColorByFstgrdy)
	}
	return nil
}

// NodeView is the drawable state of one node.
type NodeView struct {
	ID           string
	Label        string
	R            float64
	Fill         string
	Opacity      float64
	LabelVisible bool
	X, Y         float64

	node *model.Node
}

// Node returns the underlying graph node.
func (v *NodeView) Node() *model.Node { return v.node }

// LinkView is the drawable state of one link.
type LinkView struct {
	SourceID, TargetID string
	X1, Y1, X2, Y2     float64
	Opacity            float64

	link *model.Link
}

// Link returns the underlying graph link.
func (v *LinkView) Link() *model.Link { return v.link }

// Scene holds one view per node and link plus the scales used to build
// them. Scales are computed once per build.
type Scene struct {
	Width, Height float64
	Nodes         []*NodeView
	Links         []*LinkView

	Radius scale.Linear
	Color  scale.Sequential

	opts  Options
	graph *model.Graph
	byID  map[string]*NodeView
}

// Build creates the views for g. Links should already be resolved; the
// endpoints of unresolved links stay at the origin.
func Build(g *model.Graph, opts Options) *Scene {
	defer metrics.Timer(metrics.SceneUpdate)()
	if opts.ColorBy == "" {
		opts.ColorBy = ColorByLouvain
	}
	if opts.LabelThreshold == 0 {
		opts.LabelThreshold = DefaultLabelThreshold
	}

	s := &Scene{
		Width:  opts.Width,
		Height: opts.Height,
		opts:   opts,
		graph:  g,
		byID:   make(map[string]*NodeView, len(g.Nodes)),
	}

	_, maxBW, _ := g.CountRange(func(n *model.Node) model.Count { return n.BWCount })
	s.Radius = scale.NewLinear(0, float64(maxBW), opts.RadiusMin, opts.RadiusMax).Clamped()

	lo, hi, ok := g.CountRange(s.communityOf)
	if !ok {
		s.Color = scale.NewSequential(math.NaN(), math.NaN(), nil)
	} else {
		s.Color = scale.NewSequential(float64(lo), float64(hi), nil)
	}

	s.Nodes = make([]*NodeView, len(g.Nodes))
	for i, n := range g.Nodes {
		r := s.Radius.Scale(n.BWCount.Float())
		v := &NodeView{
			ID:           n.ID,
			Label:        n.Label,
			R:            r,
			Fill:         s.Color.Hex(s.communityOf(n).Float()),
			Opacity:      1,
			LabelVisible: s.LabelVisibleFor(r),
			node:         n,
		}
		s.Nodes[i] = v
		s.byID[n.ID] = v
	}

	s.Links = make([]*LinkView, len(g.Links))
	for i, l := range g.Links {
		s.Links[i] = &LinkView{
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Opacity:  LinkOpacity,
			link:     l,
		}
	}

	s.Update()
	return s
}

func (s *Scene) communityOf(n *model.Node) model.Count {
	if s.opts.ColorBy == ColorByFstgrdy {
		return n.Fstgrdy
	}
	return n.Louvain
}

// Graph returns the graph the scene was built from.
func (s *Scene) Graph() *model.Graph { return s.graph }

// Options returns the options the scene was built with.
func (s *Scene) Options() Options { return s.opts }

// NodeView returns the view for id, or nil.
func (s *Scene) NodeView(id string) *NodeView { return s.byID[id] }

// Update copies simulated positions into the views. Node views are clamped
// so the whole circle stays on the canvas; link endpoints follow the raw
// node coordinates.
func (s *Scene) Update() {
	for _, v := range s.Nodes {
		v.X = clamp(v.node.X, v.R, s.Width-v.R)
		v.Y = clamp(v.node.Y, v.R, s.Height-v.R)
	}
	for _, v := range s.Links {
		if !v.link.Resolved() {
			continue
		}
		v.X1, v.Y1 = v.link.Source.X, v.link.Source.Y
		v.X2, v.Y2 = v.link.Target.X, v.link.Target.Y
	}
}

// LabelVisibleFor applies the label heuristic with the scene's threshold.
func (s *Scene) LabelVisibleFor(r float64) bool {
	return !(r > s.opts.LabelThreshold)
}

// ResetStyles restores resting opacities and heuristic label visibility.
func (s *Scene) ResetStyles() {
	for _, v := range s.Nodes {
		v.Opacity = 1
		v.LabelVisible = s.LabelVisibleFor(v.R)
	}
	for _, v := range s.Links {
		v.Opacity = LinkOpacity
	}
}

// DefaultLabelVisible hides labels of nodes with radius above
// DefaultLabelThreshold. NaN radii keep their label.
func DefaultLabelVisible(r float64) bool {
	return !(r > DefaultLabelThreshold)
}

// clamp is max(lo, min(hi, x)); NaN in any argument yields NaN.
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
