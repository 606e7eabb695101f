// Package interact turns hover, drag and zoom events into visual state
// and simulation side effects.
package interact

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// Opacities used while a node is hovered.
const (
	DimOpacity    = 0.1
	RestOpacity   = 1.0
	ActiveOpacity = 1.0
)

// MatchBy selects how hovered nodes are compared with link endpoints.
type MatchBy string

const (
	// MatchLabel compares labels. Distinct nodes sharing a label are
	// treated as one.
	MatchLabel MatchBy = "label"
	// MatchID compares node ids.
	MatchID MatchBy = "id"
)

// ParseMatchBy validates a config value; "" means MatchLabel.
func ParseMatchBy(s string) (MatchBy, error) {
	switch MatchBy(s) {
	case "", MatchLabel:
		return MatchLabel, nil
	case MatchID:
		return MatchID, nil
	default:
		return "", fmt.Errorf("unknown match_by %q (want label or id)", s)
	}
}

// GraphView is what the reducer needs to know about the drawn graph.
type GraphView interface {
	Nodes() []*model.Node
	Links() []*model.Link
	// RestLabel reports whether node i shows its label when nothing is hovered.
	RestLabel(i int) bool
}

type sceneView struct{ s *scene.Scene }

// SceneView adapts a scene for the reducer.
func SceneView(s *scene.Scene) GraphView { return sceneView{s} }

func (v sceneView) Nodes() []*model.Node { return v.s.Graph().Nodes }
func (v sceneView) Links() []*model.Link { return v.s.Graph().Links }
func (v sceneView) RestLabel(i int) bool {
	return v.s.LabelVisibleFor(v.s.Nodes[i].R)
}

// Visual is a snapshot of every attribute interaction can change. Values
// are never mutated in place; Reduce returns fresh slices.
type Visual struct {
	NodeOpacity  []float64
	LabelVisible []bool
	LinkOpacity  []float64
	Hovered      string
	Dragging     []string
	Transform    scene.Transform
}

// Initial returns the resting visual state of g.
func Initial(g GraphView) Visual {
	nodes, links := g.Nodes(), g.Links()
	v := Visual{
		NodeOpacity:  make([]float64, len(nodes)),
		LabelVisible: make([]bool, len(nodes)),
		LinkOpacity:  make([]float64, len(links)),
		Transform:    scene.Identity,
	}
	resetStyles(&v, g)
	return v
}

func resetStyles(v *Visual, g GraphView) {
	for i := range v.NodeOpacity {
		v.NodeOpacity[i] = RestOpacity
		v.LabelVisible[i] = g.RestLabel(i)
	}
	for i := range v.LinkOpacity {
		v.LinkOpacity[i] = scene.LinkOpacity
	}
}

func (v Visual) clone() Visual {
	v.NodeOpacity = slices.Clone(v.NodeOpacity)
	v.LabelVisible = slices.Clone(v.LabelVisible)
	v.LinkOpacity = slices.Clone(v.LinkOpacity)
	v.Dragging = slices.Clone(v.Dragging)
	return v
}

// Reducer applies events to visual state.
type Reducer struct {
	MatchBy MatchBy
}

// Reduce applies ev with label matching.
func Reduce(v Visual, ev Event, g GraphView) Visual {
	return Reducer{MatchBy: MatchLabel}.Reduce(v, ev, g)
}

// Reduce returns the visual state after ev. It has no side effects; events
// naming unknown nodes leave v unchanged.
func (r Reducer) Reduce(v Visual, ev Event, g GraphView) Visual {
	switch e := ev.(type) {
	case HoverEnter:
		n := findNode(g, e.NodeID)
		if n == nil {
			return v
		}
		return r.hover(v, n, g)
	case HoverLeave:
		next := v.clone()
		resetStyles(&next, g)
		next.Hovered = ""
		return next
	case DragStart:
		if findNode(g, e.NodeID) == nil || slices.Contains(v.Dragging, e.NodeID) {
			return v
		}
		next := v.clone()
		next.Dragging = append(next.Dragging, e.NodeID)
		return next
	case DragEnd:
		i := slices.Index(v.Dragging, e.NodeID)
		if i < 0 {
			return v
		}
		next := v.clone()
		next.Dragging = slices.Delete(next.Dragging, i, i+1)
		return next
	case DragMove:
		return v
	case Zoom:
		next := v.clone()
		next.Transform = v.Transform.ScaleBy(e.Factor, e.CX, e.CY)
		return next
	case Pan:
		next := v.clone()
		next.Transform = v.Transform.Translate(e.DX, e.DY)
		return next
	case ZoomTo:
		next := v.clone()
		t := e.Transform
		t.K = scene.ClampZoom(t.K)
		next.Transform = t
		return next
	default:
		return v
	}
}

func (r Reducer) matcher(hovered *model.Node) func(*model.Node) bool {
	if r.MatchBy == MatchID {
		return func(n *model.Node) bool { return n.ID == hovered.ID }
	}
	return func(n *model.Node) bool { return n.Label == hovered.Label }
}

// Neighbors returns the ids of nodes opposite a matching endpoint on any
// link. It scans every link.
func (r Reducer) Neighbors(hovered *model.Node, g GraphView) map[string]bool {
	match := r.matcher(hovered)
	out := make(map[string]bool)
	for _, l := range g.Links() {
		if !l.Resolved() {
			continue
		}
		if match(l.Source) {
			out[l.Target.ID] = true
		}
		if match(l.Target) {
			out[l.Source.ID] = true
		}
	}
	return out
}

func (r Reducer) hover(v Visual, hovered *model.Node, g GraphView) Visual {
	next := v.clone()
	match := r.matcher(hovered)
	neighbors := r.Neighbors(hovered, g)

	for i, l := range g.Links() {
		if l.Resolved() && l.Touches(match) {
			next.LinkOpacity[i] = scene.LinkOpacity
		} else {
			next.LinkOpacity[i] = DimOpacity
		}
	}
	for i, n := range g.Nodes() {
		if neighbors[n.ID] {
			next.LabelVisible[i] = true
			continue
		}
		next.NodeOpacity[i] = DimOpacity
		next.LabelVisible[i] = false
	}
	next.NodeOpacity[hovered.Index] = ActiveOpacity
	next.LabelVisible[hovered.Index] = true
	next.Hovered = hovered.ID
	return next
}

func findNode(g GraphView, id string) *model.Node {
	for _, n := range g.Nodes() {
		if n.ID == id {
			return n
		}
	}
	return nil
}
