package interact

import (
	"fmt"

	"github.com/vanderheijden86/cooc/pkg/scene"
)

// Event is a user interaction.
type Event interface {
	Kind() string
	// Node returns the node the event targets, or "" for view events.
	Node() string
}

type HoverEnter struct{ NodeID string }
type HoverLeave struct{ NodeID string }
type DragStart struct{ NodeID string }
type DragEnd struct{ NodeID string }

// DragMove moves the dragged node to (X, Y) in scene coordinates.
type DragMove struct {
	NodeID string
	X, Y   float64
}

// Zoom scales the view by Factor about the view point (CX, CY).
type Zoom struct {
	Factor float64
	CX, CY float64
}

// Pan translates the view.
type Pan struct{ DX, DY float64 }

// ZoomTo replaces the view transform.
type ZoomTo struct{ Transform scene.Transform }

func (HoverEnter) Kind() string { return "hover_enter" }
func (HoverLeave) Kind() string { return "hover_leave" }
func (DragStart) Kind() string  { return "drag_start" }
func (DragMove) Kind() string   { return "drag_move" }
func (DragEnd) Kind() string    { return "drag_end" }
func (Zoom) Kind() string       { return "zoom" }
func (Pan) Kind() string        { return "pan" }
func (ZoomTo) Kind() string     { return "zoom_to" }

func (e HoverEnter) Node() string { return e.NodeID }
func (e HoverLeave) Node() string { return e.NodeID }
func (e DragStart) Node() string  { return e.NodeID }
func (e DragMove) Node() string   { return e.NodeID }
func (e DragEnd) Node() string    { return e.NodeID }
func (Zoom) Node() string         { return "" }
func (Pan) Node() string          { return "" }
func (ZoomTo) Node() string       { return "" }

// EventSpec is the flat wire form of an event.
type EventSpec struct {
	Type   string  `json:"type"`
	Node   string  `json:"node,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	CX     float64 `json:"cx,omitempty"`
	CY     float64 `json:"cy,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	K      float64 `json:"k,omitempty"`
}

// Decode converts a wire event into an Event.
func (s EventSpec) Decode() (Event, error) {
	needNode := func(ev Event) (Event, error) {
		if s.Node == "" {
			return nil, fmt.Errorf("%s event requires a node", s.Type)
		}
		return ev, nil
	}
	switch s.Type {
	case "hover_enter", "mouseover":
		return needNode(HoverEnter{NodeID: s.Node})
	case "hover_leave", "mouseout":
		return needNode(HoverLeave{NodeID: s.Node})
	case "drag_start":
		return needNode(DragStart{NodeID: s.Node})
	case "drag_move", "drag":
		return needNode(DragMove{NodeID: s.Node, X: s.X, Y: s.Y})
	case "drag_end":
		return needNode(DragEnd{NodeID: s.Node})
	case "zoom":
		if s.Factor <= 0 {
			return nil, fmt.Errorf("zoom factor must be positive, got %v", s.Factor)
		}
		return Zoom{Factor: s.Factor, CX: s.CX, CY: s.CY}, nil
	case "pan":
		return Pan{DX: s.DX, DY: s.DY}, nil
	case "zoom_to":
		k := s.K
		if k == 0 {
			k = 1
		}
		return ZoomTo{Transform: scene.Transform{K: k, X: s.X, Y: s.Y}}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", s.Type)
	}
}
