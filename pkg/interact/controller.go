package interact

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/model"
)

// ErrUnknownNode is returned when an event names a node that is not in the graph.
var ErrUnknownNode = errors.New("unknown node")

// Controller applies the simulation side effects of drag events.
type Controller struct {
	sim    *layout.Simulation
	graph  *model.Graph
	active map[string]bool
}

// NewController binds drag handling to sim.
func NewController(g *model.Graph, sim *layout.Simulation) *Controller {
	return &Controller{sim: sim, graph: g, active: make(map[string]bool)}
}

func (c *Controller) node(id string) (*model.Node, error) {
	n := c.graph.NodeByID(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return n, nil
}

// Handle applies ev. Non-drag events are ignored.
func (c *Controller) Handle(ev Event) error {
	switch e := ev.(type) {
	case DragStart:
		n, err := c.node(e.NodeID)
		if err != nil {
			return err
		}
		if len(c.active) == 0 {
			c.sim.SetAlphaTarget(layout.DragAlphaTarget)
			c.sim.Restart()
		}
		c.active[n.ID] = true
		c.sim.Fix(n, n.X, n.Y)
	case DragMove:
		n, err := c.node(e.NodeID)
		if err != nil {
			return err
		}
		c.sim.Fix(n, e.X, e.Y)
	case DragEnd:
		n, err := c.node(e.NodeID)
		if err != nil {
			return err
		}
		delete(c.active, n.ID)
		if len(c.active) == 0 {
			c.sim.SetAlphaTarget(0)
		}
		c.sim.Unfix(n)
	}
	return nil
}

// Dragging reports whether any drag is in progress.
func (c *Controller) Dragging() bool { return len(c.active) > 0 }
