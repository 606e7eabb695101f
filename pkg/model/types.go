// Package model defines the node and link records of a co-occurrence network.
package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrDanglingLink is returned when a link endpoint does not name a known node.
var ErrDanglingLink = errors.New("link endpoint not found")

// Count is an integer column value that may have failed to parse.
// An invalid Count is the not-a-number sentinel of the source data.
type Count struct {
	Value int
	Valid bool
}

// NewCount returns a valid Count.
func NewCount(v int) Count {
	return Count{Value: v, Valid: true}
}

// InvalidCount is the sentinel produced for non-numeric text.
var InvalidCount = Count{}

// Float returns the value as float64, or NaN when invalid.
func (c Count) Float() float64 {
	if !c.Valid {
		return math.NaN()
	}
	return float64(c.Value)
}

func (c Count) String() string {
	if !c.Valid {
		return "NaN"
	}
	return strconv.Itoa(c.Value)
}

// Node is one vertex of the network. X/Y/VX/VY are owned by the layout
// engine; FX/FY pin the node while non-nil.
type Node struct {
	ID      string
	Label   string
	BWCount Count
	BWDiff  Count
	BWWhich string
	BCount  Count
	WCount  Count
	Louvain Count
	Fstgrdy Count

	Index  int
	X, Y   float64
	VX, VY float64
	FX, FY *float64
}

// Unplace clears the position so the layout engine assigns an initial one.
func (n *Node) Unplace() {
	n.X, n.Y = math.NaN(), math.NaN()
	n.VX, n.VY = 0, 0
}

// Placed reports whether the node has a position.
func (n *Node) Placed() bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y)
}

// Pinned reports whether the node position is fixed.
func (n *Node) Pinned() bool {
	return n.FX != nil || n.FY != nil
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
}

// Unpin releases a pinned node.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Link is an undirected edge. SourceID/TargetID come from the edge list;
// Source/Target are set by Graph.Resolve.
type Link struct {
	SourceID string
	TargetID string
	Source   *Node
	Target   *Node
	Index    int
}

// Resolved reports whether both endpoints point at nodes.
func (l *Link) Resolved() bool {
	return l.Source != nil && l.Target != nil
}

// Touches reports whether either endpoint satisfies match.
func (l *Link) Touches(match func(*Node) bool) bool {
	return match(l.Source) || match(l.Target)
}

// Graph holds the preprocessed nodes and links.
type Graph struct {
	Nodes []*Node
	Links []*Link

	byID map[string]*Node
}

// NewGraph builds a graph and indexes nodes by id. Later duplicates of an
// id shadow earlier ones for lookup, matching map-based id resolution.
func NewGraph(nodes []*Node, links []*Link) *Graph {
	g := &Graph{Nodes: nodes, Links: links}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.byID = make(map[string]*Node, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Index = i
		g.byID[n.ID] = n
	}
	for i, l := range g.Links {
		l.Index = i
	}
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if g.byID == nil {
		g.reindex()
	}
	return g.byID[id]
}

// Resolve replaces link endpoint ids with node references. A missing
// endpoint is fatal for the whole graph.
func (g *Graph) Resolve() error {
	if g.byID == nil {
		g.reindex()
	}
	for _, l := range g.Links {
		src, ok := g.byID[l.SourceID]
		if !ok {
			return fmt.Errorf("link %d source %q: %w", l.Index, l.SourceID, ErrDanglingLink)
		}
		tgt, ok := g.byID[l.TargetID]
		if !ok {
			return fmt.Errorf("link %d target %q: %w", l.Index, l.TargetID, ErrDanglingLink)
		}
		l.Source = src
		l.Target = tgt
	}
	return nil
}

// Degrees returns the number of link endpoints per node index. Self-links
// count twice.
func (g *Graph) Degrees() []int {
	deg := make([]int, len(g.Nodes))
	for _, l := range g.Links {
		if !l.Resolved() {
			continue
		}
		deg[l.Source.Index]++
		deg[l.Target.Index]++
	}
	return deg
}

// CountRange returns the min and max of the valid values selected by f.
// ok is false when no node has a valid value.
func (g *Graph) CountRange(f func(*Node) Count) (lo, hi int, ok bool) {
	for _, n := range g.Nodes {
		c := f(n)
		if !c.Valid {
			continue
		}
		if !ok {
			lo, hi, ok = c.Value, c.Value, true
			continue
		}
		if c.Value < lo {
			lo = c.Value
		}
		if c.Value > hi {
			hi = c.Value
		}
	}
	return lo, hi, ok
}

// CarryPositions copies position and velocity from nodes in prev that share
// an id with nodes in g. Used when a data file is reloaded.
func (g *Graph) CarryPositions(prev *Graph) {
	if prev == nil {
		return
	}
	for _, n := range g.Nodes {
		old := prev.NodeByID(n.ID)
		if old == nil {
			continue
		}
		n.X, n.Y = old.X, old.Y
		n.VX, n.VY = old.VX, old.VY
	}
}
