package layout

import (
	"math"

	"github.com/vanderheijden86/cooc/pkg/model"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// Force mutates node velocities (or positions) once per tick.
// Initialize is called whenever the simulation's node set changes.
type Force interface {
	Initialize(nodes []*model.Node, random func() float64)
	Apply(alpha float64)
}

// jiggle returns a tiny non-zero offset used to separate coincident nodes.
func jiggle(random func() float64) float64 {
	return (random() - 0.5) * 1e-6
}

// LinkForce pulls linked nodes toward a target distance.
type LinkForce struct {
	Links      []*model.Link
	Distance   float64
	Iterations int

	strengths []float64
	bias      []float64
	random    func() float64
}

// NewLinkForce returns a link force with distance 30 and one iteration.
func NewLinkForce(links []*model.Link) *LinkForce {
	return &LinkForce{Links: links, Distance: DefaultLinkDistance, Iterations: 1}
}

func (f *LinkForce) Initialize(nodes []*model.Node, random func() float64) {
	f.random = random
	count := make(map[*model.Node]int, len(nodes))
	for _, l := range f.Links {
		count[l.Source]++
		count[l.Target]++
	}
	f.strengths = make([]float64, len(f.Links))
	f.bias = make([]float64, len(f.Links))
	for i, l := range f.Links {
		s, t := count[l.Source], count[l.Target]
		f.strengths[i] = 1 / float64(min(s, t))
		f.bias[i] = float64(s) / float64(s+t)
	}
}

func (f *LinkForce) Apply(alpha float64) {
	for k := 0; k < f.Iterations; k++ {
		for i, l := range f.Links {
			src, tgt := l.Source, l.Target
			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = jiggle(f.random)
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = jiggle(f.random)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.Distance) / d * alpha * f.strengths[i]
			x *= d
			y *= d
			b := f.bias[i]
			tgt.VX -= x * b
			tgt.VY -= y * b
			src.VX += x * (1 - b)
			src.VY += y * (1 - b)
		}
	}
}

// ManyBodyForce applies pairwise attraction (positive strength) or
// repulsion (negative strength) between all nodes, approximated with a
// Barnes-Hut quadtree.
type ManyBodyForce struct {
	Strength    float64
	Theta       float64
	DistanceMin float64

	// Exact disables the quadtree and sums every pair.
	Exact bool

	nodes  []*model.Node
	random func() float64
}

// NewManyBodyForce returns a many-body force with strength -30 and theta 0.9.
func NewManyBodyForce() *ManyBodyForce {
	return &ManyBodyForce{
		Strength:    DefaultChargeStrength,
		Theta:       DefaultTheta,
		DistanceMin: 1,
	}
}

func (f *ManyBodyForce) Initialize(nodes []*model.Node, random func() float64) {
	f.nodes = nodes
	f.random = random
}

type body struct{ n *model.Node }

func (b body) Coord2() r2.Vec { return r2.Vec{X: b.n.X, Y: b.n.Y} }
func (b body) Mass() float64 { return 1 }

func (f *ManyBodyForce) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}
	if f.Exact {
		f.applyExact(alpha)
		return
	}

	bodies := make([]barneshut.Particle2, len(f.nodes))
	for i, n := range f.nodes {
		bodies[i] = body{n}
	}
	plane, err := barneshut.NewPlane(bodies)
	if err != nil {
		// Coordinates the quadtree cannot hold, e.g. NaN or Inf.
		f.applyExact(alpha)
		return
	}

	min2 := f.DistanceMin * f.DistanceMin
	force := func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		l := v.X*v.X + v.Y*v.Y
		if l == 0 {
			return r2.Vec{}
		}
		if l < min2 {
			l = math.Sqrt(min2 * l)
		}
		return r2.Scale(f.Strength*m2/l, v)
	}
	for i, n := range f.nodes {
		v := plane.ForceOn(bodies[i], f.Theta, force)
		n.VX += v.X * alpha
		n.VY += v.Y * alpha
	}
}

func (f *ManyBodyForce) applyExact(alpha float64) {
	min2 := f.DistanceMin * f.DistanceMin
	for _, n := range f.nodes {
		for _, m := range f.nodes {
			if m == n {
				continue
			}
			x := m.X - n.X
			y := m.Y - n.Y
			if x == 0 {
				x = jiggle(f.random)
			}
			if y == 0 {
				y = jiggle(f.random)
			}
			l := x*x + y*y
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := f.Strength * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

// CenterForce translates all nodes so their mean position is (X, Y).
// It moves positions directly and leaves velocities alone.
type CenterForce struct {
	X, Y     float64
	Strength float64

	nodes []*model.Node
}

// NewCenterForce returns a center force at (x, y) with strength 1.
func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y, Strength: 1}
}

func (f *CenterForce) Initialize(nodes []*model.Node, _ func() float64) {
	f.nodes = nodes
}

func (f *CenterForce) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = (sx/float64(len(f.nodes)) - f.X) * f.Strength
	sy = (sy/float64(len(f.nodes)) - f.Y) * f.Strength
	for _, n := range f.nodes {
		n.X -= sx
		n.Y -= sy
	}
}
