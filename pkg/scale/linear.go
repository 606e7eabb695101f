// Package scale maps data values onto visual ranges: a continuous linear
// scale for radii and a sequential color scale for community ids.
package scale

import "math"

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
	clamp  bool
}

// NewLinear returns an unclamped linear scale.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Clamped returns a copy that restricts output to the range.
func (s Linear) Clamped() Linear {
	s.clamp = true
	return s
}

// Domain returns the input extent.
func (s Linear) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the output extent.
func (s Linear) Range() (float64, float64) { return s.r0, s.r1 }

// Scale maps x. A zero-width domain maps everything to the middle of the
// range; NaN input (or a NaN domain) yields NaN.
func (s Linear) Scale(x float64) float64 {
	t := s.normalize(x)
	if math.IsNaN(t) {
		return math.NaN()
	}
	if s.clamp {
		t = math.Max(0, math.Min(1, t))
	}
	return s.r0 + t*(s.r1-s.r0)
}

// Invert maps a range value back onto the domain.
func (s Linear) Invert(y float64) float64 {
	return NewLinear(s.r0, s.r1, s.d0, s.d1).Scale(y)
}

func (s Linear) normalize(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	w := s.d1 - s.d0
	if math.IsNaN(w) {
		return math.NaN()
	}
	if w == 0 {
		return 0.5
	}
	return (x - s.d0) / w
}
