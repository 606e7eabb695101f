package scale

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Unknown is the color returned for values a sequential scale cannot place.
var Unknown = colorful.Color{R: 0, G: 0, B: 0}

// Interpolator maps t in [0,1] to a color.
type Interpolator func(t float64) colorful.Color

// Sequential maps a numeric domain onto an interpolator.
type Sequential struct {
	lo, hi float64
	interp Interpolator
}

// NewSequential returns a scale over [lo, hi]. A nil interpolator means
// Viridis.
func NewSequential(lo, hi float64, interp Interpolator) Sequential {
	if interp == nil {
		interp = Viridis
	}
	return Sequential{lo: lo, hi: hi, interp: interp}
}

// Domain returns the input extent.
func (s Sequential) Domain() (float64, float64) { return s.lo, s.hi }

// Color maps x to a color. Out-of-domain values are clamped; NaN maps to
// Unknown and reports false.
func (s Sequential) Color(x float64) (colorful.Color, bool) {
	if math.IsNaN(x) || math.IsNaN(s.lo) || math.IsNaN(s.hi) {
		return Unknown, false
	}
	t := 0.5
	if w := s.hi - s.lo; w != 0 {
		t = (x - s.lo) / w
	}
	return s.interp(math.Max(0, math.Min(1, t))), true
}

// Hex maps x to a #rrggbb string.
func (s Sequential) Hex(x float64) string {
	c, _ := s.Color(x)
	return c.Clamped().Hex()
}

// viridisStops samples the viridis colormap at t = 0, 0.1, ..., 1.
var viridisStops = []colorful.Color{
	mustParseHex("#440154"),
	mustParseHex("#482475"),
	mustParseHex("#414487"),
	mustParseHex("#355f8d"),
	mustParseHex("#2a788e"),
	mustParseHex("#21918c"),
	mustParseHex("#22a884"),
	mustParseHex("#44bf70"),
	mustParseHex("#7ad151"),
	mustParseHex("#bddf26"),
	mustParseHex("#fde725"),
}

// Viridis is the perceptually uniform viridis colormap.
func Viridis(t float64) colorful.Color {
	return rampAt(viridisStops, t)
}

func rampAt(stops []colorful.Color, t float64) colorful.Color {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return stops[i].BlendRgb(stops[i+1], pos-float64(i))
}

// mustParseHex parses a hex color literal, panicking on malformed input.
func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("mustParseHex: " + err.Error())
	}
	return c
}
