package scene

import (
	"fmt"
	"math"
)

// Zoom limits for Transform.K.
const (
	MinZoom = 1.0 / 8
	MaxZoom = 8.0
)

// Transform maps scene coordinates to view coordinates: view = scene*K + (X, Y).
type Transform struct {
	K    float64
	X, Y float64
}

// Identity is the transform with no zoom or pan.
var Identity = Transform{K: 1}

// Apply maps a scene point into view space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a view point back into scene space.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// ScaleBy multiplies K by factor about the view point (cx, cy), keeping
// that point fixed. K is clamped to [MinZoom, MaxZoom].
func (t Transform) ScaleBy(factor, cx, cy float64) Transform {
	return t.ScaleTo(t.K*factor, cx, cy)
}

// ScaleTo sets K about the view point (cx, cy).
func (t Transform) ScaleTo(k, cx, cy float64) Transform {
	k = ClampZoom(k)
	sx, sy := t.Invert(cx, cy)
	return Transform{K: k, X: cx - sx*k, Y: cy - sy*k}
}

// Translate pans by (dx, dy) view units.
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// Attr renders the transform as an SVG transform attribute value.
func (t Transform) Attr() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// ClampZoom restricts k to [MinZoom, MaxZoom]. Non-positive or NaN values
// reset to 1.
func ClampZoom(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, k))
}
