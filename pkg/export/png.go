package export

import (
	"image/color"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

func savePNG(opts SnapshotOptions) error {
	dc, err := drawPNG(opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(opts.Path)
}

// WritePNG encodes the rendered scene as PNG to w.
func WritePNG(w io.Writer, opts SnapshotOptions) error {
	dc, err := drawPNG(opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func drawPNG(opts SnapshotOptions) (*gg.Context, error) {
	if opts.Scene == nil {
		return nil, ErrEmptyScene
	}
	sc := opts.Scene
	t := opts.Transform
	if t.K == 0 {
		t.K = 1
	}

	dc := gg.NewContext(int(math.Round(sc.Width)), int(math.Round(sc.Height)))
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.Push()
	dc.Translate(t.X, t.Y)
	dc.Scale(t.K, t.K)

	dc.SetLineWidth(linkWidth)
	for _, l := range sc.Links {
		if !drawable(l.X1, l.Y1, l.X2, l.Y2) {
			continue
		}
		dc.SetColor(withOpacity(colorLink, l.Opacity))
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	for _, n := range sc.Nodes {
		if !drawable(n.X, n.Y, n.R) {
			continue
		}
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.SetColor(withOpacity(parseFill(n.Fill), n.Opacity))
		dc.FillPreserve()
		dc.SetLineWidth(strokeWidth)
		dc.SetColor(withOpacity(colorStroke, n.Opacity))
		dc.Stroke()
	}

	for _, n := range sc.Nodes {
		if !n.LabelVisible || !drawable(n.X, n.Y) {
			continue
		}
		dc.SetColor(withOpacity(colorText, n.Opacity))
		dc.DrawStringAnchored(truncate(n.Label, 40), labelX(n), n.Y, 0, 0.5)
	}
	dc.Pop()

	for i, line := range summaryLines(opts) {
		if i == 0 {
			dc.SetColor(colorText)
		} else {
			dc.SetColor(colorSubtle)
		}
		dc.DrawStringAnchored(line, 8, float64(12+i*14), 0, 0.5)
	}
	return dc, nil
}

// withOpacity scales alpha; gg expects non-premultiplied NRGBA here.
func withOpacity(c color.RGBA, opacity float64) color.NRGBA {
	if math.IsNaN(opacity) {
		opacity = 1
	}
	opacity = math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(float64(c.A) * opacity))}
}
