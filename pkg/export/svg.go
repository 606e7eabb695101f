package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"os"

	"github.com/vanderheijden86/cooc/pkg/scene"

	svg "github.com/ajstarks/svgo"
)

func saveSVG(opts SnapshotOptions) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteSVG(file, opts)
}

// WriteSVG renders the scene as an SVG document: links under circles,
// labels on top, all inside one group carrying the zoom transform.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	if opts.Scene == nil {
		return ErrEmptyScene
	}
	if opts.Transform.K == 0 {
		opts.Transform = scene.Identity
	}
	sc := opts.Scene
	width, height := int(math.Round(sc.Width)), int(math.Round(sc.Height))

	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width, height)
	canvas.Rect(0, 0, width, height, "fill:"+css(colorBackdrop))

	canvas.Gtransform(opts.Transform.Attr())

	canvas.Group(fmt.Sprintf(`stroke="%s" stroke-width="%g"`, css(colorLink), linkWidth))
	for _, l := range sc.Links {
		if !drawable(l.X1, l.Y1, l.X2, l.Y2) {
			continue
		}
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2),
			fmt.Sprintf(`stroke-opacity="%g"`, l.Opacity))
	}
	canvas.Gend()

	canvas.Group(fmt.Sprintf(`stroke="%s" stroke-width="%g"`, css(colorStroke), strokeWidth))
	for _, n := range sc.Nodes {
		if !drawable(n.X, n.Y, n.R) {
			continue
		}
		canvas.Circle(px(n.X), px(n.Y), px(n.R),
			fmt.Sprintf(`fill="%s" opacity="%g"`, n.Fill, n.Opacity),
			fmt.Sprintf(`data-id="%s"`, html.EscapeString(n.ID)))
	}
	canvas.Gend()

	for _, n := range sc.Nodes {
		if !n.LabelVisible || !drawable(n.X, n.Y) {
			continue
		}
		canvas.Text(px(labelX(n)), px(n.Y), n.Label,
			fmt.Sprintf("fill:%s;font-size:%dpx;font-family:sans-serif;opacity:%g", css(colorText), labelSize, n.Opacity))
	}
	canvas.Gend()

	for i, line := range summaryLines(opts) {
		style := fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle))
		if i == 0 {
			style = fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText))
		}
		canvas.Text(8, 16+i*14, line, style)
	}

	canvas.End()
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}
