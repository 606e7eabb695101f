package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/cooc/pkg/scene"
)

// maxLabelWidth caps label length on the canvas, in cells.
const maxLabelWidth = 18

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellLink
	cellLabel
	cellNode
)

type cell struct {
	ch      rune
	kind    cellKind
	fill    string
	opacity float64
	cont    bool // right half of a wide rune
}

// Canvas is a character grid the scene is rasterized onto. Scene
// coordinates are mapped through the zoom transform and then stretched
// to the grid, so one column is narrower than one row.
type Canvas struct {
	Cols, Rows int
	cells      []cell
}

// NewCanvas returns an empty grid; non-positive sizes give an empty canvas.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Canvas{Cols: cols, Rows: rows, cells: make([]cell, cols*rows)}
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.Cols || row >= c.Rows {
		return nil
	}
	return &c.cells[row*c.Cols+col]
}

// Project maps a scene point to a grid cell.
func (c *Canvas) Project(sc *scene.Scene, t scene.Transform, x, y float64) (col, row int, ok bool) {
	if math.IsNaN(x) || math.IsNaN(y) || sc.Width <= 0 || sc.Height <= 0 {
		return 0, 0, false
	}
	vx, vy := t.Apply(x, y)
	fc := math.Floor(vx / sc.Width * float64(c.Cols))
	fr := math.Floor(vy / sc.Height * float64(c.Rows))
	if fc < 0 || fr < 0 || fc >= float64(c.Cols) || fr >= float64(c.Rows) {
		return int(fc), int(fr), false
	}
	return int(fc), int(fr), true
}

// Unproject maps the center of a grid cell back to scene coordinates.
func (c *Canvas) Unproject(sc *scene.Scene, t scene.Transform, col, row int) (x, y float64) {
	vx := (float64(col) + 0.5) / float64(max(c.Cols, 1)) * sc.Width
	vy := (float64(row) + 0.5) / float64(max(c.Rows, 1)) * sc.Height
	return t.Invert(vx, vy)
}

// Draw rasterizes sc: links first, nodes over them, labels last and only
// into cells no node occupies.
func (c *Canvas) Draw(sc *scene.Scene, t scene.Transform, hovered string) {
	if t.K == 0 {
		t = scene.Identity
	}
	for _, l := range sc.Links {
		if math.IsNaN(l.X1+l.Y1+l.X2+l.Y2) {
			continue
		}
		c0, r0, _ := c.Project(sc, t, l.X1, l.Y1)
		c1, r1, _ := c.Project(sc, t, l.X2, l.Y2)
		c.line(c0, r0, c1, r1, l.Opacity)
	}

	type placed struct {
		v        *scene.NodeView
		col, row int
	}
	var drawn []placed
	for _, v := range sc.Nodes {
		col, row, ok := c.Project(sc, t, v.X, v.Y)
		if !ok {
			continue
		}
		glyph := GlyphNode
		if n := v.Node(); n != nil && n.Pinned() {
			glyph = GlyphPinned
		}
		if v.ID == hovered {
			glyph = GlyphHovered
		}
		cl := c.at(col, row)
		*cl = cell{ch: glyph, kind: cellNode, fill: v.Fill, opacity: v.Opacity}
		drawn = append(drawn, placed{v, col, row})
	}

	for _, p := range drawn {
		if p.v.LabelVisible {
			c.label(p.col+2, p.row, truncate(p.v.Label, maxLabelWidth), p.v.Opacity)
		}
	}
}

// line draws a dotted Bresenham segment, skipping both endpoints.
func (c *Canvas) line(c0, r0, c1, r1 int, opacity float64) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	err := dc + dr
	col, row := c0, r0
	for i := 0; ; i++ {
		if (col != c0 || row != r0) && (col != c1 || row != r1) && i%2 == 0 {
			if cl := c.at(col, row); cl != nil && cl.kind <= cellLink {
				if cl.kind == cellEmpty || opacity > cl.opacity {
					*cl = cell{ch: GlyphLink, kind: cellLink, opacity: opacity}
				}
			}
		}
		if col == c1 && row == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dr {
			err += dr
			col += sc
		}
		if e2 <= dc {
			err += dc
			row += sr
		}
	}
}

func (c *Canvas) label(col, row int, text string, opacity float64) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		head := c.at(col, row)
		if head == nil || head.kind == cellNode {
			return
		}
		if w == 2 {
			tail := c.at(col+1, row)
			if tail == nil || tail.kind == cellNode {
				return
			}
			*tail = cell{kind: cellLabel, cont: true, opacity: opacity}
		}
		*head = cell{ch: r, kind: cellLabel, opacity: opacity}
		col += w
	}
}

// Plain returns the grid without styling, one line per row.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := 0; row < c.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.Cols; col++ {
			cl := c.cells[row*c.Cols+col]
			switch {
			case cl.cont:
			case cl.kind == cellEmpty:
				b.WriteByte(' ')
			default:
				b.WriteRune(cl.ch)
			}
		}
	}
	return b.String()
}

// Render returns the grid with theme styling. Runs of equally styled cells
// share one style application.
func (c *Canvas) Render(theme Theme) string {
	var b strings.Builder
	for row := 0; row < c.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var runStyle *lipgloss.Style
		var runKey string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(runStyle.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.Cols; col++ {
			cl := c.cells[row*c.Cols+col]
			if cl.cont {
				continue
			}
			key, style := c.styleFor(theme, cl)
			if key != runKey {
				flush()
				runKey, runStyle = key, style
			}
			if cl.kind == cellEmpty {
				run.WriteByte(' ')
			} else {
				run.WriteRune(cl.ch)
			}
		}
		flush()
	}
	return b.String()
}

func (c *Canvas) styleFor(theme Theme, cl cell) (string, *lipgloss.Style) {
	var s lipgloss.Style
	switch cl.kind {
	case cellEmpty:
		return "", nil
	case cellLink:
		s = theme.LinkStyle(cl.opacity)
		if cl.opacity < 0.5 {
			return "link-dim", &s
		}
		return "link", &s
	case cellLabel:
		s = theme.LabelStyle(cl.opacity)
		if cl.opacity < 1 {
			return "label-dim", &s
		}
		return "label", &s
	default:
		s = theme.NodeStyle(cl.fill, cl.opacity)
		if cl.opacity < 1 {
			return "node-dim" + cl.fill, &s
		}
		return "node" + cl.fill, &s
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
