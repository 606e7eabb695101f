// Package export writes a laid-out scene to SVG, PNG, JSON or SQLite.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/scene"

	"github.com/lucasb-eyer/go-colorful"
)

// Supported formats.
const (
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyScene        = errors.New("no nodes to export")
	ErrNoPath            = errors.New("output path is required")
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path      string          // Output path; format inferred from extension when Format empty
	Format    string          // svg, png, json or sqlite (case-insensitive)
	Title     string          // Optional title rendered in the summary block
	Scene     *scene.Scene    // Scene to render, already updated
	Transform scene.Transform // Zoom transform; zero value means identity
	Hovered   string          // Hovered node id, recorded in JSON and SQLite
	Stats     *analysis.Stats // Optional, adds a summary line
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".json":
		return FormatJSON, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: extension %q (want .svg, .png, .json or .sqlite)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// SaveSnapshot renders the scene to opts.Path.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Scene == nil || len(opts.Scene.Nodes) == 0 {
		return ErrEmptyScene
	}
	if opts.Path == "" {
		return ErrNoPath
	}
	if opts.Transform.K == 0 {
		opts.Transform = scene.Identity
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		f, err := FormatFromPath(opts.Path)
		if err != nil {
			return err
		}
		format = f
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case FormatSVG:
		return saveSVG(opts)
	case FormatPNG:
		return savePNG(opts)
	case FormatJSON:
		return saveJSON(opts)
	case FormatSQLite, "db":
		return saveSQLite(opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// --- shared styling ---------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorLink     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorStroke   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

const (
	linkWidth   = 1.0
	strokeWidth = 1.5
	labelGap    = 2.0
	labelSize   = 10
)

func summaryLines(opts SnapshotOptions) []string {
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Co-occurrence network"
	}
	lines := []string{
		title,
		fmt.Sprintf("nodes: %d  links: %d  zoom: %.2f", len(opts.Scene.Nodes), len(opts.Scene.Links), opts.Transform.K),
	}
	if opts.Stats != nil {
		top := "n/a"
		if len(opts.Stats.TopDegree) > 0 {
			r := opts.Stats.TopDegree[0]
			top = fmt.Sprintf("%s (%d)", r.Label, int(r.Score))
		}
		lines = append(lines, fmt.Sprintf("components: %d  top degree: %s", opts.Stats.Components, top))
	}
	return lines
}

// drawable reports whether every coordinate is finite. NaN radii come from
// unparseable counts and produce no circle.
func drawable(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// labelX places a label just right of its circle. A NaN radius draws no
// circle, so the label sits at the gap alone.
func labelX(n *scene.NodeView) float64 {
	if math.IsNaN(n.R) || math.IsInf(n.R, 0) {
		return n.X + labelGap
	}
	return n.X + n.R + labelGap
}

func parseFill(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
