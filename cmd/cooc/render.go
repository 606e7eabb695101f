package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/export"
	"github.com/vanderheijden86/cooc/pkg/hooks"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// DefaultRenderTicks is about how long an unattended simulation takes to
// cool from alpha 1 to the default minimum.
const DefaultRenderTicks = 300

type renderOptions struct {
	output  string
	format  string
	hover   string
	zoom    float64
	ticks   int
	title   string
	stats   bool
	noHooks bool
}

func (a *app) renderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Lay the network out and write a snapshot",
		Long: "render runs the simulation until it cools (or --ticks runs out) and writes\n" +
			"the scene as SVG, PNG, JSON or SQLite, inferred from the output extension.",
		Example: "  cooc render -o network.svg\n  cooc render -o network.png --hover Paris --zoom 2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file (.svg, .png, .json, .sqlite)")
	f.StringVar(&opts.format, "format", "", "Output format, overriding the extension")
	f.StringVar(&opts.hover, "hover", "", "Render as if the node with this label were hovered")
	f.Float64Var(&opts.zoom, "zoom", 1, "Zoom factor about the canvas center")
	f.IntVar(&opts.ticks, "ticks", DefaultRenderTicks, "Maximum simulation ticks")
	f.StringVar(&opts.title, "title", "", "Title drawn in the summary block")
	f.BoolVar(&opts.stats, "stats", false, "Add graph statistics to the summary block and print timings")
	f.BoolVar(&opts.noHooks, "no-hooks", false, "Skip .cooc/hooks.yaml export hooks")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) render(cmd *cobra.Command, opts renderOptions) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	metrics.ResetAll()
	session, err := newSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ticks := session.Settle(opts.ticks)

	if opts.hover != "" {
		id := session.NodeByLabel(opts.hover)
		if id == "" {
			return fmt.Errorf("--hover: no node labelled %q", opts.hover)
		}
		if err := session.Apply(interact.HoverEnter{NodeID: id}); err != nil {
			return err
		}
	}
	if opts.zoom != 1 {
		cx, cy := cfg.Canvas.Width/2, cfg.Canvas.Height/2
		if err := session.Apply(interact.ZoomTo{Transform: scene.Identity.ScaleTo(opts.zoom, cx, cy)}); err != nil {
			return err
		}
	}

	var stats *analysis.Stats
	if opts.stats {
		s := analysis.Analyze(session.Graph())
		stats = &s
	}

	format := strings.ToLower(opts.format)
	if format == "" {
		if format, err = export.FormatFromPath(opts.output); err != nil {
			return err
		}
	}
	g := session.Graph()
	projectDir, _ := os.Getwd()
	hookExec, err := hooks.RunHooks(projectDir, hooks.ExportContext{
		ExportPath:   opts.output,
		ExportFormat: format,
		NodeCount:    len(g.Nodes),
		LinkCount:    len(g.Links),
		Timestamp:    time.Now(),
	}, opts.noHooks)
	if err != nil {
		return err
	}
	if hookExec != nil {
		defer func() {
			if summary := hookExec.Summary(); summary != "" {
				fmt.Fprint(cmd.ErrOrStderr(), summary)
			}
		}()
		if err := hookExec.RunPreExport(cmd.Context()); err != nil {
			return err
		}
	}

	session.View(func(sc *scene.Scene, v interact.Visual) {
		err = export.SaveSnapshot(export.SnapshotOptions{
			Path:      opts.output,
			Format:    format,
			Title:     opts.title,
			Scene:     sc,
			Transform: v.Transform,
			Hovered:   v.Hovered,
			Stats:     stats,
		})
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	if hookExec != nil {
		if err := hookExec.RunPostExport(cmd.Context()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d nodes, %d links, %d ticks)\n", opts.output, len(g.Nodes), len(g.Links), ticks)
	if opts.stats && metrics.Enabled() {
		fmt.Fprintln(out, "Timings:")
		metrics.WriteTimings(out)
	}
	return nil
}
