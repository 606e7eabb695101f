package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/cooc/internal/datasource"
	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/config"
	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/loader"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/version"
	"github.com/vanderheijden86/cooc/pkg/watcher"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	configPath string
	nodes      string
	edges      string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cooc",
		Short:         "Force-directed co-occurrence network viewer",
		Long:          "cooc loads a node list and an edge list, lays the network out with a\nforce simulation and renders, serves or explores it interactively.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("cooc {{ .Version }}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/cooc/config.yaml)")
	pf.StringVar(&a.nodes, "nodes", "", "Node list CSV path or URL")
	pf.StringVar(&a.edges, "edges", "", "Edge list CSV path or URL")

	root.AddCommand(
		a.renderCmd(),
		a.viewCmd(),
		a.serveCmd(),
		a.statsCmd(),
		a.initCmd(),
		versionCmd(),
	)
	return root
}

// config loads the config file and applies flag overrides.
func (a *app) config() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	if a.nodes != "" {
		cfg.Data.Nodes = a.nodes
	}
	if a.edges != "" {
		cfg.Data.Edges = a.edges
	}
	debug.Dump("config", cfg)
	return cfg, cfg.Validate()
}

// loadGraph fetches and preprocesses both tables, then fills community ids
// according to the config.
func loadGraph(ctx context.Context, cfg config.Config) (*model.Graph, error) {
	g, err := loader.Load(ctx, cfg.LoaderOptions())
	if err != nil {
		return nil, err
	}
	n := analysis.FillCommunities(g, cfg.DetectMode(), cfg.Communities.Resolution)
	debug.LogIf(n > 0, "cooc: detected communities for %d nodes", n)
	return g, nil
}

func newSession(ctx context.Context, cfg config.Config) (*interact.Session, error) {
	g, err := loadGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return interact.NewSession(g, cfg.SessionOptions())
}

// localInputs returns the input locations that live on disk.
func localInputs(cfg config.Config) []string {
	var paths []string
	for _, loc := range []string{cfg.Data.Nodes, cfg.Data.Edges} {
		src, err := datasource.Resolve(loc)
		if err != nil || !src.IsLocal() {
			continue
		}
		paths = append(paths, src.Location)
	}
	return paths
}

// watchInputs starts a watcher calling onChange whenever either local input
// changes. Remote inputs cannot be watched.
func watchInputs(ctx context.Context, cfg config.Config, onChange func(), onError func(error)) (*watcher.Watcher, error) {
	paths := localInputs(cfg)
	if len(paths) == 0 {
		return nil, fmt.Errorf("--watch needs at least one local input")
	}
	w, err := watcher.NewWatcher(paths,
		watcher.WithDebounceDuration(cfg.Debounce()),
		watcher.WithPollInterval(cfg.PollInterval()),
		watcher.WithOnChange(onChange),
		watcher.WithOnError(onError),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("watch inputs: %w", err)
	}
	debug.Log("cooc: watching %v (polling=%v)", w.Paths(), w.IsPolling())
	return w, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cooc %s\n", version.String())
		},
	}
}

// logTimings writes the collected timing metrics to the debug log.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	for _, m := range metrics.AllTimingMetrics() {
		if m.Count() > 0 {
			debug.LogTiming(fmt.Sprintf("%s (x%d)", m.Name(), m.Count()), m.TotalDuration())
		}
	}
}
