package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/server"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout and serve it over HTTP",
		Long: "serve keeps the simulation running in the background and exposes the\n" +
			"scene at /api/graph, /graph.svg and /graph.png. Interaction events are\n" +
			"POSTed to /api/events; /metrics exports prometheus metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch.Enabled = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			srv := server.New(session, server.Config{
				Addr:         cfg.Server.Addr,
				TickInterval: cfg.TickInterval(),
				Title:        title,
				Load: func(ctx context.Context) (*model.Graph, error) {
					return loadGraph(ctx, cfg)
				},
				Metrics: metrics.NewRegistry(),
			})

			errOut := cmd.ErrOrStderr()
			if cfg.Watch.Enabled {
				w, err := watchInputs(ctx, cfg, func() {
					if err := srv.Reload(ctx); err != nil {
						fmt.Fprintf(errOut, "Reload failed, keeping previous graph: %v\n", err)
					}
				}, func(err error) {
					fmt.Fprintf(errOut, "Watcher: %v\n", err)
				})
				if err != nil {
					return err
				}
				defer w.Stop()
			}

			g := session.Graph()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d nodes, %d links on %s\n", len(g.Nodes), len(g.Links), cfg.Server.Addr)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the input files change")
	cmd.Flags().StringVar(&title, "title", "", "Title recorded in snapshots")
	return cmd
}
