package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/cooc/pkg/ui"
)

var errNoTerminal = errors.New("view needs an interactive terminal; use render for files")

func (a *app) viewCmd() *cobra.Command {
	var (
		watch bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the network in the terminal",
		Long: "view animates the layout in the terminal. Tab cycles the hovered node,\n" +
			"space grabs it for dragging, +/- zoom and the arrow keys pan.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNoTerminal
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch.Enabled = watch
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			session, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			if title == "" {
				title = "cooc"
			}
			m := ui.NewModel(session).WithTitle(title)

			if cfg.Watch.Enabled {
				reloads := make(chan ui.ReloadMsg, 1)
				w, err := watchInputs(ctx, cfg, func() {
					g, err := loadGraph(ctx, cfg)
					select {
					case reloads <- ui.ReloadMsg{Graph: g, Err: err}:
					case <-ctx.Done():
					}
				}, func(err error) {
					select {
					case reloads <- ui.ReloadMsg{Err: err}:
					case <-ctx.Done():
					}
				})
				if err != nil {
					return err
				}
				defer w.Stop()
				m = m.WithReloads(reloads)
			}

			if err := ui.Run(ctx, m); err != nil {
				return fmt.Errorf("run viewer: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the input files change")
	cmd.Flags().StringVar(&title, "title", "", "Header title")
	return cmd
}
