package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/cooc/pkg/config"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			// Start from the existing file when there is one.
			base, err := config.LoadFrom(path)
			if err != nil {
				base = config.DefaultConfig()
			}

			cfg, err := config.RunWizard(base)
			if err != nil {
				return err
			}
			if err := config.SaveTo(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
