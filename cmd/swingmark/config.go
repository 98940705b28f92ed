package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/config"
)

func newConfigCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the configuration in RC format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), r.config.String())
			return nil
		},
	}, &cobra.Command{
		Use:   "save",
		Short: "Write the configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.NewLoader(version, r.configPath).Save(r.config)
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration saved to %s\n", path)
			return nil
		},
	})
	return cmd
}
