package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "swingmark version %s\n", version)
			if commit != "" {
				fmt.Fprintf(out, "commit %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(out, "built %s\n", date)
			}
			return nil
		},
	}
}
