package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/viewer"
)

func newColorsCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List the palette colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if len(r.palette.Entries) == 0 {
				fmt.Fprintln(out, "no colors available")
				return nil
			}
			fmt.Fprintf(out, "palette %s (* marks the default color):\n", r.palette.Name)
			for idx, entry := range r.palette.Entries {
				marker := " "
				if entry.Name == r.config.DefaultColor {
					marker = "*"
				}
				c := entry.Color
				block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", c.R, c.G, c.B)
				fmt.Fprintf(out, "%s %2d: %-12s %s %s\n", marker, idx, entry.Name, palette.ToHex(c), block)
			}
			if builtin := palette.Builtin(); len(builtin) > 0 {
				fmt.Fprintf(out, "built in palettes: %v\n", builtin)
			}
			return nil
		},
	}
}

func newWidthsCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "widths",
		Short: "List the stroke widths offered in the toolbar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "available stroke widths (* marks the default width):")
			for _, w := range viewer.StrokeWidths {
				marker := " "
				if w == r.config.DefaultWidth {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %4gpx\n", marker, w)
			}
			return nil
		},
	}
}
