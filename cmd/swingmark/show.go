package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/highlight"
)

func newShowCmd(r *root) *cobra.Command {
	var (
		jsonPath string
		colorFlg string
		style    string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the annotation set as highlighted JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.loadSet(cmd.Context(), jsonPath)
			if err != nil {
				return err
			}
			data, err := codec.Serialize(list)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var color bool
			switch colorFlg {
			case "always":
				color = true
			case "never":
			case "auto":
				color = highlight.ShouldColor(out)
			default:
				return fmt.Errorf("invalid --color %q: want auto, always or never", colorFlg)
			}
			return highlight.Write(out, data, highlight.Options{Style: style, Color: color})
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "annotation file to print instead of the data directory")
	cmd.Flags().StringVar(&colorFlg, "color", "auto", "auto, always or never")
	cmd.Flags().StringVar(&style, "style", highlight.DefaultStyle, "chroma style name")
	return cmd
}
