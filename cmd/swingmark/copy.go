package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/clipboard"
)

func newCopyCmd(r *root) *cobra.Command {
	var jsonPath string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the annotation set to the clipboard as JSON",
		Long: `Copy the annotation set to the clipboard. The annotate window pastes it
into another video with Ctrl+V. Use render --to-clipboard for an image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.loadSet(cmd.Context(), jsonPath)
			if err != nil {
				return err
			}
			if err := clipboard.WriteAnnotations(list); err != nil {
				r.notifier.Failure("copy", err)
				return fmt.Errorf("failed to copy annotations: %w", err)
			}
			detail := fmt.Sprintf("%d annotations", len(list))
			r.notifier.Copy(detail)
			fmt.Fprintln(cmd.ErrOrStderr(), "copied", detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "annotation file to copy instead of the data directory")
	return cmd
}
