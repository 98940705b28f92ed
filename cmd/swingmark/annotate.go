package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/viewer"
)

func newAnnotateCmd(r *root) *cobra.Command {
	var (
		jsonPath  string
		framePath string
		duration  float64
		width     int
		height    int
	)
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Open the annotation window over a still frame",
		Long: `Open a window showing a still frame with the annotations active at the
current time. Draw with the mouse; v l c a g p t pick tools, [ and ] jump
between marks, arrows step frames, h toggles every mark, Ctrl+S saves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := r.openSession(cmd.Context(), jsonPath)
			if err != nil {
				return err
			}
			defer s.close()

			opts := []viewer.Option{
				viewer.WithPalette(r.palette),
				viewer.WithNotifier(r.notifier),
				viewer.WithFrameSize(width, height),
			}
			if framePath != "" {
				img, err := loadImage(framePath)
				if err != nil {
					return err
				}
				opts = append(opts, viewer.WithBackground(img))
			}
			if jsonPath != "" {
				opts = append(opts, viewer.WithJSONPath(jsonPath))
			}
			v := viewer.New(r.editorOptions(s, playback.NewClock(duration, r.config.FPS)), opts...)
			if err := s.load(cmd.Context(), v.Editor()); err != nil {
				return fmt.Errorf("failed to load annotations: %w", err)
			}
			v.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "annotation file to edit instead of the data directory")
	cmd.Flags().StringVar(&framePath, "frame", "", "PNG or JPEG still to draw over")
	cmd.Flags().Float64Var(&duration, "duration", 0, "media duration in seconds")
	cmd.Flags().IntVar(&width, "width", 1280, "frame width without --frame")
	cmd.Flags().IntVar(&height, "height", 720, "frame height without --frame")
	return cmd
}
