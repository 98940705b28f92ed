package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/tui"
)

func newTimelineCmd(r *root) *cobra.Command {
	var (
		jsonPath string
		duration float64
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Browse annotations by time in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := r.openSession(cmd.Context(), jsonPath)
			if err != nil {
				return err
			}
			defer s.close()

			clock := playback.NewClock(duration, r.config.FPS)
			e := editor.New(r.editorOptions(s, clock)...)
			if err := s.load(cmd.Context(), e); err != nil {
				return fmt.Errorf("failed to load annotations: %w", err)
			}
			if duration <= 0 {
				clock.SetDuration(lastMark(e) + 1)
			}
			return tui.Run(e, tui.WithSave(s.save), tui.WithPalette(r.palette))
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "annotation file to browse instead of the data directory")
	cmd.Flags().Float64Var(&duration, "duration", 0, "media duration in seconds (default: just past the last mark)")
	return cmd
}

func lastMark(e *editor.Editor) float64 {
	end := 0.0
	for _, a := range e.Store().List() {
		end = max(end, a.Timestamp)
	}
	return end
}
