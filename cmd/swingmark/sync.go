package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/persist"
)

func newSyncCmd(r *root) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync push|pull",
		Short: "Copy a video's annotations between the data directory and a server",
		Long: `push makes the server match the data directory; pull makes the data
directory match the server. Only the differences are sent.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"push", "pull"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.config.APIURL == "" {
				return fmt.Errorf("sync needs a server: pass --api-url or set api_url in the config")
			}
			video, err := r.videoID()
			if err != nil {
				return err
			}
			local, err := r.localRepo()
			if err != nil {
				return err
			}
			remote := persist.NewHTTPClient(r.config.APIURL, nil)

			var from, to persist.Repository
			switch args[0] {
			case "push":
				from, to = local, remote
			case "pull":
				from, to = remote, local
			default:
				return fmt.Errorf("unknown sync direction %q", args[0])
			}
			n, err := syncVideo(cmd.Context(), from, to, video, dryRun, cmd.OutOrStdout())
			if err != nil {
				r.notifier.Failure("sync", err)
				return err
			}
			if !dryRun {
				r.notifier.Save(video, n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list the changes without applying them")
	return cmd
}

// syncVideo makes to hold the same set as from for video and returns how
// many changes it applied.
func syncVideo(ctx context.Context, from, to persist.Repository, video string, dryRun bool, out io.Writer) (int, error) {
	want, err := from.ListForVideo(ctx, video)
	if err != nil {
		return 0, err
	}
	have, err := to.ListForVideo(ctx, video)
	if err != nil {
		return 0, err
	}
	changes := persist.Diff(have, want)
	for i, c := range changes {
		fmt.Fprintf(out, "%s %s\n", c.Op, c.ID)
		if dryRun {
			continue
		}
		if err := persist.Apply(ctx, to, c); err != nil {
			return i, err
		}
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "already in sync")
	}
	return len(changes), nil
}
