package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/api"
)

func newServeCmd(r *root) *cobra.Command {
	var (
		addr      string
		framesDir string
		advertise bool
		width     int
		height    int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the annotation API and live editing sessions",
		Long: `Serve the data directory over HTTP. Clients list, create, patch and delete
annotations, fetch rendered overlays and drive a live editor over
/api/ws. With --mdns the server is advertised on the local network.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := r.localRepo()
			if err != nil {
				return err
			}
			opts := []api.Option{
				api.WithColors(r.palette),
				api.WithFrameSize(width, height),
				api.WithFPS(r.config.FPS),
			}
			if framesDir != "" {
				opts = append(opts, api.WithFrames(dirFrames(framesDir, r.config.FPS)))
			}
			srv := api.New(addr, repo, opts...)
			defer srv.Close()

			if advertise {
				port, err := portOf(addr)
				if err != nil {
					return err
				}
				zone, err := api.Advertise(port)
				if err != nil {
					return fmt.Errorf("failed to advertise: %w", err)
				}
				defer zone.Shutdown()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			log.Printf("serving %s on %s", repo.Dir(), addr)

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&framesDir, "frames", "", "directory of stills named VIDEO.png or VIDEO-FRAME.png")
	cmd.Flags().BoolVar(&advertise, "mdns", false, "advertise the server over mDNS")
	cmd.Flags().IntVar(&width, "width", 1920, "logical frame width")
	cmd.Flags().IntVar(&height, "height", 1080, "logical frame height")
	return cmd
}

func newDiscoverCmd(r *root) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find swingmark servers on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			urls, err := api.Browse(timeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(urls) == 0 {
				fmt.Fprintln(out, "no servers found")
				return nil
			}
			for _, u := range urls {
				fmt.Fprintln(out, u)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "how long to listen for answers")
	return cmd
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("mdns needs a fixed port, got %q", addr)
	}
	return port, nil
}

// dirFrames serves stills from dir: VIDEO-FRAME.png for the frame nearest
// t, falling back to VIDEO.png.
func dirFrames(dir string, fps float64) api.FrameSource {
	return func(video string, t float64) (image.Image, error) {
		if video != filepath.Base(video) {
			return nil, fmt.Errorf("invalid video id %q", video)
		}
		frame := int(math.Round(t * fps))
		for _, name := range []string{fmt.Sprintf("%s-%d.png", video, frame), video + ".png"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return loadImage(path)
			}
		}
		return nil, nil
	}
}
