package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/clipboard"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/timeline"
)

// frameFlags select an annotation set, a background and a frame size.
type frameFlags struct {
	jsonPath   string
	background string
	width      int
	height     int
	all        bool
}

func (f *frameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.jsonPath, "json", "", "annotation file to read instead of the data directory")
	cmd.Flags().StringVar(&f.background, "frame", "", "PNG or JPEG still to draw over")
	cmd.Flags().IntVar(&f.width, "width", 0, "frame width (default: the still's width, or 1920)")
	cmd.Flags().IntVar(&f.height, "height", 0, "frame height (default: the still's height, or 1080)")
	cmd.Flags().BoolVar(&f.all, "all", false, "draw every annotation regardless of time")
}

type frameInput struct {
	list       []annotation.Annotation
	background image.Image
	width      int
	height     int
}

func (f *frameFlags) load(ctx context.Context, r *root) (*frameInput, error) {
	list, err := r.loadSet(ctx, f.jsonPath)
	if err != nil {
		return nil, err
	}
	in := &frameInput{list: list, width: f.width, height: f.height}
	if f.background != "" {
		if in.background, err = loadImage(f.background); err != nil {
			return nil, err
		}
		b := in.background.Bounds()
		if in.width <= 0 {
			in.width = b.Dx()
		}
		if in.height <= 0 {
			in.height = b.Dy()
		}
	}
	if in.width <= 0 {
		in.width = 1920
	}
	if in.height <= 0 {
		in.height = 1080
	}
	return in, nil
}

// visible is what a viewer shows at t.
func (f *frameFlags) visible(r *root, list []annotation.Annotation, t float64) []annotation.Annotation {
	if f.all {
		return list
	}
	return timeline.New(list).At(t, r.config.Tolerance)
}

func (r *root) renderOptions() render.Options {
	shadow := render.DefaultShadowOptions()
	return render.Options{Colors: r.palette, Shadow: &shadow}
}

func newRenderCmd(r *root) *cobra.Command {
	var (
		ff          frameFlags
		at          float64
		output      string
		toClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the annotations active at a time to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := ff.load(cmd.Context(), r)
			if err != nil {
				return err
			}
			frame := render.Frame(in.background, in.width, in.height, ff.visible(r, in.list, at), nil, r.renderOptions())

			if toClipboard {
				if err := clipboard.WriteImage(frame); err != nil {
					r.notifier.Failure("copy", err)
					return fmt.Errorf("failed to copy frame: %w", err)
				}
				r.notifier.Copy("frame")
				if output == "" {
					return nil
				}
			}
			if output == "-" {
				return png.Encode(cmd.OutOrStdout(), frame)
			}
			if output == "" {
				output = fmt.Sprintf("%s-%.2f.png", r.config.Video, at)
				if ff.jsonPath != "" {
					output = fmt.Sprintf("%s-%.2f.png", videoFromPath(ff.jsonPath), at)
				}
			}
			if err := writeWith(output, func(w io.Writer) error { return png.Encode(w, frame) }); err != nil {
				r.notifier.Failure("export", err)
				return err
			}
			r.notifier.Export(output, frame)
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", output)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().Float64Var(&at, "at", 0, "media time in seconds")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write, - for stdout")
	cmd.Flags().BoolVar(&toClipboard, "to-clipboard", false, "copy the frame to the clipboard")
	return cmd
}

func newExportPDFCmd(r *root) *cobra.Command {
	var (
		ff     frameFlags
		times  []float64
		output string
	)
	cmd := &cobra.Command{
		Use:   "export-pdf",
		Short: "Write one PDF page per mark time",
		Long: `Write a PDF with one page per time given with --at, or one page per
distinct annotation time. Shapes stay vector; the still, when given, is
embedded under every page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := ff.load(cmd.Context(), r)
			if err != nil {
				return err
			}
			if len(times) == 0 {
				times = markTimes(in.list)
			}
			doc := render.NewPDF(float64(in.width), float64(in.height))
			if err := doc.SetBackground(in.background); err != nil {
				return err
			}
			opts := render.Options{Colors: r.palette}
			for _, t := range times {
				render.Redraw(doc, ff.visible(r, in.list, t), nil, opts)
			}
			if output == "" {
				output = r.config.Video + ".pdf"
				if ff.jsonPath != "" {
					output = videoFromPath(ff.jsonPath) + ".pdf"
				}
			}
			if err := writeWith(output, doc.Write); err != nil {
				r.notifier.Failure("export", err)
				return err
			}
			r.notifier.Export(output, nil)
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d pages)\n", output, doc.Pages())
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().Float64SliceVar(&times, "at", nil, "media times to export, one page each")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PDF file to write")
	return cmd
}

// markTimes lists the distinct annotation times in order.
func markTimes(list []annotation.Annotation) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, a := range list {
		if !seen[a.Timestamp] {
			seen[a.Timestamp] = true
			out = append(out, a.Timestamp)
		}
	}
	sort.Float64s(out)
	return out
}

func writeWith(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
