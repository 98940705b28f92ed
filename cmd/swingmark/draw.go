package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/geom"
)

const drawUsage = `draw SHAPE COORDS...

  line|arrow X1 Y1 X2 Y2
  circle CX CY R
  angle AX AY VX VY BX BY   (arm, vertex, arm)
  freehand X Y X Y ...
  text X Y LABEL`

func newDrawCmd(r *root) *cobra.Command {
	var (
		jsonPath string
		at       float64
		color    string
		width    float64
		duration float64
	)
	cmd := &cobra.Command{
		Use:   drawUsage,
		Short: "Add one annotation without opening a window",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if color == "" {
				color = r.config.DefaultColor
			}
			if width <= 0 {
				width = r.config.DefaultWidth
			}
			kind, g, err := parseShape(args[0], args[1:])
			if err != nil {
				return err
			}
			a := annotation.New(kind, g, annotation.Style{Color: annotation.ColorToken(color), StrokeWidth: width}, at)
			if cmd.Flags().Changed("duration") {
				a.Duration = annotation.Float(duration)
			}

			if jsonPath != "" {
				if a.VideoID = r.config.Video; a.VideoID == "" {
					a.VideoID = videoFromPath(jsonPath)
				}
				if err := appendToFile(jsonPath, a); err != nil {
					return err
				}
			} else {
				video, err := r.videoID()
				if err != nil {
					return err
				}
				a.VideoID = video
				repo, err := r.repository()
				if err != nil {
					return err
				}
				if a, err = repo.Create(cmd.Context(), a); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "annotation file to append to instead of the data directory")
	cmd.Flags().Float64Var(&at, "at", 0, "media time in seconds")
	cmd.Flags().StringVar(&color, "color", "", "color token (default from config)")
	cmd.Flags().Float64Var(&width, "width", 0, "stroke width (default from config)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "seconds the mark stays visible")
	return cmd
}

// parseShape turns positional arguments into a geometry.
func parseShape(shape string, args []string) (annotation.ShapeKind, annotation.Geometry, error) {
	shape = strings.ToLower(shape)
	switch shape {
	case "line", "arrow":
		v, err := expectFloats(args, 4, shape)
		if err != nil {
			return "", nil, err
		}
		return annotation.ShapeKind(shape), annotation.Segment{Start: geom.Pt(v[0], v[1]), End: geom.Pt(v[2], v[3])}, nil
	case "circle":
		v, err := expectFloats(args, 3, shape)
		if err != nil {
			return "", nil, err
		}
		return annotation.KindCircle, annotation.Segment{Start: geom.Pt(v[0], v[1]), End: geom.Pt(v[0]+v[2], v[1])}, nil
	case "angle":
		v, err := expectFloats(args, 6, shape)
		if err != nil {
			return "", nil, err
		}
		return annotation.KindAngle, annotation.AngleGeometry{ArmA: geom.Pt(v[0], v[1]), Vertex: geom.Pt(v[2], v[3]), ArmB: geom.Pt(v[4], v[5])}, nil
	case "freehand":
		if len(args) < 4 || len(args)%2 != 0 {
			return "", nil, fmt.Errorf("freehand requires an even number of coordinates, at least 4")
		}
		v, err := expectFloats(args, len(args), shape)
		if err != nil {
			return "", nil, err
		}
		pts := make([]geom.Point, 0, len(v)/2)
		for i := 0; i < len(v); i += 2 {
			pts = append(pts, geom.Pt(v[i], v[i+1]))
		}
		return annotation.KindFreehand, annotation.FreehandGeometry{Points: pts}, nil
	case "text":
		if len(args) < 3 {
			return "", nil, fmt.Errorf("text requires X Y and a label")
		}
		v, err := expectFloats(args[:2], 2, shape)
		if err != nil {
			return "", nil, err
		}
		return annotation.KindText, annotation.TextGeometry{Anchor: geom.Pt(v[0], v[1]), Text: strings.Join(args[2:], " ")}, nil
	}
	return "", nil, fmt.Errorf("unknown shape %q", shape)
}

func expectFloats(args []string, n int, shape string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d coordinates", shape, n)
	}
	out := make([]float64, n)
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// appendToFile adds a to the set stored at path, creating the file.
func appendToFile(path string, a annotation.Annotation) error {
	var list []annotation.Annotation
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if list, err = codec.Deserialize(data); err != nil {
			return err
		}
	}
	if err := a.Validate(); err != nil {
		return err
	}
	out, err := codec.Serialize(append(list, a))
	if err != nil {
		return err
	}
	return writeFileAtomic(path, out)
}
