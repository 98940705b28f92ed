// Package render draws annotation lists onto raster and vector surfaces.
package render

import (
	"fmt"
	"image/color"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

// Surface is a drawing target in logical pixels.
type Surface interface {
	Clear()
	Line(a, b geom.Point, c color.RGBA, width float64)
	Polyline(pts []geom.Point, c color.RGBA, width float64)
	Circle(center geom.Point, r float64, c color.RGBA, width float64)
	Arc(center geom.Point, r, start, sweep float64, c color.RGBA, width float64)
	// Text draws s with its top-left corner at anchor.
	Text(anchor geom.Point, s string, size float64, c color.RGBA)
}

// ColorResolver turns a stored color token into a concrete color.
type ColorResolver interface {
	Resolve(annotation.ColorToken) color.RGBA
}

// Options tune a redraw.
type Options struct {
	Colors ColorResolver
	// Selected is drawn with a halo in SelectionColor.
	Selected       string
	SelectionColor color.RGBA
	// Shadow, when set, is applied to the annotation layer by Frame.
	Shadow *ShadowOptions
}

// DefaultSelectionColor is a translucent white halo.
var DefaultSelectionColor = color.RGBA{R: 180, G: 180, B: 180, A: 180}

// Redraw clears s and draws committed in order, then preview on top.
func Redraw(s Surface, committed []annotation.Annotation, preview *annotation.Annotation, opts Options) {
	s.Clear()
	halo := opts.SelectionColor
	if halo.A == 0 {
		halo = DefaultSelectionColor
	}
	for _, a := range committed {
		if opts.Selected != "" && a.ID == opts.Selected {
			Draw(s, a, halo, a.Style.StrokeWidth+6)
		}
		Draw(s, a, opts.resolve(a.Style.Color), a.Style.StrokeWidth)
	}
	if preview != nil {
		Draw(s, *preview, opts.resolve(preview.Style.Color), preview.Style.StrokeWidth)
	}
}

func (o Options) resolve(tok annotation.ColorToken) color.RGBA {
	if o.Colors == nil {
		return color.RGBA{R: 255, A: 255}
	}
	return o.Colors.Resolve(tok)
}

// Draw renders a single annotation with an explicit color and width.
func Draw(s Surface, a annotation.Annotation, c color.RGBA, width float64) {
	switch g := a.Geometry.(type) {
	case annotation.Segment:
		switch a.Kind {
		case annotation.KindCircle:
			s.Circle(g.Start, geom.CircleRadius(g.Start, g.End), c, width)
		case annotation.KindArrow:
			s.Line(g.Start, g.End, c, width)
			h := geom.ArrowHead(g.Start, g.End, a.Style.StrokeWidth)
			s.Line(h.Left, h.Tip, c, width)
			s.Line(h.Right, h.Tip, c, width)
		default:
			s.Line(g.Start, g.End, c, width)
		}
	case annotation.AngleGeometry:
		m := geom.MeasureAngle(g.ArmA, g.Vertex, g.ArmB, a.Style.StrokeWidth)
		s.Line(g.Vertex, g.ArmA, c, width)
		s.Line(g.Vertex, g.ArmB, c, width)
		s.Arc(g.Vertex, m.ArcRadius, m.ArcStart, m.ArcSweep, c, width)
		size := geom.TextSize(a.Style.StrokeWidth)
		s.Text(m.Label.Sub(geom.Pt(size, size/2)), AngleLabel(m.Degrees), size, c)
	case annotation.FreehandGeometry:
		s.Polyline(g.Points, c, width)
	case annotation.TextGeometry:
		s.Text(g.Anchor, g.Text, geom.TextSize(a.Style.StrokeWidth), c)
	}
}

// AngleLabel formats a measured angle for display.
func AngleLabel(degrees float64) string {
	return fmt.Sprintf("%.1f°", degrees)
}
