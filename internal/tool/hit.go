package tool

import (
	"math"
	"unicode/utf8"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

// Hit reports whether p lands on a's stroke, allowing slop pixels beyond
// half the stroke width.
func Hit(a annotation.Annotation, p geom.Point, slop float64) bool {
	tol := a.Style.StrokeWidth/2 + slop
	switch g := a.Geometry.(type) {
	case annotation.Segment:
		if a.Kind == annotation.KindCircle {
			return geom.DistanceToCircle(p, g.Start, geom.CircleRadius(g.Start, g.End)) <= tol
		}
		if geom.DistanceToSegment(p, g.Start, g.End) <= tol {
			return true
		}
		if a.Kind == annotation.KindArrow {
			h := geom.ArrowHead(g.Start, g.End, a.Style.StrokeWidth)
			return geom.DistanceToSegment(p, h.Left, h.Tip) <= tol || geom.DistanceToSegment(p, h.Right, h.Tip) <= tol
		}
		return false
	case annotation.AngleGeometry:
		d := math.Min(geom.DistanceToSegment(p, g.Vertex, g.ArmA), geom.DistanceToSegment(p, g.Vertex, g.ArmB))
		return d <= tol
	case annotation.FreehandGeometry:
		return geom.DistanceToPolyline(p, g.Points) <= tol
	case annotation.TextGeometry:
		return TextBounds(g, a.Style.StrokeWidth).Inset(-slop).Contains(p)
	}
	return false
}

// TextBounds estimates the box a label occupies from its anchor.
func TextBounds(g annotation.TextGeometry, strokeWidth float64) geom.Bounds {
	size := geom.TextSize(strokeWidth)
	w := float64(utf8.RuneCountInString(g.Text)) * size * 0.6
	return geom.Bounds{Min: g.Anchor, Max: geom.Pt(g.Anchor.X+w, g.Anchor.Y+size*1.2)}
}
