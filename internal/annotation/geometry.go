package annotation

import (
	"fmt"
	"strings"

	"github.com/example/swingmark/internal/geom"
)

// Geometry is the kind specific payload of a record. The concrete types
// are Segment, AngleGeometry, FreehandGeometry and TextGeometry.
type Geometry interface {
	fits(ShapeKind) bool
	validate() error
	points() []geom.Point
	clone() Geometry
	equal(Geometry) bool
}

// Segment is a two point shape. For circles Start is the center and End
// lies on the outline.
type Segment struct {
	Start geom.Point
	End   geom.Point
}

// AngleGeometry is three clicks; Vertex is the middle one.
type AngleGeometry struct {
	Vertex geom.Point
	ArmA   geom.Point
	ArmB   geom.Point
}

// FreehandGeometry is the raw pointer path.
type FreehandGeometry struct {
	Points []geom.Point
}

// TextGeometry is a label anchored at its top-left corner.
type TextGeometry struct {
	Anchor geom.Point
	Text   string
}

func (Segment) fits(k ShapeKind) bool {
	return k == KindLine || k == KindArrow || k == KindCircle
}
func (AngleGeometry) fits(k ShapeKind) bool    { return k == KindAngle }
func (FreehandGeometry) fits(k ShapeKind) bool { return k == KindFreehand }
func (TextGeometry) fits(k ShapeKind) bool     { return k == KindText }

func (g Segment) validate() error {
	return finitePoints("geometry", g.Start, g.End)
}

func (g AngleGeometry) validate() error {
	return finitePoints("geometry", g.ArmA, g.Vertex, g.ArmB)
}

func (g FreehandGeometry) validate() error {
	if len(g.Points) < 2 {
		return invalid("geometry.points", fmt.Sprintf("freehand needs at least 2 points, got %d", len(g.Points)))
	}
	return finitePoints("geometry.points", g.Points...)
}

func (g TextGeometry) validate() error {
	if strings.TrimSpace(g.Text) == "" {
		return invalid("geometry.text", "must not be blank")
	}
	return finitePoints("geometry.anchor", g.Anchor)
}

func (g Segment) points() []geom.Point       { return []geom.Point{g.Start, g.End} }
func (g AngleGeometry) points() []geom.Point { return []geom.Point{g.ArmA, g.Vertex, g.ArmB} }
func (g FreehandGeometry) points() []geom.Point {
	return append([]geom.Point(nil), g.Points...)
}
func (g TextGeometry) points() []geom.Point { return []geom.Point{g.Anchor} }

func (g Segment) clone() Geometry       { return g }
func (g AngleGeometry) clone() Geometry { return g }
func (g FreehandGeometry) clone() Geometry {
	return FreehandGeometry{Points: append([]geom.Point(nil), g.Points...)}
}
func (g TextGeometry) clone() Geometry { return g }

func (g Segment) equal(o Geometry) bool {
	h, ok := o.(Segment)
	return ok && g == h
}

func (g AngleGeometry) equal(o Geometry) bool {
	h, ok := o.(AngleGeometry)
	return ok && g == h
}

func (g FreehandGeometry) equal(o Geometry) bool {
	h, ok := o.(FreehandGeometry)
	if !ok || len(g.Points) != len(h.Points) {
		return false
	}
	for i := range g.Points {
		if g.Points[i] != h.Points[i] {
			return false
		}
	}
	return true
}

func (g TextGeometry) equal(o Geometry) bool {
	h, ok := o.(TextGeometry)
	return ok && g == h
}

func finitePoints(field string, pts ...geom.Point) error {
	for i, p := range pts {
		if !p.Finite() {
			return invalid(field, fmt.Sprintf("point %d is not finite", i))
		}
	}
	return nil
}
