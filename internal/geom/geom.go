// Package geom holds the shape math shared by the tool machine, the render
// surfaces and hit testing. Nothing here mutates its inputs.
package geom

import "math"

// Point is a position in logical surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Lerp returns the point t of the way from a to b.
func Lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Polar returns the point at radius r and angle theta (radians) around c.
func Polar(c Point, r, theta float64) Point {
	return Point{c.X + math.Cos(theta)*r, c.Y + math.Sin(theta)*r}
}

// CircleRadius is the radius of a circle dragged out from center to edge.
func CircleRadius(center, edge Point) float64 {
	return Distance(center, edge)
}

// Bounds is an axis aligned box in logical pixels.
type Bounds struct {
	Min, Max Point
}

// BoundsOf returns the smallest box containing every point. An empty list
// yields the zero box.
func BoundsOf(pts ...Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// Inset grows (negative n) or shrinks the box on every side.
func (b Bounds) Inset(n float64) Bounds {
	return Bounds{Min: Point{b.Min.X + n, b.Min.Y + n}, Max: Point{b.Max.X - n, b.Max.Y - n}}
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }
