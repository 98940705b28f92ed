package geom

import "math"

// Head describes the two strokes of an arrow head. Both strokes run from
// Left or Right to Tip.
type Head struct {
	Length float64
	Tip    Point
	Left   Point
	Right  Point
}

// ArrowHead computes the head for a shaft from start to end. The head length
// is four times the stroke width and each stroke sits π/6 off the reversed
// shaft direction.
func ArrowHead(start, end Point, strokeWidth float64) Head {
	length := strokeWidth * 4
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	a1 := angle + math.Pi/6
	a2 := angle - math.Pi/6
	return Head{
		Length: length,
		Tip:    end,
		Left:   Point{end.X - math.Cos(a1)*length, end.Y - math.Sin(a1)*length},
		Right:  Point{end.X - math.Cos(a2)*length, end.Y - math.Sin(a2)*length},
	}
}

// AngleMeasure is the derived presentation of a three point angle.
type AngleMeasure struct {
	Degrees   float64
	Angle1    float64 // radians, vertex to first arm
	Angle2    float64 // radians, vertex to second arm
	ArcRadius float64
	// ArcStart and ArcSweep (radians) trace the interior angle; the sweep
	// is signed so that Angle1+ArcSweep lands on Angle2's ray.
	ArcStart float64
	ArcSweep float64
	Label    Point
}

// MeasureAngle measures the interior angle at vertex between the rays to p1
// and p2, in click order.
func MeasureAngle(p1, vertex, p2 Point, strokeWidth float64) AngleMeasure {
	a1 := math.Atan2(p1.Y-vertex.Y, p1.X-vertex.X)
	a2 := math.Atan2(p2.Y-vertex.Y, p2.X-vertex.X)
	d := deg(a2 - a1)
	if d < 0 {
		d += 360
	}
	sweep := d * math.Pi / 180
	if d > 180 {
		d = 360 - d
		sweep = sweep - 2*math.Pi
	}
	r := strokeWidth * 8
	return AngleMeasure{
		Degrees:   d,
		Angle1:    a1,
		Angle2:    a2,
		ArcRadius: r,
		ArcStart:  a1,
		ArcSweep:  sweep,
		Label:     Polar(vertex, r*1.5, (a1+a2)/2),
	}
}

// ArcPoints flattens an arc into a polyline of at least two points.
func ArcPoints(c Point, r, start, sweep float64) []Point {
	steps := int(math.Ceil(math.Abs(sweep) * r / 2))
	if steps < 8 {
		steps = 8
	}
	pts := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		pts = append(pts, Polar(c, r, start+sweep*float64(i)/float64(steps)))
	}
	return pts
}

// TextSize is the font size used for text annotations at a stroke width.
func TextSize(strokeWidth float64) float64 {
	return math.Max(12, strokeWidth*6)
}

// DistanceToSegment returns the shortest distance from p to the segment ab.
func DistanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, Point{a.X + t*dx, a.Y + t*dy})
}

// DistanceToPolyline returns the shortest distance from p to any segment of
// pts. A single point polyline measures to that point.
func DistanceToPolyline(p Point, pts []Point) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(p, pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = math.Min(best, DistanceToSegment(p, pts[i-1], pts[i]))
	}
	return best
}

// DistanceToCircle returns the distance from p to the outline of a circle.
func DistanceToCircle(p, center Point, r float64) float64 {
	return math.Abs(Distance(p, center) - r)
}
