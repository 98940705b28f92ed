package geom

import (
	"math"
	"testing"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestArrowHeadHorizontal(t *testing.T) {
	h := ArrowHead(Pt(0, 0), Pt(100, 0), 3)
	if h.Length != 12 {
		t.Fatalf("head length = %v, want 12", h.Length)
	}
	if h.Tip != Pt(100, 0) {
		t.Fatalf("tip = %v, want (100,0)", h.Tip)
	}
	for _, p := range []Point{h.Left, h.Right} {
		if !near(Distance(p, h.Tip), 12, 1e-9) {
			t.Errorf("stroke length = %v, want 12", Distance(p, h.Tip))
		}
		// reversed shaft points along -x; each stroke sits 30° off it
		a := math.Atan2(p.Y-h.Tip.Y, p.X-h.Tip.X)
		off := math.Abs(math.Abs(a) - math.Pi)
		if !near(off, math.Pi/6, 1e-9) {
			t.Errorf("stroke angle offset = %v, want π/6", off)
		}
	}
	if h.Left.Y*h.Right.Y >= 0 {
		t.Errorf("strokes on the same side: %v %v", h.Left, h.Right)
	}
}

func TestMeasureAngleRightAngle(t *testing.T) {
	m := MeasureAngle(Pt(2, 0), Pt(1, 0), Pt(1, 1), 2)
	if !near(m.Degrees, 90, 0.01) {
		t.Fatalf("degrees = %v, want 90", m.Degrees)
	}
	if m.ArcRadius != 16 {
		t.Errorf("arc radius = %v, want 16", m.ArcRadius)
	}
	if !near(Distance(m.Label, Pt(1, 0)), 24, 1e-9) {
		t.Errorf("label radius = %v, want 24", Distance(m.Label, Pt(1, 0)))
	}
}

func TestMeasureAngleReflex(t *testing.T) {
	cases := []struct {
		p1, v, p2 Point
		want      float64
	}{
		{Pt(1, 0), Pt(0, 0), Pt(0, -1), 90},
		{Pt(0, -1), Pt(0, 0), Pt(1, 0), 90},
		{Pt(1, 0), Pt(0, 0), Pt(-1, 0), 180},
		{Pt(1, 0), Pt(0, 0), Pt(1, 0), 0},
		{Pt(1, 0), Pt(0, 0), Pt(-1, -1), 135},
	}
	for _, c := range cases {
		m := MeasureAngle(c.p1, c.v, c.p2, 1)
		if !near(m.Degrees, c.want, 0.01) {
			t.Errorf("angle(%v,%v,%v) = %v, want %v", c.p1, c.v, c.p2, m.Degrees, c.want)
		}
		if !near(math.Abs(m.ArcSweep)*180/math.Pi, c.want, 0.01) {
			t.Errorf("sweep(%v,%v,%v) = %v", c.p1, c.v, c.p2, m.ArcSweep)
		}
	}
}

func TestCircleRadius(t *testing.T) {
	if r := CircleRadius(Pt(10, 10), Pt(13, 14)); r != 5 {
		t.Fatalf("radius = %v, want 5", r)
	}
}

func TestDistanceToSegment(t *testing.T) {
	if d := DistanceToSegment(Pt(5, 3), Pt(0, 0), Pt(10, 0)); d != 3 {
		t.Errorf("mid distance = %v", d)
	}
	if d := DistanceToSegment(Pt(13, 4), Pt(0, 0), Pt(10, 0)); d != 5 {
		t.Errorf("end distance = %v", d)
	}
	if d := DistanceToSegment(Pt(3, 4), Pt(0, 0), Pt(0, 0)); d != 5 {
		t.Errorf("degenerate distance = %v", d)
	}
}

func TestArcPointsEnds(t *testing.T) {
	pts := ArcPoints(Pt(0, 0), 10, 0, math.Pi/2)
	if !near(pts[0].X, 10, 1e-9) || !near(pts[len(pts)-1].Y, 10, 1e-9) {
		t.Fatalf("unexpected arc ends %v %v", pts[0], pts[len(pts)-1])
	}
}
