package timeline

import (
	"testing"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

func at(id string, ts float64, dur *float64) annotation.Annotation {
	return annotation.Annotation{
		ID:        id,
		Kind:      annotation.KindArrow,
		Geometry:  annotation.Segment{Start: geom.Pt(0, 0), End: geom.Pt(1, 1)},
		Style:     annotation.Style{Color: "red", StrokeWidth: 1},
		Timestamp: ts,
		Duration:  dur,
	}
}

func TestSwingVideoLookup(t *testing.T) {
	ix := New([]annotation.Annotation{at("first", 10, nil), at("second", 50, nil)})

	got := ix.At(10.05, DefaultTolerance)
	if len(got) != 1 || got[0].ID != "first" {
		t.Fatalf("At(10.05) = %v", got)
	}
	if n, _ := ix.NextAfter(10); n.ID != "second" {
		t.Errorf("NextAfter(10) = %s, want second", n.ID)
	}
	if n, _ := ix.NextAfter(50); n.ID != "first" {
		t.Errorf("NextAfter(50) = %s, want wrap to first", n.ID)
	}
	if p, _ := ix.PreviousBefore(50); p.ID != "first" {
		t.Errorf("PreviousBefore(50) = %s, want first", p.ID)
	}
	if p, _ := ix.PreviousBefore(10); p.ID != "second" {
		t.Errorf("PreviousBefore(10) = %s, want wrap to second", p.ID)
	}
	if pos := MarkerPosition(50, 60); pos < 83.33 || pos > 83.34 {
		t.Errorf("marker position = %v", pos)
	}
}

func TestAtWindowAndTolerance(t *testing.T) {
	ix := New([]annotation.Annotation{at("w", 5, annotation.Float(2)), at("p", 6, nil)})
	cases := []struct {
		t    float64
		want string
	}{
		{4.85, ""},
		{4.95, "w"},
		{6.0, "wp"},
		{7.05, "w"},
		{7.2, ""},
	}
	for _, c := range cases {
		s := ""
		for _, a := range ix.At(c.t, DefaultTolerance) {
			s += a.ID
		}
		if s != c.want {
			t.Errorf("At(%v) = %q, want %q", c.t, s, c.want)
		}
	}
}

func TestAtKeepsStoreOrder(t *testing.T) {
	ix := New([]annotation.Annotation{at("late", 3, nil), at("early", 2.95, nil)})
	got := ix.At(3, DefaultTolerance)
	if len(got) != 2 || got[0].ID != "late" {
		t.Fatalf("At order = %v", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := New(nil)
	if _, ok := ix.NextAfter(0); ok {
		t.Error("NextAfter on empty index returned ok")
	}
	if _, ok := ix.PreviousBefore(0); ok {
		t.Error("PreviousBefore on empty index returned ok")
	}
}

func TestMarkerPositionGuard(t *testing.T) {
	if MarkerPosition(10, 0) != 0 || MarkerPosition(10, -5) != 0 {
		t.Fatal("expected 0 for non-positive duration")
	}
	ix := New([]annotation.Annotation{at("b", 30, nil), at("a", 15, nil)})
	m := ix.Markers(60)
	if len(m) != 2 || m[0].ID != "a" || m[0].Position != 25 || m[1].Position != 50 {
		t.Fatalf("markers = %+v", m)
	}
}
