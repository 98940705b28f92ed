package coords

import (
	"errors"
	"testing"

	"github.com/example/swingmark/internal/geom"
)

func TestMapToLogicalHalfScale(t *testing.T) {
	p, err := MapToLogical(Pointer(480, 270), Rect{Width: 960, Height: 540}, 1920, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if p != geom.Pt(960, 540) {
		t.Fatalf("got %v, want (960,540)", p)
	}
}

func TestMapToLogicalSubtractsOrigin(t *testing.T) {
	p, err := MapToLogical(Pointer(110, 70), Rect{X: 100, Y: 50, Width: 200, Height: 100}, 400, 200)
	if err != nil {
		t.Fatal(err)
	}
	if p != geom.Pt(20, 40) {
		t.Fatalf("got %v, want (20,40)", p)
	}
}

func TestMapToLogicalFirstTouch(t *testing.T) {
	in := Touch(geom.Pt(10, 10), geom.Pt(90, 90))
	in.ClientX, in.ClientY, in.HasPointer = 50, 50, true
	p, err := MapToLogical(in, Rect{Width: 100, Height: 100}, 200, 200)
	if err != nil {
		t.Fatal(err)
	}
	if p != geom.Pt(20, 20) {
		t.Fatalf("got %v, want first touch scaled to (20,20)", p)
	}
}

func TestMapToLogicalErrors(t *testing.T) {
	if _, err := MapToLogical(Pointer(1, 1), Rect{Width: 0, Height: 10}, 10, 10); !errors.Is(err, ErrEmptyRect) {
		t.Errorf("expected ErrEmptyRect, got %v", err)
	}
	if _, err := MapToLogical(Input{}, Rect{Width: 10, Height: 10}, 10, 10); !errors.Is(err, ErrNoPosition) {
		t.Errorf("expected ErrNoPosition, got %v", err)
	}
}

type countingSurface struct {
	reads int
	rect  Rect
}

func (c *countingSurface) ScreenRect() Rect { c.reads++; return c.rect }
func (c *countingSurface) LogicalSize() (float64, float64) { return 1920, 1080 }

func TestMapperCachesUntilInvalidated(t *testing.T) {
	s := &countingSurface{rect: Rect{Width: 960, Height: 540}}
	m := NewMapper(s)
	for i := 0; i < 5; i++ {
		if _, err := m.Map(Pointer(1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if s.reads != 1 {
		t.Fatalf("rect read %d times, want 1", s.reads)
	}
	s.rect = Rect{Width: 1920, Height: 1080}
	m.Invalidate()
	p, _ := m.Map(Pointer(100, 100))
	if s.reads != 2 || p != geom.Pt(100, 100) {
		t.Fatalf("after invalidate reads=%d p=%v", s.reads, p)
	}
}
