// Package coords maps device input positions onto the logical pixel space
// of an annotation surface.
package coords

import (
	"errors"

	"github.com/example/swingmark/internal/geom"
)

// ErrEmptyRect is returned when the surface has no on-screen area.
var ErrEmptyRect = errors.New("surface rect has zero size")

// ErrNoPosition is returned for an input with neither pointer nor touch.
var ErrNoPosition = errors.New("input has no pointer or touch position")

// Rect is the surface's on-screen bounding box in device pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Input is a raw device event position. When Touches is non-empty the first
// touch wins over the pointer position.
type Input struct {
	ClientX, ClientY float64
	Touches          []geom.Point
	HasPointer       bool
}

// Pointer builds a pointer input.
func Pointer(x, y float64) Input { return Input{ClientX: x, ClientY: y, HasPointer: true} }

// Touch builds a touch input from the active touch points.
func Touch(pts ...geom.Point) Input { return Input{Touches: pts} }

func (in Input) position() (geom.Point, bool) {
	if len(in.Touches) > 0 {
		return in.Touches[0], true
	}
	return geom.Pt(in.ClientX, in.ClientY), in.HasPointer
}

// MapToLogical converts in to logical surface pixels. The rect origin is
// subtracted before scaling by logical size over displayed size.
func MapToLogical(in Input, r Rect, logicalW, logicalH float64) (geom.Point, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return geom.Point{}, ErrEmptyRect
	}
	p, ok := in.position()
	if !ok {
		return geom.Point{}, ErrNoPosition
	}
	scaleX := logicalW / r.Width
	scaleY := logicalH / r.Height
	return geom.Pt((p.X-r.X)*scaleX, (p.Y-r.Y)*scaleY), nil
}

// Surface reports where a drawing surface sits on screen and its intrinsic
// size.
type Surface interface {
	ScreenRect() Rect
	LogicalSize() (w, h float64)
}

// Mapper caches the surface geometry between resizes so layout is read once
// per resize rather than per event.
type Mapper struct {
	surface Surface
	cached  bool
	rect    Rect
	w, h    float64
}

// NewMapper returns a Mapper for s.
func NewMapper(s Surface) *Mapper { return &Mapper{surface: s} }

// Invalidate drops the cached snapshot; call it on resize or relayout.
func (m *Mapper) Invalidate() { m.cached = false }

// Map converts in using the cached snapshot, refreshing it if needed.
func (m *Mapper) Map(in Input) (geom.Point, error) {
	if !m.cached {
		m.rect = m.surface.ScreenRect()
		m.w, m.h = m.surface.LogicalSize()
		m.cached = true
	}
	return MapToLogical(in, m.rect, m.w, m.h)
}

// StaticSurface is a fixed Surface, useful when the caller already knows the
// layout.
type StaticSurface struct {
	Rect          Rect
	Width, Height float64
}

func (s StaticSurface) ScreenRect() Rect { return s.Rect }
func (s StaticSurface) LogicalSize() (float64, float64) { return s.Width, s.Height }
