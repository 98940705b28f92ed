// Package annotation defines the committed vector mark and its validation
// rules.
package annotation

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/example/swingmark/internal/geom"
)

// ShapeKind identifies the geometry a record carries.
type ShapeKind string

const (
	KindLine     ShapeKind = "line"
	KindCircle   ShapeKind = "circle"
	KindArrow    ShapeKind = "arrow"
	KindAngle    ShapeKind = "angle"
	KindFreehand ShapeKind = "freehand"
	KindText     ShapeKind = "text"
)

// Kinds lists every shape kind in toolbar order.
func Kinds() []ShapeKind {
	return []ShapeKind{KindLine, KindCircle, KindArrow, KindAngle, KindFreehand, KindText}
}

// ParseKind matches a kind name case-insensitively.
func ParseKind(s string) (ShapeKind, bool) {
	k := ShapeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// ColorToken names a palette color ("red") or holds a hex value ("#ff0000").
type ColorToken string

// Style is the stroke appearance of a record.
type Style struct {
	Color       ColorToken `json:"color"`
	StrokeWidth float64    `json:"strokeWidth"`
}

// Annotation is a committed mark. Records are values: edits build a new
// version with the same ID rather than changing fields in place.
type Annotation struct {
	ID        string
	VideoID   string
	Kind      ShapeKind
	Geometry  Geometry
	Style     Style
	Timestamp float64
	Duration  *float64
	CreatedAt string
	UpdatedAt string
}

// NewID returns a fresh opaque identifier.
func NewID() string { return uuid.NewString() }

// End is the media time at which the record stops being active, ignoring
// any tolerance.
func (a Annotation) End() float64 {
	if a.Duration == nil {
		return a.Timestamp
	}
	return a.Timestamp + *a.Duration
}

// Clone returns a deep copy so callers can derive a new version safely.
func (a Annotation) Clone() Annotation {
	out := a
	if a.Geometry != nil {
		out.Geometry = a.Geometry.clone()
	}
	if a.Duration != nil {
		d := *a.Duration
		out.Duration = &d
	}
	return out
}

// Equal reports field-for-field equality, geometry included.
func (a Annotation) Equal(b Annotation) bool {
	if a.ID != b.ID || a.VideoID != b.VideoID || a.Kind != b.Kind || a.Style != b.Style ||
		a.Timestamp != b.Timestamp || a.CreatedAt != b.CreatedAt || a.UpdatedAt != b.UpdatedAt {
		return false
	}
	if (a.Duration == nil) != (b.Duration == nil) {
		return false
	}
	if a.Duration != nil && *a.Duration != *b.Duration {
		return false
	}
	if a.Geometry == nil || b.Geometry == nil {
		return a.Geometry == nil && b.Geometry == nil
	}
	return a.Geometry.equal(b.Geometry)
}

// EqualLists compares two ordered lists with Equal.
func EqualLists(a, b []Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Float returns a pointer to v, for optional durations.
func Float(v float64) *float64 { return &v }

// Validate checks every record invariant and returns a *ValidationError on
// the first violation.
func (a Annotation) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return invalid("id", "must not be empty")
	}
	if _, ok := ParseKind(string(a.Kind)); !ok || ShapeKind(strings.ToLower(string(a.Kind))) != a.Kind {
		return invalid("shapeKind", fmt.Sprintf("unknown kind %q", a.Kind))
	}
	if a.Geometry == nil {
		return invalid("geometry", "missing")
	}
	if !a.Geometry.fits(a.Kind) {
		return invalid("geometry", fmt.Sprintf("%T does not match kind %s", a.Geometry, a.Kind))
	}
	if err := a.Geometry.validate(); err != nil {
		return err
	}
	if !finite(a.Timestamp) || a.Timestamp < 0 {
		return invalid("timestamp", "must be a finite value >= 0")
	}
	if a.Duration != nil && (!finite(*a.Duration) || *a.Duration < 0) {
		return invalid("duration", "must be a finite value >= 0")
	}
	if !finite(a.Style.StrokeWidth) || a.Style.StrokeWidth <= 0 {
		return invalid("strokeWidth", "must be > 0")
	}
	if strings.TrimSpace(string(a.Style.Color)) == "" {
		return invalid("color", "must not be empty")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// New builds a record for kind with a fresh id. The result is not
// validated.
func New(kind ShapeKind, g Geometry, style Style, timestamp float64) Annotation {
	return Annotation{
		ID:        NewID(),
		Kind:      kind,
		Geometry:  g,
		Style:     style,
		Timestamp: timestamp,
	}
}

// Points returns every defining point of the geometry, in a stable order.
func (a Annotation) Points() []geom.Point {
	if a.Geometry == nil {
		return nil
	}
	return a.Geometry.points()
}
