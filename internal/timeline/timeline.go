// Package timeline answers which annotations are active at a media time and
// where the neighbouring marks are.
package timeline

import (
	"sort"

	"github.com/example/swingmark/internal/annotation"
)

const (
	// DefaultTolerance widens every active window on both sides, in seconds.
	DefaultTolerance = 0.1
	// Epsilon keeps next/previous from re-selecting the mark at the current
	// time.
	Epsilon = 0.1
)

// Index is a read-only view over a store snapshot.
type Index struct {
	items  []annotation.Annotation
	sorted []annotation.Annotation
}

// New indexes list, which is kept in its given order for At.
func New(list []annotation.Annotation) *Index {
	sorted := append([]annotation.Annotation(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })
	return &Index{items: list, sorted: sorted}
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.items) }

// Active reports whether a is active at t with the given tolerance.
func Active(a annotation.Annotation, t, tolerance float64) bool {
	return t >= a.Timestamp-tolerance && t <= a.End()+tolerance
}

// At returns the records active at t, in store order.
func (ix *Index) At(t, tolerance float64) []annotation.Annotation {
	var out []annotation.Annotation
	for _, a := range ix.items {
		if Active(a, t, tolerance) {
			out = append(out, a)
		}
	}
	return out
}

// NextAfter returns the first record with a timestamp past t+Epsilon,
// wrapping to the earliest. ok is false only for an empty index.
func (ix *Index) NextAfter(t float64) (annotation.Annotation, bool) {
	if len(ix.sorted) == 0 {
		return annotation.Annotation{}, false
	}
	for _, a := range ix.sorted {
		if a.Timestamp > t+Epsilon {
			return a, true
		}
	}
	return ix.sorted[0], true
}

// PreviousBefore returns the last record with a timestamp before t-Epsilon,
// wrapping to the latest.
func (ix *Index) PreviousBefore(t float64) (annotation.Annotation, bool) {
	if len(ix.sorted) == 0 {
		return annotation.Annotation{}, false
	}
	for i := len(ix.sorted) - 1; i >= 0; i-- {
		if ix.sorted[i].Timestamp < t-Epsilon {
			return ix.sorted[i], true
		}
	}
	return ix.sorted[len(ix.sorted)-1], true
}

// MarkerPosition is the marker offset in percent of the timeline width.
func MarkerPosition(ts, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return ts / duration * 100
}

// Marker is one tick on a timeline bar.
type Marker struct {
	ID       string
	Kind     annotation.ShapeKind
	Time     float64
	Position float64
}

// Markers lists one marker per record in time order.
func (ix *Index) Markers(duration float64) []Marker {
	out := make([]Marker, 0, len(ix.sorted))
	for _, a := range ix.sorted {
		out = append(out, Marker{ID: a.ID, Kind: a.Kind, Time: a.Timestamp, Position: MarkerPosition(a.Timestamp, duration)})
	}
	return out
}
