package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/swingmark/internal/annotation"
)

// wirePatch mirrors wireRecord with every field optional. A JSON null
// duration clears the window.
type wirePatch struct {
	ShapeKind   string          `json:"shapeKind,omitempty"`
	Geometry    json.RawMessage `json:"geometry,omitempty"`
	Style       *wireStyle      `json:"style,omitempty"`
	Color       string          `json:"color,omitempty"`
	StrokeWidth *float64        `json:"strokeWidth,omitempty"`
	Timestamp   *float64        `json:"timestamp,omitempty"`
	Duration    json.RawMessage `json:"duration,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

// MarshalPatch encodes p as a request body.
func MarshalPatch(p annotation.Patch) ([]byte, error) {
	var w wirePatch
	if p.Geometry != nil {
		g, err := encodeGeometry(p.Geometry)
		if err != nil {
			return nil, err
		}
		w.Geometry = g
		w.ShapeKind = string(kindOf(p.Geometry))
	}
	if p.Style != nil {
		sw := p.Style.StrokeWidth
		w.Style = &wireStyle{Color: string(p.Style.Color), StrokeWidth: &sw}
	}
	w.Timestamp = p.Timestamp
	switch {
	case p.ClearDuration:
		w.Duration = json.RawMessage("null")
	case p.Duration != nil:
		d, err := json.Marshal(*p.Duration)
		if err != nil {
			return nil, err
		}
		w.Duration = d
	}
	w.UpdatedAt = p.UpdatedAt
	return json.Marshal(w)
}

// UnmarshalPatch decodes a request body. The style must arrive whole,
// either nested or as both flat fields.
func UnmarshalPatch(data []byte) (annotation.Patch, error) {
	var w wirePatch
	if err := json.Unmarshal(data, &w); err != nil {
		return annotation.Patch{}, err
	}
	var p annotation.Patch
	if len(w.Geometry) > 0 {
		var kind annotation.ShapeKind
		if w.ShapeKind != "" {
			k, ok := annotation.ParseKind(w.ShapeKind)
			if !ok {
				return annotation.Patch{}, fmt.Errorf("unknown shapeKind %q", w.ShapeKind)
			}
			kind = k
		}
		g, err := decodeGeometry(w.Geometry, kind)
		if err != nil {
			return annotation.Patch{}, err
		}
		p.Geometry = g
	}
	style, err := styleOf(w.Style, w.Color, w.StrokeWidth)
	if err != nil {
		return annotation.Patch{}, err
	}
	p.Style = style
	p.Timestamp = w.Timestamp
	if len(w.Duration) > 0 {
		if string(bytes.TrimSpace(w.Duration)) == "null" {
			p.ClearDuration = true
		} else {
			var d float64
			if err := json.Unmarshal(w.Duration, &d); err != nil {
				return annotation.Patch{}, fmt.Errorf("duration: %w", err)
			}
			p.Duration = &d
		}
	}
	p.UpdatedAt = w.UpdatedAt
	if p.Empty() && p.UpdatedAt == "" {
		return annotation.Patch{}, errors.New("patch changes nothing")
	}
	return p, nil
}

// kindOf picks a kind the geometry fits; segments are sent as lines and
// the receiver keeps the record's own kind.
func kindOf(g annotation.Geometry) annotation.ShapeKind {
	switch g.(type) {
	case annotation.AngleGeometry:
		return annotation.KindAngle
	case annotation.FreehandGeometry:
		return annotation.KindFreehand
	case annotation.TextGeometry:
		return annotation.KindText
	}
	return annotation.KindLine
}
