// Package codec converts annotation lists to and from their JSON wire form.
//
// The encoder writes each record with both a nested "style" object and the
// flattened "color"/"strokeWidth" fields older clients read. The decoder
// accepts either, a bare array or an {"annotations": [...]} envelope,
// case-insensitive kind names, and angle geometry stored as a three element
// "points" list.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

// DecodeError reports malformed input. Index is the offending record, or -1
// when the document itself could not be read.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode annotations: %v", e.Err)
	}
	return fmt.Sprintf("decode annotation %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type wireStyle struct {
	Color       string   `json:"color"`
	StrokeWidth *float64 `json:"strokeWidth"`
}

type wireRecord struct {
	ID          string          `json:"id"`
	VideoID     string          `json:"videoId,omitempty"`
	ShapeKind   string          `json:"shapeKind"`
	Geometry    json.RawMessage `json:"geometry"`
	Style       *wireStyle      `json:"style,omitempty"`
	Color       string          `json:"color,omitempty"`
	StrokeWidth *float64        `json:"strokeWidth,omitempty"`
	Timestamp   float64         `json:"timestamp"`
	Duration    *float64        `json:"duration,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

type envelope struct {
	Annotations []json.RawMessage `json:"annotations"`
}

// Serialize encodes list in order. Every record must be valid.
func Serialize(list []annotation.Annotation) ([]byte, error) {
	out := make([]wireRecord, 0, len(list))
	for i, a := range list {
		w, err := toWire(a)
		if err != nil {
			return nil, fmt.Errorf("encode annotation %d: %w", i, err)
		}
		out = append(out, w)
	}
	return json.MarshalIndent(out, "", "  ")
}

// Deserialize decodes a document produced by Serialize or any of the
// accepted legacy forms. On error nothing is returned.
func Deserialize(data []byte) ([]annotation.Annotation, error) {
	raws, err := splitDocument(data)
	if err != nil {
		return nil, &DecodeError{Index: -1, Err: err}
	}
	list := make([]annotation.Annotation, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		a, err := decodeRecord(raw)
		if err == nil {
			err = a.Validate()
		}
		if err == nil && seen[a.ID] {
			err = fmt.Errorf("duplicate id %q", a.ID)
		}
		if err != nil {
			return nil, &DecodeError{Index: i, Err: err}
		}
		seen[a.ID] = true
		list = append(list, a)
	}
	return list, nil
}

func splitDocument(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if env.Annotations == nil {
			return nil, errors.New(`object has no "annotations" list`)
		}
		return env.Annotations, nil
	}
	return nil, fmt.Errorf("unexpected %q at start of document", trimmed[0])
}

// MarshalRecord encodes a single record.
func MarshalRecord(a annotation.Annotation) ([]byte, error) {
	w, err := toWire(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalRecord decodes and validates a single record. A record sent
// without an id is given a fresh one, as happens on create.
func UnmarshalRecord(data []byte) (annotation.Annotation, error) {
	a, err := decodeRecord(data)
	if err != nil {
		return annotation.Annotation{}, err
	}
	if strings.TrimSpace(a.ID) == "" {
		a.ID = annotation.NewID()
	}
	if err := a.Validate(); err != nil {
		return annotation.Annotation{}, err
	}
	return a, nil
}

func toWire(a annotation.Annotation) (wireRecord, error) {
	if err := a.Validate(); err != nil {
		return wireRecord{}, err
	}
	g, err := encodeGeometry(a.Geometry)
	if err != nil {
		return wireRecord{}, err
	}
	sw := a.Style.StrokeWidth
	return wireRecord{
		ID:          a.ID,
		VideoID:     a.VideoID,
		ShapeKind:   string(a.Kind),
		Geometry:    g,
		Style:       &wireStyle{Color: string(a.Style.Color), StrokeWidth: &sw},
		Color:       string(a.Style.Color),
		StrokeWidth: &sw,
		Timestamp:   a.Timestamp,
		Duration:    a.Duration,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func decodeRecord(data []byte) (annotation.Annotation, error) {
	var w wireRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return annotation.Annotation{}, err
	}
	kind, ok := annotation.ParseKind(w.ShapeKind)
	if !ok {
		return annotation.Annotation{}, fmt.Errorf("unknown shapeKind %q", w.ShapeKind)
	}
	g, err := decodeGeometry(w.Geometry, kind)
	if err != nil {
		return annotation.Annotation{}, err
	}
	style, err := styleOf(w.Style, w.Color, w.StrokeWidth)
	if err != nil {
		return annotation.Annotation{}, err
	}
	if style == nil {
		return annotation.Annotation{}, errors.New("missing style")
	}
	return annotation.Annotation{
		ID:        w.ID,
		VideoID:   w.VideoID,
		Kind:      kind,
		Geometry:  g,
		Style:     *style,
		Timestamp: w.Timestamp,
		Duration:  w.Duration,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}, nil
}

// styleOf prefers the nested style and falls back to the flat fields. It
// returns nil when neither is present.
func styleOf(nested *wireStyle, color string, width *float64) (*annotation.Style, error) {
	if nested != nil {
		color = nested.Color
		width = nested.StrokeWidth
	}
	switch {
	case color == "" && width == nil:
		return nil, nil
	case width == nil:
		return nil, errors.New("style has color but no strokeWidth")
	case color == "":
		return nil, errors.New("style has strokeWidth but no color")
	}
	return &annotation.Style{Color: annotation.ColorToken(color), StrokeWidth: *width}, nil
}

type segmentJSON struct {
	Start geom.Point `json:"start"`
	End   geom.Point `json:"end"`
}

type angleJSON struct {
	Vertex geom.Point `json:"vertex"`
	ArmA   geom.Point `json:"armA"`
	ArmB   geom.Point `json:"armB"`
}

type freehandJSON struct {
	Points []geom.Point `json:"points"`
}

type textJSON struct {
	Anchor geom.Point `json:"anchor"`
	Text   string     `json:"text"`
}

// anyGeometry is the union of every geometry field, used when reading.
type anyGeometry struct {
	Start  *geom.Point  `json:"start"`
	End    *geom.Point  `json:"end"`
	Vertex *geom.Point  `json:"vertex"`
	ArmA   *geom.Point  `json:"armA"`
	ArmB   *geom.Point  `json:"armB"`
	Points []geom.Point `json:"points"`
	Anchor *geom.Point  `json:"anchor"`
	Text   *string      `json:"text"`
}

func encodeGeometry(g annotation.Geometry) (json.RawMessage, error) {
	var v any
	switch g := g.(type) {
	case annotation.Segment:
		v = segmentJSON{Start: g.Start, End: g.End}
	case annotation.AngleGeometry:
		v = angleJSON{Vertex: g.Vertex, ArmA: g.ArmA, ArmB: g.ArmB}
	case annotation.FreehandGeometry:
		v = freehandJSON{Points: g.Points}
	case annotation.TextGeometry:
		v = textJSON{Anchor: g.Anchor, Text: g.Text}
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
	return json.Marshal(v)
}

// decodeGeometry reads raw for kind. An empty kind infers the shape from
// the fields present.
func decodeGeometry(raw json.RawMessage, kind annotation.ShapeKind) (annotation.Geometry, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, errors.New("missing geometry")
	}
	var u anyGeometry
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	if kind == "" {
		kind = inferKind(u)
	}
	switch kind {
	case annotation.KindLine, annotation.KindArrow, annotation.KindCircle:
		if u.Start == nil || u.End == nil {
			return nil, fmt.Errorf("%s geometry needs start and end", kind)
		}
		return annotation.Segment{Start: *u.Start, End: *u.End}, nil
	case annotation.KindAngle:
		if u.Vertex != nil && u.ArmA != nil && u.ArmB != nil {
			return annotation.AngleGeometry{Vertex: *u.Vertex, ArmA: *u.ArmA, ArmB: *u.ArmB}, nil
		}
		if len(u.Points) == 3 {
			return annotation.AngleGeometry{ArmA: u.Points[0], Vertex: u.Points[1], ArmB: u.Points[2]}, nil
		}
		return nil, errors.New("angle geometry needs vertex, armA and armB")
	case annotation.KindFreehand:
		return annotation.FreehandGeometry{Points: u.Points}, nil
	case annotation.KindText:
		if u.Text == nil || u.Anchor == nil {
			return nil, errors.New("text geometry needs anchor and text")
		}
		return annotation.TextGeometry{Anchor: *u.Anchor, Text: *u.Text}, nil
	}
	return nil, errors.New("unrecognised geometry")
}

func inferKind(u anyGeometry) annotation.ShapeKind {
	switch {
	case u.Start != nil || u.End != nil:
		return annotation.KindLine
	case u.Vertex != nil:
		return annotation.KindAngle
	case u.Anchor != nil || u.Text != nil:
		return annotation.KindText
	case u.Points != nil:
		return annotation.KindFreehand
	}
	return ""
}
