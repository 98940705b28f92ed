package tool

import (
	"errors"
	"strings"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

// ErrNoTextInput is returned when the text tool is used without a
// TextInputProvider.
var ErrNoTextInput = errors.New("text tool needs a text input provider")

// Committer receives finished records. *store.Store satisfies it.
type Committer interface {
	Commit(annotation.Annotation) error
}

// Clock supplies the media time stamped on new records.
type Clock interface {
	CurrentTime() float64
}

// TextInputProvider asks the user for a label. done may be called
// synchronously or later; ok is false when the prompt was dismissed.
type TextInputProvider interface {
	RequestText(anchor geom.Point, done func(text string, ok bool))
}

// TextInputFunc adapts a function to TextInputProvider.
type TextInputFunc func(anchor geom.Point, done func(string, bool))

func (f TextInputFunc) RequestText(anchor geom.Point, done func(string, bool)) { f(anchor, done) }

// Machine is the tool state machine. Like the store it is driven from a
// single event loop.
type Machine struct {
	store    Committer
	clock    Clock
	text     TextInputProvider
	visible  func() []annotation.Annotation
	redraw   func()
	onError  func(error)
	videoID  string
	duration *float64
	minDrag  float64
	hitSlop  float64

	tool      Tool
	style     annotation.Style
	state     State
	points    []geom.Point
	preview   *annotation.Annotation
	selection string
	textGen   int
}

// Option configures a Machine.
type Option func(*Machine)

func WithClock(c Clock) Option { return func(m *Machine) { m.clock = c } }
func WithTextInput(p TextInputProvider) Option { return func(m *Machine) { m.text = p } }
func WithRedraw(fn func()) Option { return func(m *Machine) { m.redraw = fn } }
func WithVideo(id string) Option { return func(m *Machine) { m.videoID = id } }
func WithStyle(s annotation.Style) Option { return func(m *Machine) { m.style = s } }
func WithErrorHandler(fn func(error)) Option { return func(m *Machine) { m.onError = fn } }
func WithHitSlop(px float64) Option { return func(m *Machine) { m.hitSlop = px } }
func WithDefaultDuration(seconds float64) Option {
	return func(m *Machine) {
		if seconds > 0 {
			m.duration = annotation.Float(seconds)
		}
	}
}

// WithVisible supplies the records the select tool may pick from, in draw
// order.
func WithVisible(fn func() []annotation.Annotation) Option {
	return func(m *Machine) { m.visible = fn }
}

// WithMinDrag discards line, circle and arrow gestures shorter than px.
// The default of zero commits zero length drags.
func WithMinDrag(px float64) Option { return func(m *Machine) { m.minDrag = px } }

// New creates a machine committing into store.
func New(store Committer, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		style:   annotation.Style{Color: "red", StrokeWidth: 3},
		hitSlop: 6,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) Tool() Tool { return m.tool }
func (m *Machine) Style() annotation.Style { return m.style }
func (m *Machine) Selection() string { return m.selection }

// Status reports the current phase.
func (m *Machine) Status() Status {
	s := Status{State: m.state}
	if m.state == StateCollecting {
		s.Collected = len(m.points)
	}
	return s
}

// Preview returns a copy of the in-progress record, or nil.
func (m *Machine) Preview() *annotation.Annotation {
	if m.preview == nil {
		return nil
	}
	p := m.preview.Clone()
	return &p
}

// SetTool switches tools, dropping any gesture in progress and the
// selection.
func (m *Machine) SetTool(t Tool) {
	if t == m.tool && m.state == StateIdle {
		return
	}
	m.reset()
	m.tool = t
	m.selection = ""
	m.requestRedraw()
}

// SetStyle changes the style used for the next record.
func (m *Machine) SetStyle(s annotation.Style) { m.style = s }

// Select highlights id without going through a pointer event.
func (m *Machine) Select(id string) {
	m.selection = id
	m.requestRedraw()
}

// ClearSelection drops the highlight.
func (m *Machine) ClearSelection() {
	if m.selection != "" {
		m.selection = ""
		m.requestRedraw()
	}
}

// Cancel abandons an in-progress gesture or pending text prompt without
// committing.
func (m *Machine) Cancel() {
	m.reset()
	m.requestRedraw()
}

// PointerDown handles a press at p in logical pixels.
func (m *Machine) PointerDown(p geom.Point) error {
	switch {
	case m.tool == ToolSelect:
		m.selection = m.hitTest(p)
		m.requestRedraw()
		return nil
	case m.tool == ToolAngle:
		return m.collect(p)
	case m.tool == ToolText:
		return m.promptText(p)
	case m.tool.drags():
		if m.state != StateIdle {
			return nil
		}
		m.state = StateDrawing
		m.points = []geom.Point{p}
		m.setPreview(p)
		return nil
	}
	return nil
}

// PointerMove updates the preview. It never touches the store.
func (m *Machine) PointerMove(p geom.Point) {
	switch m.state {
	case StateDrawing:
		if m.tool == ToolFreehand {
			m.points = append(m.points, p)
		}
		m.setPreview(p)
	case StateCollecting:
		m.setPreview(p)
	default:
		return
	}
	m.requestRedraw()
}

// PointerUp finishes a drag. Freehand strokes with fewer than two points
// are discarded.
func (m *Machine) PointerUp(p geom.Point) error {
	if m.state != StateDrawing {
		return nil
	}
	kind, _ := m.tool.Kind()
	var g annotation.Geometry
	switch m.tool {
	case ToolFreehand:
		if len(m.points) < 2 {
			m.reset()
			m.requestRedraw()
			return nil
		}
		g = annotation.FreehandGeometry{Points: append([]geom.Point(nil), m.points...)}
	default:
		start := m.points[0]
		if m.minDrag > 0 && geom.Distance(start, p) < m.minDrag {
			m.reset()
			m.requestRedraw()
			return nil
		}
		g = annotation.Segment{Start: start, End: p}
	}
	return m.finish(kind, g)
}

func (m *Machine) collect(p geom.Point) error {
	if m.state != StateIdle && m.state != StateCollecting {
		return nil
	}
	m.points = append(m.points, p)
	if len(m.points) < 3 {
		m.state = StateCollecting
		m.setPreview(p)
		m.requestRedraw()
		return nil
	}
	g := annotation.AngleGeometry{ArmA: m.points[0], Vertex: m.points[1], ArmB: m.points[2]}
	return m.finish(annotation.KindAngle, g)
}

func (m *Machine) promptText(p geom.Point) error {
	if m.state != StateIdle {
		return nil
	}
	if m.text == nil {
		return ErrNoTextInput
	}
	m.textGen++
	gen := m.textGen
	m.state = StateAwaitingText
	m.points = []geom.Point{p}
	m.text.RequestText(p, func(text string, ok bool) {
		if gen != m.textGen || m.state != StateAwaitingText {
			return
		}
		anchor := m.points[0]
		if !ok || strings.TrimSpace(text) == "" {
			m.reset()
			m.requestRedraw()
			return
		}
		if err := m.finish(annotation.KindText, annotation.TextGeometry{Anchor: anchor, Text: text}); err != nil && m.onError != nil {
			m.onError(err)
		}
	})
	return nil
}

// finish commits a record. A rejected record is dropped and the machine
// still returns to idle.
func (m *Machine) finish(kind annotation.ShapeKind, g annotation.Geometry) error {
	a := m.build(kind, g)
	m.reset()
	err := m.store.Commit(a)
	m.requestRedraw()
	return err
}

func (m *Machine) build(kind annotation.ShapeKind, g annotation.Geometry) annotation.Annotation {
	a := annotation.New(kind, g, m.style, m.now())
	a.VideoID = m.videoID
	if m.duration != nil {
		a.Duration = annotation.Float(*m.duration)
	}
	return a
}

func (m *Machine) now() float64 {
	if m.clock == nil {
		return 0
	}
	if t := m.clock.CurrentTime(); t > 0 {
		return t
	}
	return 0
}

func (m *Machine) setPreview(p geom.Point) {
	var (
		kind annotation.ShapeKind
		g    annotation.Geometry
	)
	switch {
	case m.tool == ToolFreehand:
		kind = annotation.KindFreehand
		g = annotation.FreehandGeometry{Points: append([]geom.Point(nil), m.points...)}
	case m.tool == ToolAngle && len(m.points) == 1:
		kind = annotation.KindLine
		g = annotation.Segment{Start: m.points[0], End: p}
	case m.tool == ToolAngle && len(m.points) == 2:
		kind = annotation.KindAngle
		g = annotation.AngleGeometry{ArmA: m.points[0], Vertex: m.points[1], ArmB: p}
	case m.tool.drags():
		kind, _ = m.tool.Kind()
		g = annotation.Segment{Start: m.points[0], End: p}
	default:
		m.preview = nil
		return
	}
	a := annotation.Annotation{Kind: kind, Geometry: g, Style: m.style, Timestamp: m.now(), VideoID: m.videoID}
	m.preview = &a
}

func (m *Machine) reset() {
	if m.state == StateAwaitingText {
		m.textGen++
	}
	m.state = StateIdle
	m.points = nil
	m.preview = nil
}

func (m *Machine) requestRedraw() {
	if m.redraw != nil {
		m.redraw()
	}
}

func (m *Machine) hitTest(p geom.Point) string {
	if m.visible == nil {
		return ""
	}
	list := m.visible()
	for i := len(list) - 1; i >= 0; i-- {
		if Hit(list[i], p, m.hitSlop) {
			return list[i].ID
		}
	}
	return ""
}
