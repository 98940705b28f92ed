// Package editor wires the store, tool machine, coordinate mapper and
// timeline into one editing session for a single video.
package editor

import (
	"context"
	"errors"
	"image"
	"math"

	"golang.org/x/mobile/event/key"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/coords"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/store"
	"github.com/example/swingmark/internal/timeline"
	"github.com/example/swingmark/internal/tool"
)

// ErrNoSaver is returned by Save when the session has nowhere to save to.
var ErrNoSaver = errors.New("editor has no saver")

// Editor is one editing session. It is driven from a single event loop.
type Editor struct {
	videoID   string
	store     *store.Store
	machine   *tool.Machine
	mapper    *coords.Mapper
	keymap    tool.Keymap
	player    playback.Controller
	colors    render.ColorResolver
	saver     *persist.Saver
	tolerance float64
	fps       float64
	showAll   bool
	saved     []annotation.Annotation
	onChange  func()

	historyLimit int
	toolOpts     []tool.Option
}

// Option configures an Editor.
type Option func(*Editor)

// WithVideo names the video new records belong to.
func WithVideo(id string) Option { return func(e *Editor) { e.videoID = id } }

// WithPlayer sets the transport time is read from. The default is a
// still Clock at zero.
func WithPlayer(p playback.Controller) Option { return func(e *Editor) { e.player = p } }

// WithSurface sets the on-screen surface pointer events are mapped from.
func WithSurface(s coords.Surface) Option { return func(e *Editor) { e.mapper = coords.NewMapper(s) } }

// WithColors sets the resolver used when drawing.
func WithColors(c render.ColorResolver) Option { return func(e *Editor) { e.colors = c } }

// WithSaver sets where Save sends changes.
func WithSaver(s *persist.Saver) Option { return func(e *Editor) { e.saver = s } }

// WithTolerance sets the timeline window around each record.
func WithTolerance(seconds float64) Option { return func(e *Editor) { e.tolerance = seconds } }

// WithFPS sets the frame rate used by StepFrame.
func WithFPS(fps float64) Option { return func(e *Editor) { e.fps = fps } }

// WithHistoryLimit bounds undo depth; zero keeps everything.
func WithHistoryLimit(n int) Option { return func(e *Editor) { e.historyLimit = n } }

// WithKeymap replaces the default shortcuts.
func WithKeymap(k tool.Keymap) Option { return func(e *Editor) { e.keymap = k } }

// WithOnChange registers a callback for anything that needs a redraw.
func WithOnChange(fn func()) Option { return func(e *Editor) { e.onChange = fn } }

// WithToolOptions passes options through to the tool machine.
func WithToolOptions(opts ...tool.Option) Option {
	return func(e *Editor) { e.toolOpts = append(e.toolOpts, opts...) }
}

// New creates an empty session.
func New(opts ...Option) *Editor {
	e := &Editor{
		keymap:    tool.DefaultKeymap(),
		colors:    palette.Default(),
		tolerance: timeline.DefaultTolerance,
	}
	for _, o := range opts {
		o(e)
	}
	if e.player == nil {
		e.player = playback.NewClock(0, e.fps)
	}
	if e.fps <= 0 {
		e.fps = playback.DefaultFPS
	}
	if e.mapper == nil {
		e.mapper = coords.NewMapper(coords.StaticSurface{Rect: coords.Rect{Width: 1, Height: 1}, Width: 1, Height: 1})
	}
	e.store = store.New(store.WithHistoryLimit(e.historyLimit))
	e.store.Subscribe(func([]annotation.Annotation) { e.changed() })
	base := []tool.Option{
		tool.WithClock(e.player),
		tool.WithVideo(e.videoID),
		tool.WithVisible(e.Visible),
		tool.WithRedraw(e.changed),
	}
	e.machine = tool.New(e.store, append(base, e.toolOpts...)...)
	return e
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// VideoID is the video this session edits.
func (e *Editor) VideoID() string { return e.videoID }

// Store exposes the annotation store.
func (e *Editor) Store() *store.Store { return e.store }

// Machine exposes the tool machine.
func (e *Editor) Machine() *tool.Machine { return e.machine }

// Player is the transport the session reads time from.
func (e *Editor) Player() playback.Controller { return e.player }

// Mapper is the coordinate mapper; call Invalidate on it after a resize.
func (e *Editor) Mapper() *coords.Mapper { return e.mapper }

// PointerDown maps in and forwards it to the tool machine.
func (e *Editor) PointerDown(in coords.Input) error {
	p, err := e.mapper.Map(in)
	if err != nil {
		return err
	}
	return e.machine.PointerDown(p)
}

func (e *Editor) PointerMove(in coords.Input) error {
	p, err := e.mapper.Map(in)
	if err != nil {
		return err
	}
	e.machine.PointerMove(p)
	return nil
}

func (e *Editor) PointerUp(in coords.Input) error {
	p, err := e.mapper.Map(in)
	if err != nil {
		return err
	}
	return e.machine.PointerUp(p)
}

// HandleKey runs the shortcut bound to ev and reports whether one was.
func (e *Editor) HandleKey(ev key.Event) bool {
	b, ok := e.keymap.Lookup(ev)
	if !ok {
		return false
	}
	return e.Do(b)
}

// Do runs a resolved binding.
func (e *Editor) Do(b tool.Binding) bool {
	switch b.Action {
	case tool.ActionSelectTool:
		e.machine.SetTool(b.Tool)
	case tool.ActionUndo:
		e.machine.Cancel()
		return e.store.Undo()
	case tool.ActionRedo:
		e.machine.Cancel()
		return e.store.Redo()
	case tool.ActionDelete:
		return e.DeleteSelected()
	case tool.ActionCancel:
		e.machine.Cancel()
		e.machine.SetTool(tool.ToolSelect)
		e.machine.ClearSelection()
	case tool.ActionNextMarker:
		_, ok := e.SeekNext()
		return ok
	case tool.ActionPrevMarker:
		_, ok := e.SeekPrevious()
		return ok
	case tool.ActionStepBack:
		e.StepFrame(-1)
	case tool.ActionStepForward:
		e.StepFrame(1)
	default:
		return false
	}
	return true
}

// DeleteSelected removes the selected record.
func (e *Editor) DeleteSelected() bool {
	id := e.machine.Selection()
	if id == "" {
		return false
	}
	e.machine.ClearSelection()
	return e.store.Remove(id)
}

// Select highlights id if it exists.
func (e *Editor) Select(id string) bool {
	if _, ok := e.store.Get(id); !ok {
		return false
	}
	e.machine.Select(id)
	return true
}

// SetShowAll toggles between every record and only those active now.
func (e *Editor) SetShowAll(all bool) {
	e.showAll = all
	e.changed()
}

// ShowAll reports whether every record is drawn.
func (e *Editor) ShowAll() bool { return e.showAll }

// Tolerance is the window, in seconds, around a record's time in which it
// counts as active.
func (e *Editor) Tolerance() float64 { return e.tolerance }

// Visible lists the records to draw, in store order.
func (e *Editor) Visible() []annotation.Annotation {
	if e.showAll {
		return e.store.List()
	}
	return e.Timeline().At(e.player.CurrentTime(), e.tolerance)
}

// Timeline indexes the current store contents.
func (e *Editor) Timeline() *timeline.Index { return timeline.New(e.store.List()) }

// Markers are the timeline positions of every record.
func (e *Editor) Markers() []timeline.Marker {
	return e.Timeline().Markers(e.player.Duration())
}

// RenderOptions are the options Redraw uses.
func (e *Editor) RenderOptions() render.Options {
	return render.Options{Colors: e.colors, Selected: e.machine.Selection()}
}

// Redraw paints the visible records and the preview onto s.
func (e *Editor) Redraw(s render.Surface) {
	render.Redraw(s, e.Visible(), e.machine.Preview(), e.RenderOptions())
}

// Frame renders the current view over background at w×h.
func (e *Editor) Frame(background image.Image, w, h int, shadow *render.ShadowOptions) *image.RGBA {
	opts := e.RenderOptions()
	opts.Shadow = shadow
	return render.Frame(background, w, h, e.Visible(), e.machine.Preview(), opts)
}

// Load replaces the store with a decoded document. On error the store is
// left as it was. The loaded set becomes the saved baseline.
func (e *Editor) Load(data []byte) error {
	list, err := codec.Deserialize(data)
	if err != nil {
		return err
	}
	return e.install(list)
}

func (e *Editor) install(list []annotation.Annotation) error {
	for i := range list {
		if list[i].VideoID == "" {
			list[i].VideoID = e.videoID
		}
	}
	e.machine.Cancel()
	e.machine.ClearSelection()
	if err := e.store.Replace(list); err != nil {
		return err
	}
	e.saved = e.store.List()
	return nil
}

// Export encodes the store.
func (e *Editor) Export() ([]byte, error) {
	return codec.Serialize(e.store.List())
}

// SeekNext moves playback to the next record and selects it.
func (e *Editor) SeekNext() (annotation.Annotation, bool) {
	a, ok := e.Timeline().NextAfter(e.player.CurrentTime())
	return e.jump(a, ok)
}

// SeekPrevious moves playback to the previous record and selects it.
func (e *Editor) SeekPrevious() (annotation.Annotation, bool) {
	a, ok := e.Timeline().PreviousBefore(e.player.CurrentTime())
	return e.jump(a, ok)
}

func (e *Editor) jump(a annotation.Annotation, ok bool) (annotation.Annotation, bool) {
	if !ok {
		return a, false
	}
	e.player.Seek(a.Timestamp)
	e.machine.Select(a.ID)
	return a, true
}

// StepFrame moves playback by n frames.
func (e *Editor) StepFrame(n int) {
	if c, ok := e.player.(*playback.Clock); ok {
		c.Step(n)
	} else {
		t := e.player.CurrentTime() + float64(n)/e.fps
		t = math.Max(0, t)
		if d := e.player.Duration(); d > 0 {
			t = math.Min(t, d)
		}
		e.player.Seek(t)
	}
	e.changed()
}

// Seek moves playback to t.
func (e *Editor) Seek(t float64) {
	e.player.Seek(t)
	e.changed()
}

// Dirty reports whether the store differs from the last save or load.
func (e *Editor) Dirty() bool { return !annotation.EqualLists(e.saved, e.store.List()) }

// Save queues the changes since the last save. The store is not rolled
// back if any of them fail.
func (e *Editor) Save() ([]*persist.Future, error) {
	if e.saver == nil {
		return nil, ErrNoSaver
	}
	current := e.store.List()
	changes := persist.Diff(e.saved, current)
	e.saved = current
	return e.saver.Submit(changes...), nil
}

// LoadFromRepository replaces the store with the stored set for the video.
func (e *Editor) LoadFromRepository(ctx context.Context, repo persist.Repository) error {
	list, err := repo.ListForVideo(ctx, e.videoID)
	if err != nil {
		return err
	}
	return e.install(list)
}
