// Package viewer is the desktop annotation window: the video frame with
// its annotations, a tool strip and a timeline of markers.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/clipboard"
	"github.com/example/swingmark/internal/coords"
	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/notify"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/tool"
)

// area is the part of the window a drag started in.
type area int

const (
	areaNone area = iota
	areaVideo
	areaTimeline
)

// Viewer holds the window state. All methods run on the window's event
// loop except the save completion callbacks, which only touch the
// notifier and the message.
type Viewer struct {
	editor     *editor.Editor
	background image.Image
	frameW     int
	frameH     int
	palette    *palette.Palette
	keymap     tool.Keymap
	notifier   *notify.Notifier
	jsonPath   string
	shadow     render.ShadowOptions

	layout Layout
	text   textEntry
	drag   area
	quit   bool

	msgMu        sync.Mutex
	message      string
	messageUntil time.Time
	now          func() time.Time
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithBackground sets the still frame drawn under the annotations.
func WithBackground(img image.Image) Option { return func(v *Viewer) { v.background = img } }

// WithFrameSize sets the logical frame size when there is no background.
func WithFrameSize(w, h int) Option { return func(v *Viewer) { v.frameW, v.frameH = w, h } }

// WithPalette sets the colors offered in the toolbar and used to draw.
func WithPalette(p *palette.Palette) Option { return func(v *Viewer) { v.palette = p } }

// WithNotifier sets where save, export and copy results are announced.
func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.notifier = n } }

// WithJSONPath sets the file Ctrl+S writes the annotation set to.
func WithJSONPath(path string) Option { return func(v *Viewer) { v.jsonPath = path } }

// New creates a viewer. The editor is built here so pointer mapping and
// text entry can be wired to the window.
func New(editorOpts []editor.Option, opts ...Option) *Viewer {
	v := &Viewer{
		frameW:  1280,
		frameH:  720,
		palette: palette.Default(),
		keymap:  tool.DefaultKeymap(),
		shadow:  render.DefaultShadowOptions(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	if v.background != nil {
		b := v.background.Bounds()
		v.frameW, v.frameH = b.Dx(), b.Dy()
	}
	v.layout = NewLayout(v.frameW+toolbarWidth, v.frameH+timelineHeight+statusHeight, v.frameW, v.frameH)
	eo := append([]editor.Option{
		editor.WithColors(v.palette),
		editor.WithKeymap(v.keymap),
	}, editorOpts...)
	eo = append(eo,
		editor.WithSurface(surface{v}),
		editor.WithToolOptions(
			tool.WithTextInput(&v.text),
			tool.WithErrorHandler(func(err error) { v.flash(err.Error()) }),
		),
	)
	v.editor = editor.New(eo...)
	return v
}

// surface maps window pixels onto the frame through the current layout.
type surface struct{ v *Viewer }

func (s surface) ScreenRect() coords.Rect { return s.v.layout.ScreenRect() }
func (s surface) LogicalSize() (float64, float64) {
	return float64(s.v.frameW), float64(s.v.frameH)
}

// Editor exposes the editing session.
func (v *Viewer) Editor() *editor.Editor { return v.editor }

// Layout is the current window layout.
func (v *Viewer) Layout() Layout { return v.layout }

// Resize recomputes the layout for a new window size.
func (v *Viewer) Resize(w, h int) {
	v.layout = NewLayout(w, h, v.frameW, v.frameH)
	v.editor.Mapper().Invalidate()
}

func (v *Viewer) flash(msg string) {
	log.Print(msg)
	v.msgMu.Lock()
	defer v.msgMu.Unlock()
	v.message = msg
	v.messageUntil = v.now().Add(3 * time.Second)
}

func (v *Viewer) currentMessage() string {
	v.msgMu.Lock()
	defer v.msgMu.Unlock()
	if v.now().Before(v.messageUntil) {
		return v.message
	}
	return ""
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() { driver.Main(v.Main) }

// Main runs the window event loop on s.
func (v *Viewer) Main(s screen.Screen) {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  v.layout.Window.Dx(),
		Height: v.layout.Window.Dy(),
		Title:  "swingmark " + v.editor.VideoID(),
	})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			v.Resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			v.paint(s, w)
		case mouse.Event:
			if v.HandleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if v.HandleKey(e) {
				w.Send(paint.Event{})
			}
			if v.quit {
				return
			}
		case error:
			log.Print(e)
		}
	}
}

func (v *Viewer) paint(s screen.Screen, w screen.Window) {
	b, err := s.NewBuffer(v.layout.Window.Size())
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	v.Compose(b.RGBA())
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// Compose draws the whole window into dst.
func (v *Viewer) Compose(dst *image.RGBA) {
	fill(dst, dst.Bounds(), backdropColor)
	frame := v.editor.Frame(v.background, v.frameW, v.frameH, &v.shadow)
	render.ScaleInto(dst, v.layout.Video, frame)
	v.drawTextEntry(dst)
	v.drawToolbar(dst)
	v.drawTimeline(dst)
	v.drawStatus(dst)
}

// HandleMouse routes a mouse event and reports whether to repaint.
func (v *Viewer) HandleMouse(e mouse.Event) bool {
	repaint := v.handleMouse(e)
	return v.dropStaleText() || repaint
}

func (v *Viewer) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	in := coords.Pointer(float64(e.X), float64(e.Y))
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		switch {
		case p.In(v.layout.Toolbar):
			return v.clickToolbar(p)
		case p.In(v.layout.Timeline):
			v.drag = areaTimeline
			v.seekTo(p.X)
			return true
		case p.In(v.layout.Video):
			v.drag = areaVideo
			v.report(v.editor.PointerDown(in))
			return true
		}
	case mouse.DirNone:
		switch v.drag {
		case areaTimeline:
			v.seekTo(p.X)
			return true
		case areaVideo:
			v.report(v.editor.PointerMove(in))
			return true
		}
		// The angle preview follows the pointer between clicks.
		if p.In(v.layout.Video) && v.editor.Machine().Status().State == tool.StateCollecting {
			v.report(v.editor.PointerMove(in))
			return true
		}
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		started := v.drag
		v.drag = areaNone
		if started == areaVideo {
			v.report(v.editor.PointerUp(in))
			return true
		}
	}
	return false
}

func (v *Viewer) seekTo(x int) {
	v.editor.Seek(v.layout.TimeAt(x, v.editor.Player().Duration()))
}

func (v *Viewer) clickToolbar(p image.Point) bool {
	m := v.editor.Machine()
	for i, t := range tool.Tools() {
		if p.In(v.layout.ToolRect(i)) {
			m.SetTool(t)
			return true
		}
	}
	style := m.Style()
	for i, e := range v.palette.Entries {
		if p.In(v.layout.SwatchRect(i)) {
			style.Color = annotation.ColorToken(e.Name)
			m.SetStyle(style)
			return true
		}
	}
	for i, w := range StrokeWidths {
		if p.In(v.layout.WidthRect(i, len(v.palette.Entries))) {
			style.StrokeWidth = w
			m.SetStyle(style)
			return true
		}
	}
	return false
}

func (v *Viewer) report(err error) {
	if err != nil {
		v.flash(err.Error())
	}
}

// HandleKey runs window shortcuts first, then the editor keymap. It
// reports whether to repaint.
func (v *Viewer) HandleKey(e key.Event) bool {
	handled := v.handleKey(e)
	return v.dropStaleText() || handled
}

// dropStaleText closes the label entry once the machine has stopped waiting
// for it, such as after a tool change, and reports whether it did.
func (v *Viewer) dropStaleText() bool {
	if !v.text.active || v.editor.Machine().Status().State == tool.StateAwaitingText {
		return false
	}
	v.text.abandon()
	return true
}

func (v *Viewer) handleKey(e key.Event) bool {
	if v.text.handleKey(e) {
		return true
	}
	if e.Direction == key.DirRelease {
		return false
	}
	primary := e.Modifiers&(key.ModControl|key.ModMeta) != 0
	shift := e.Modifiers&key.ModShift != 0
	switch {
	case primary && e.Code == key.CodeS:
		v.Save()
		return true
	case primary && shift && e.Code == key.CodeC:
		v.CopyAnnotations()
		return true
	case primary && e.Code == key.CodeC:
		v.CopyFrame()
		return true
	case primary && e.Code == key.CodeV:
		v.PasteAnnotations()
		return true
	case primary && e.Code == key.CodeE:
		v.ExportPNG()
		return true
	case !primary && e.Code == key.CodeH:
		v.editor.SetShowAll(!v.editor.ShowAll())
		return true
	case !primary && e.Code == key.CodeQ:
		v.quit = true
		return false
	}
	return v.editor.HandleKey(e)
}

// Save writes the JSON file, when one is set, and queues the repository
// save, when the editor has a saver.
func (v *Viewer) Save() {
	saved := false
	if v.jsonPath != "" {
		data, err := v.editor.Export()
		if err == nil {
			err = writeAtomic(v.jsonPath, data)
		}
		if err != nil {
			v.flash("export failed: " + err.Error())
			v.notifier.Failure("export", err)
			return
		}
		v.notifier.Export(v.jsonPath, nil)
		v.flash("wrote " + v.jsonPath)
		saved = true
	}
	futures, err := v.editor.Save()
	switch {
	case errors.Is(err, editor.ErrNoSaver):
		if !saved {
			v.flash("nowhere to save")
		}
		return
	case err != nil:
		v.flash(err.Error())
		return
	}
	if len(futures) == 0 {
		if !saved {
			v.flash("nothing to save")
		}
		return
	}
	v.flash(fmt.Sprintf("saving %d changes", len(futures)))
	video := v.editor.VideoID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := persist.WaitAll(ctx, futures); err != nil {
			v.flash("save failed: " + err.Error())
			v.notifier.Failure("save", err)
			return
		}
		v.notifier.Save(video, len(futures))
	}()
}

// CopyFrame puts the rendered frame on the clipboard.
func (v *Viewer) CopyFrame() {
	frame := v.editor.Frame(v.background, v.frameW, v.frameH, &v.shadow)
	if err := clipboard.WriteImage(frame); err != nil {
		v.flash("copy failed: " + err.Error())
		v.notifier.Failure("copy", err)
		return
	}
	v.flash("copied frame")
	v.notifier.Copy("frame")
}

// CopyAnnotations puts the annotation set on the clipboard as JSON.
func (v *Viewer) CopyAnnotations() {
	list := v.editor.Store().List()
	if err := clipboard.WriteAnnotations(list); err != nil {
		v.flash("copy failed: " + err.Error())
		v.notifier.Failure("copy", err)
		return
	}
	v.flash(fmt.Sprintf("copied %d annotations", len(list)))
	v.notifier.Copy(fmt.Sprintf("%d annotations", len(list)))
}

// PasteAnnotations adds clipboard annotations to this video with fresh ids.
func (v *Viewer) PasteAnnotations() {
	list, err := clipboard.ReadAnnotations()
	if err != nil {
		v.flash("paste failed: " + err.Error())
		return
	}
	n := v.Merge(list)
	v.flash(fmt.Sprintf("pasted %d annotations", n))
}

// Merge commits copies of list into the store under new ids and returns
// how many were added.
func (v *Viewer) Merge(list []annotation.Annotation) int {
	n := 0
	for _, a := range list {
		a.ID = annotation.NewID()
		a.VideoID = v.editor.VideoID()
		a.CreatedAt, a.UpdatedAt = "", ""
		if err := v.editor.Store().Commit(a); err != nil {
			v.flash(err.Error())
			continue
		}
		n++
	}
	return n
}

// ExportPNG writes the rendered frame beside the JSON file, or into the
// working directory.
func (v *Viewer) ExportPNG() {
	frame := v.editor.Frame(v.background, v.frameW, v.frameH, &v.shadow)
	path := v.pngPath()
	f, err := os.Create(path)
	if err == nil {
		err = png.Encode(f, frame)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		v.flash("export failed: " + err.Error())
		v.notifier.Failure("export", err)
		return
	}
	v.flash("wrote " + path)
	v.notifier.Export(path, frame)
}

func (v *Viewer) pngPath() string {
	name := fmt.Sprintf("%s-%.2f.png", v.editor.VideoID(), v.editor.Player().CurrentTime())
	if v.jsonPath != "" {
		base := strings.TrimSuffix(v.jsonPath, filepath.Ext(v.jsonPath))
		return fmt.Sprintf("%s-%.2f.png", base, v.editor.Player().CurrentTime())
	}
	return name
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
