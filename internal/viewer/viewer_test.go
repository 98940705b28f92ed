package viewer

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/geom"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/tool"
)

// newViewer shows a 200×100 frame; the video area sits at x=72 with a 1:1
// scale so window and logical pixels differ only by the toolbar offset.
func newViewer(t *testing.T, opts ...Option) (*Viewer, *playback.Clock) {
	t.Helper()
	clock := playback.NewClock(10, 30)
	v := New([]editor.Option{editor.WithVideo("swing1"), editor.WithPlayer(clock)},
		append([]Option{WithFrameSize(200, 100)}, opts...)...)
	return v, clock
}

func click(v *Viewer, dir mouse.Direction, x, y int) bool {
	return v.HandleMouse(mouse.Event{X: float32(x), Y: float32(y), Button: mouse.ButtonLeft, Direction: dir})
}

func typeKey(v *Viewer, code key.Code, r rune, mods key.Modifiers) bool {
	return v.HandleKey(key.Event{Code: code, Rune: r, Modifiers: mods, Direction: key.DirPress})
}

func TestNewLayoutFitsFrame(t *testing.T) {
	l := NewLayout(872, 500, 400, 200)
	if l.Toolbar.Dx() != toolbarWidth {
		t.Fatalf("toolbar = %v", l.Toolbar)
	}
	if l.Video.Dx() != 800 || l.Video.Dy() != 400 {
		t.Fatalf("video = %v", l.Video)
	}
	if l.Video.Max.Y > l.Timeline.Min.Y || l.Timeline.Max.Y != l.Status.Min.Y {
		t.Fatalf("areas overlap: %+v", l)
	}
	mid := l.Timeline.Min.X + l.Timeline.Dx()/2
	if got := l.TimeAt(mid, 10); got < 4.9 || got > 5.1 {
		t.Errorf("TimeAt(mid) = %v", got)
	}
	if got := l.TimeAt(-50, 10); got != 0 {
		t.Errorf("TimeAt before bar = %v", got)
	}
	if got := l.TimeAt(5000, 10); got != 10 {
		t.Errorf("TimeAt after bar = %v", got)
	}
	if got := l.TimeAt(mid, 0); got != 0 {
		t.Errorf("TimeAt without duration = %v", got)
	}
}

func TestNewLayoutDegenerate(t *testing.T) {
	l := NewLayout(50, 40, 200, 100)
	if !l.Video.Empty() {
		t.Fatalf("video = %v", l.Video)
	}
}

func TestDrawLineWithMouse(t *testing.T) {
	v, clock := newViewer(t)
	clock.Seek(2)
	v.Editor().Machine().SetTool(tool.ToolLine)

	if !click(v, mouse.DirPress, 82, 10) {
		t.Fatal("press in video should repaint")
	}
	click(v, mouse.DirNone, 120, 30)
	if v.Editor().Machine().Preview() == nil {
		t.Fatal("expected a preview while dragging")
	}
	click(v, mouse.DirRelease, 152, 60)

	list := v.Editor().Store().List()
	if len(list) != 1 {
		t.Fatalf("got %d annotations", len(list))
	}
	seg, ok := list[0].Geometry.(annotation.Segment)
	if !ok {
		t.Fatalf("geometry = %T", list[0].Geometry)
	}
	if seg.Start != geom.Pt(10, 10) || seg.End != geom.Pt(80, 60) {
		t.Errorf("segment = %+v", seg)
	}
	if list[0].Timestamp != 2 || list[0].VideoID != "swing1" {
		t.Errorf("record = %+v", list[0])
	}
}

func TestTimelineSeek(t *testing.T) {
	v, clock := newViewer(t)
	l := v.Layout()
	y := l.Timeline.Min.Y + 5
	click(v, mouse.DirPress, l.Timeline.Min.X+l.Timeline.Dx()/2, y)
	if got := clock.CurrentTime(); got < 4.9 || got > 5.1 {
		t.Fatalf("time after click = %v", got)
	}
	click(v, mouse.DirNone, l.Timeline.Max.X+100, y)
	if got := clock.CurrentTime(); got != 10 {
		t.Fatalf("time after drag = %v", got)
	}
	click(v, mouse.DirRelease, l.Timeline.Max.X, y)
	if click(v, mouse.DirNone, l.Timeline.Min.X, y) {
		t.Error("moves after release should not seek")
	}
}

func TestToolbarClicks(t *testing.T) {
	v, _ := newViewer(t)
	v.Resize(872, 500)
	l := v.Layout()
	m := v.Editor().Machine()

	r := l.ToolRect(int(tool.ToolCircle))
	click(v, mouse.DirPress, r.Min.X+2, r.Min.Y+2)
	if m.Tool() != tool.ToolCircle {
		t.Fatalf("tool = %v", m.Tool())
	}

	r = l.SwatchRect(4)
	click(v, mouse.DirPress, r.Min.X+1, r.Min.Y+1)
	if want := v.palette.Entries[4].Name; string(m.Style().Color) != want {
		t.Fatalf("color = %q, want %q", m.Style().Color, want)
	}

	r = l.WidthRect(4, len(v.palette.Entries))
	click(v, mouse.DirPress, r.Min.X+1, r.Min.Y+1)
	if m.Style().StrokeWidth != StrokeWidths[4] {
		t.Fatalf("width = %v", m.Style().StrokeWidth)
	}
}

func TestTextEntry(t *testing.T) {
	v, _ := newViewer(t)
	v.Editor().Machine().SetTool(tool.ToolText)

	click(v, mouse.DirPress, 112, 40)
	if !v.text.active || v.text.anchor != geom.Pt(40, 40) {
		t.Fatalf("entry = %+v", v.text)
	}
	// h and q are window shortcuts but belong to the label while typing.
	for _, r := range "hqx" {
		typeKey(v, key.CodeUnknown, r, 0)
	}
	typeKey(v, key.CodeDeleteBackspace, 0, 0)
	if v.Editor().ShowAll() || v.quit {
		t.Fatal("shortcut leaked out of the text entry")
	}
	typeKey(v, key.CodeReturnEnter, 0, 0)

	list := v.Editor().Store().List()
	if len(list) != 1 {
		t.Fatalf("got %d annotations", len(list))
	}
	g, ok := list[0].Geometry.(annotation.TextGeometry)
	if !ok || g.Text != "hq" || g.Anchor != geom.Pt(40, 40) {
		t.Fatalf("geometry = %+v", list[0].Geometry)
	}
	if v.text.active {
		t.Error("entry still active")
	}
}

func TestTextEntryCancel(t *testing.T) {
	v, _ := newViewer(t)
	v.Editor().Machine().SetTool(tool.ToolText)
	click(v, mouse.DirPress, 112, 40)
	typeKey(v, key.CodeUnknown, 'a', 0)
	typeKey(v, key.CodeEscape, 0, 0)
	if v.Editor().Store().Len() != 0 {
		t.Fatal("cancelled label was committed")
	}
	if st := v.Editor().Machine().Status().State; st != tool.StateIdle {
		t.Fatalf("state = %v", st)
	}
}

func TestToolbarClosesTextEntry(t *testing.T) {
	v, _ := newViewer(t)
	v.Resize(872, 500)
	l := v.Layout()
	m := v.Editor().Machine()
	m.SetTool(tool.ToolText)

	click(v, mouse.DirPress, l.Video.Min.X+40, l.Video.Min.Y+40)
	if !v.text.active || m.Status().State != tool.StateAwaitingText {
		t.Fatalf("entry not opened: active=%v state=%v", v.text.active, m.Status().State)
	}
	r := l.ToolRect(int(tool.ToolLine))
	click(v, mouse.DirPress, r.Min.X+2, r.Min.Y+2)
	if m.Tool() != tool.ToolLine || v.text.active {
		t.Fatalf("tool=%v active=%v", m.Tool(), v.text.active)
	}

	typeKey(v, key.CodeC, 'c', 0)
	if m.Tool() != tool.ToolCircle {
		t.Fatalf("shortcut swallowed: tool=%v buf=%q", m.Tool(), v.text.String())
	}
	if v.Editor().Store().Len() != 0 {
		t.Fatal("abandoned label was committed")
	}
}

func TestWindowShortcuts(t *testing.T) {
	v, _ := newViewer(t)
	typeKey(v, key.CodeH, 'h', 0)
	if !v.Editor().ShowAll() {
		t.Fatal("h should show every annotation")
	}
	typeKey(v, key.CodeH, 'h', 0)
	if v.Editor().ShowAll() {
		t.Fatal("h should toggle back")
	}
	typeKey(v, key.CodeL, 'l', 0)
	if v.Editor().Machine().Tool() != tool.ToolLine {
		t.Fatal("tool keys should reach the editor")
	}
	typeKey(v, key.CodeQ, 'q', 0)
	if !v.quit {
		t.Fatal("q should quit")
	}
}

func TestMergeAssignsNewIDs(t *testing.T) {
	v, _ := newViewer(t)
	src := annotation.New(annotation.KindLine, annotation.Segment{Start: geom.Pt(1, 1), End: geom.Pt(5, 5)}, annotation.Style{Color: "red", StrokeWidth: 2}, 1)
	src.VideoID = "other"
	if n := v.Merge([]annotation.Annotation{src, src}); n != 2 {
		t.Fatalf("merged %d", n)
	}
	list := v.Editor().Store().List()
	if len(list) != 2 || list[0].ID == list[1].ID {
		t.Fatalf("list = %+v", list)
	}
	for _, a := range list {
		if a.ID == src.ID || a.VideoID != "swing1" {
			t.Errorf("record = %+v", a)
		}
	}
}

func TestSaveWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swing1.json")
	v, _ := newViewer(t, WithJSONPath(path))
	v.Editor().Machine().SetTool(tool.ToolArrow)
	click(v, mouse.DirPress, 80, 10)
	click(v, mouse.DirRelease, 100, 30)

	typeKey(v, key.CodeS, 's', key.ModControl)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	list, err := codec.Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !annotation.EqualLists(list, v.Editor().Store().List()) {
		t.Fatalf("file = %+v", list)
	}
	if got := v.pngPath(); filepath.Dir(got) != filepath.Dir(path) {
		t.Errorf("png path = %q", got)
	}
}

func TestComposeFillsWindow(t *testing.T) {
	v, _ := newViewer(t)
	v.Editor().Machine().SetTool(tool.ToolLine)
	click(v, mouse.DirPress, 82, 50)
	click(v, mouse.DirRelease, 262, 50)

	dst := image.NewRGBA(v.Layout().Window)
	v.Compose(dst)
	if got := dst.RGBAAt(150, 50); got.R < 200 || got.G > 60 {
		t.Errorf("line pixel = %v", got)
	}
	if got := dst.RGBAAt(v.Layout().Toolbar.Max.X-2, 5); got != barColor {
		t.Errorf("toolbar pixel = %v", got)
	}
}
