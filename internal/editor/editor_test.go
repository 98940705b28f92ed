package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/coords"
	"github.com/example/swingmark/internal/geom"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/tool"
)

func newEditor(t *testing.T, opts ...Option) (*Editor, *playback.Clock) {
	t.Helper()
	clock := playback.NewClock(60, 30)
	surface := coords.StaticSurface{Rect: coords.Rect{X: 100, Y: 50, Width: 960, Height: 540}, Width: 1920, Height: 1080}
	base := []Option{WithVideo("swing1"), WithPlayer(clock), WithSurface(surface)}
	return New(append(base, opts...)...), clock
}

func press(t *testing.T, chord string) tool.Binding {
	t.Helper()
	e, err := tool.ParseKey(chord)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tool.DefaultKeymap().Lookup(e)
	return b
}

func drawLine(t *testing.T, e *Editor, x0, y0, x1, y1 float64) {
	t.Helper()
	e.Machine().SetTool(tool.ToolLine)
	if err := e.PointerDown(coords.Pointer(x0, y0)); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerMove(coords.Pointer(x1, y1)); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerUp(coords.Pointer(x1, y1)); err != nil {
		t.Fatal(err)
	}
}

func TestPointerGestureMapsToLogical(t *testing.T) {
	e, clock := newEditor(t)
	clock.Seek(10)
	drawLine(t, e, 100, 50, 580, 320)
	list := e.Store().List()
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}
	a := list[0]
	seg := a.Geometry.(annotation.Segment)
	if seg.Start != geom.Pt(0, 0) || seg.End != geom.Pt(960, 540) {
		t.Fatalf("segment = %+v", seg)
	}
	if a.Timestamp != 10 || a.VideoID != "swing1" {
		t.Fatalf("record = %+v", a)
	}
}

func TestKeysDriveHistoryAndTools(t *testing.T) {
	e, _ := newEditor(t)
	drawLine(t, e, 100, 50, 200, 100)
	ev, _ := tool.ParseKey("ctrl+z")
	if !e.HandleKey(ev) || e.Store().Len() != 0 {
		t.Fatal("undo did not remove the line")
	}
	ev, _ = tool.ParseKey("ctrl+y")
	if !e.HandleKey(ev) || e.Store().Len() != 1 {
		t.Fatal("redo did not restore the line")
	}
	ev, _ = tool.ParseKey("c")
	e.HandleKey(ev)
	if e.Machine().Tool() != tool.ToolCircle {
		t.Fatalf("tool = %v", e.Machine().Tool())
	}
	ev, _ = tool.ParseKey("q")
	if e.HandleKey(ev) {
		t.Fatal("unbound key handled")
	}
}

func TestEscapeRevertsToSelect(t *testing.T) {
	e, _ := newEditor(t)
	e.Machine().SetTool(tool.ToolAngle)
	if err := e.PointerDown(coords.Pointer(200, 100)); err != nil {
		t.Fatal(err)
	}
	if st := e.Machine().Status(); st.State != tool.StateCollecting || st.Collected != 1 {
		t.Fatalf("status = %+v", st)
	}
	ev, err := tool.ParseKey("escape")
	if err != nil {
		t.Fatal(err)
	}
	if !e.HandleKey(ev) {
		t.Fatal("escape not handled")
	}
	if got := e.Machine().Tool(); got != tool.ToolSelect {
		t.Fatalf("tool = %v, want select", got)
	}
	if st := e.Machine().Status().State; st != tool.StateIdle {
		t.Fatalf("state = %v", st)
	}
	if e.Store().Len() != 0 {
		t.Fatal("cancelled angle committed")
	}
}

func TestDeleteSelected(t *testing.T) {
	e, _ := newEditor(t)
	drawLine(t, e, 100, 50, 300, 50)
	id := e.Store().List()[0].ID
	if e.Do(press(t, "delete")) {
		t.Fatal("delete with no selection")
	}
	if !e.Select(id) || e.Machine().Selection() != id {
		t.Fatal("select failed")
	}
	if !e.Do(press(t, "delete")) || e.Store().Len() != 0 {
		t.Fatal("delete failed")
	}
	if e.Select("missing") {
		t.Fatal("selected a missing id")
	}
}

func TestVisibleFollowsPlayback(t *testing.T) {
	e, clock := newEditor(t)
	clock.Seek(10)
	drawLine(t, e, 100, 50, 200, 50)
	clock.Seek(50)
	drawLine(t, e, 100, 60, 200, 60)
	if v := e.Visible(); len(v) != 1 || v[0].Timestamp != 50 {
		t.Fatalf("visible at 50 = %+v", v)
	}
	clock.Seek(30)
	if v := e.Visible(); len(v) != 0 {
		t.Fatalf("visible at 30 = %+v", v)
	}
	e.SetShowAll(true)
	if len(e.Visible()) != 2 {
		t.Fatal("show all")
	}
	m := e.Markers()
	if len(m) != 2 || m[0].Position < 16.6 || m[0].Position > 16.7 {
		t.Fatalf("markers = %+v", m)
	}
}

func TestSeekNextPrevious(t *testing.T) {
	e, clock := newEditor(t)
	for _, ts := range []float64{10, 50} {
		clock.Seek(ts)
		drawLine(t, e, 100, 50, 200, 50)
	}
	clock.Seek(0)
	if !e.Do(press(t, "]")) || clock.CurrentTime() != 10 {
		t.Fatalf("next -> %v", clock.CurrentTime())
	}
	if e.Machine().Selection() == "" {
		t.Fatal("jump did not select")
	}
	e.Do(press(t, "]"))
	e.Do(press(t, "]"))
	if clock.CurrentTime() != 10 {
		t.Fatalf("wrap -> %v", clock.CurrentTime())
	}
	e.Do(press(t, "["))
	if clock.CurrentTime() != 50 {
		t.Fatalf("previous wrap -> %v", clock.CurrentTime())
	}
	e.StepFrame(3)
	if got := clock.CurrentTime(); got != 50.1 {
		t.Fatalf("step -> %v", got)
	}
}

func TestLoadKeepsStoreOnError(t *testing.T) {
	e, _ := newEditor(t)
	drawLine(t, e, 100, 50, 200, 50)
	before := e.Store().List()
	err := e.Load([]byte(`[{"id":"x","shapeKind":"blob"}]`))
	var derr *codec.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v", err)
	}
	if !annotation.EqualLists(before, e.Store().List()) {
		t.Fatal("store changed on failed load")
	}
	data, err := e.Export()
	if err != nil {
		t.Fatal(err)
	}
	other, _ := newEditor(t)
	if err := other.Load(data); err != nil {
		t.Fatal(err)
	}
	if !annotation.EqualLists(before, other.Store().List()) || other.Dirty() {
		t.Fatal("export/load mismatch")
	}
}

func TestSaveQueuesDiff(t *testing.T) {
	ctx := context.Background()
	repo, err := persist.NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	saver := persist.NewSaver(ctx, repo)
	defer saver.Close()
	e, _ := newEditor(t, WithSaver(saver))
	drawLine(t, e, 100, 50, 200, 50)
	drawLine(t, e, 100, 60, 200, 60)
	if !e.Dirty() {
		t.Fatal("expected dirty")
	}
	fs, err := e.Save()
	if err != nil || len(fs) != 2 {
		t.Fatalf("save = %d, %v", len(fs), err)
	}
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := persist.WaitAll(wctx, fs); err != nil {
		t.Fatal(err)
	}
	e.Do(press(t, "ctrl+z"))
	fs, _ = e.Save()
	if len(fs) != 1 || fs[0].Change.Op != persist.OpRemove {
		t.Fatalf("second save = %+v", fs)
	}
	if err := persist.WaitAll(wctx, fs); err != nil {
		t.Fatal(err)
	}

	fresh, _ := newEditor(t)
	if err := fresh.LoadFromRepository(ctx, repo); err != nil {
		t.Fatal(err)
	}
	if fresh.Store().Len() != 1 {
		t.Fatalf("reloaded %d records", fresh.Store().Len())
	}
}

func TestSaveWithoutSaver(t *testing.T) {
	e, _ := newEditor(t)
	if _, err := e.Save(); !errors.Is(err, ErrNoSaver) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedrawIncludesPreview(t *testing.T) {
	e, _ := newEditor(t)
	e.Machine().SetTool(tool.ToolLine)
	if err := e.PointerDown(coords.Pointer(100, 50)); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerMove(coords.Pointer(300, 50)); err != nil {
		t.Fatal(err)
	}
	r := render.NewRaster(1920, 1080)
	e.Redraw(r)
	if r.Image.RGBAAt(200, 0).A == 0 {
		t.Fatal("preview not drawn")
	}
	if e.Store().Len() != 0 {
		t.Fatal("preview reached the store")
	}
}

func TestOnChangeFires(t *testing.T) {
	n := 0
	e, _ := newEditor(t, WithOnChange(func() { n++ }))
	drawLine(t, e, 100, 50, 200, 50)
	if n == 0 {
		t.Fatal("no change notifications")
	}
}
