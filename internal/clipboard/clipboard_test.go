package clipboard

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

// memBackend keeps one payload per format.
type memBackend struct {
	data map[format][]byte
}

func (m *memBackend) write(f format, data []byte) error {
	if f == fmtAnnotations {
		m.data[fmtText] = data
	}
	m.data[f] = data
	return nil
}

func (m *memBackend) read(f format) ([]byte, error) { return m.data[f], nil }

func useMemory(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	initOnce.Do(func() {})
	initErr = nil
	active = &memBackend{data: map[format][]byte{}}
	t.Cleanup(func() {
		initOnce = sync.Once{}
		active = nil
	})
}

func TestEnsureInitWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	initOnce = sync.Once{}
	initErr = nil

	err := WriteText("hello world")
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
	initOnce = sync.Once{}
	initErr = nil
}

func TestAnnotationsRoundTrip(t *testing.T) {
	useMemory(t)
	list := []annotation.Annotation{
		annotation.New(annotation.KindLine, annotation.Segment{Start: geom.Pt(0, 0), End: geom.Pt(10, 5)}, annotation.Style{Color: "red", StrokeWidth: 3}, 1.5),
		annotation.New(annotation.KindText, annotation.TextGeometry{Anchor: geom.Pt(4, 4), Text: "hips"}, annotation.Style{Color: "white", StrokeWidth: 2}, 2),
	}
	if err := WriteAnnotations(list); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAnnotations()
	if err != nil {
		t.Fatal(err)
	}
	if !annotation.EqualLists(list, got) {
		t.Fatalf("got %+v", got)
	}
	text, err := ReadText()
	if err != nil || text == "" || text[0] != '[' {
		t.Fatalf("text = %q, %v", text, err)
	}
}

func TestReadEmpty(t *testing.T) {
	useMemory(t)
	if _, err := ReadAnnotations(); err == nil {
		t.Error("expected error for empty clipboard")
	}
	if _, err := ReadText(); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := ReadImage(); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestImageRoundTrip(t *testing.T) {
	useMemory(t)
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	if err := WriteImage(img); err != nil {
		t.Fatal(err)
	}
	got, err := ReadImage()
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := got.At(1, 1).RGBA(); r>>8 != 200 {
		t.Fatalf("pixel = %v", got.At(1, 1))
	}
}
