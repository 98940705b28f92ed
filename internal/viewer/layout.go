package viewer

import (
	"image"
	"math"

	"github.com/example/swingmark/internal/coords"
	"github.com/example/swingmark/internal/tool"
)

const (
	toolbarWidth   = 72
	buttonHeight   = 24
	swatchSize     = 16
	swatchesPerRow = 3
	timelineHeight = 28
	statusHeight   = 22
)

// StrokeWidths are the widths offered in the toolbar.
var StrokeWidths = []float64{1, 2, 3, 5, 8, 12}

// Layout splits the window into the toolbar, video, timeline and status
// areas. Video keeps the frame's aspect ratio and is centred in the space
// left over.
type Layout struct {
	Window   image.Rectangle
	Toolbar  image.Rectangle
	Video    image.Rectangle
	Timeline image.Rectangle
	Status   image.Rectangle
}

// NewLayout computes the areas for a window of winW×winH showing a
// frameW×frameH video.
func NewLayout(winW, winH, frameW, frameH int) Layout {
	l := Layout{Window: image.Rect(0, 0, winW, winH)}
	l.Toolbar = image.Rect(0, 0, toolbarWidth, winH)
	l.Status = image.Rect(toolbarWidth, winH-statusHeight, winW, winH)
	l.Timeline = image.Rect(toolbarWidth, l.Status.Min.Y-timelineHeight, winW, l.Status.Min.Y)
	area := image.Rect(toolbarWidth, 0, winW, l.Timeline.Min.Y)
	l.Video = fit(area, frameW, frameH)
	return l
}

func fit(area image.Rectangle, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 || area.Dx() <= 0 || area.Dy() <= 0 {
		return image.Rectangle{Min: area.Min, Max: area.Min}
	}
	zoom := math.Min(float64(area.Dx())/float64(w), float64(area.Dy())/float64(h))
	dw := int(float64(w) * zoom)
	dh := int(float64(h) * zoom)
	x := area.Min.X + (area.Dx()-dw)/2
	y := area.Min.Y + (area.Dy()-dh)/2
	return image.Rect(x, y, x+dw, y+dh)
}

// ToolRect is the button for the i-th tool.
func (l Layout) ToolRect(i int) image.Rectangle {
	y := l.Toolbar.Min.Y + i*buttonHeight
	return image.Rect(l.Toolbar.Min.X, y, l.Toolbar.Max.X, y+buttonHeight)
}

// SwatchRect is the color swatch for palette entry i.
func (l Layout) SwatchRect(i int) image.Rectangle {
	top := l.ToolRect(len(tool.Tools())).Min.Y + 6
	x := l.Toolbar.Min.X + 4 + (i%swatchesPerRow)*(swatchSize+6)
	y := top + (i/swatchesPerRow)*(swatchSize+4)
	return image.Rect(x, y, x+swatchSize, y+swatchSize)
}

// WidthRect is the button for StrokeWidths[i], below colors swatches.
func (l Layout) WidthRect(i, swatches int) image.Rectangle {
	rows := (swatches + swatchesPerRow - 1) / swatchesPerRow
	top := l.SwatchRect(0).Min.Y + rows*(swatchSize+4) + 6
	y := top + i*(buttonHeight-6)
	return image.Rect(l.Toolbar.Min.X, y, l.Toolbar.Max.X, y+buttonHeight-6)
}

// TimeAt converts an x position on the timeline into media time.
func (l Layout) TimeAt(x int, duration float64) float64 {
	if duration <= 0 || l.Timeline.Dx() <= 0 {
		return 0
	}
	f := float64(x-l.Timeline.Min.X) / float64(l.Timeline.Dx())
	return math.Max(0, math.Min(1, f)) * duration
}

// TimelineX is the x position of a marker at percent along the bar.
func (l Layout) TimelineX(percent float64) int {
	return l.Timeline.Min.X + int(percent/100*float64(l.Timeline.Dx()))
}

// ScreenRect reports the video area for coordinate mapping.
func (l Layout) ScreenRect() coords.Rect {
	return coords.Rect{
		X:      float64(l.Video.Min.X),
		Y:      float64(l.Video.Min.Y),
		Width:  float64(l.Video.Dx()),
		Height: float64(l.Video.Dy()),
	}
}
