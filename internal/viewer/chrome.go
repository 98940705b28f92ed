package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/swingmark/internal/tool"
)

var (
	backdropColor = color.RGBA{48, 48, 48, 255}
	barColor      = color.RGBA{220, 220, 220, 255}
	pressedColor  = color.RGBA{160, 160, 160, 255}
	playedColor   = color.RGBA{170, 190, 220, 255}
	playheadColor = color.RGBA{200, 0, 0, 255}
)

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func label(dst *image.RGBA, x, y int, s string) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// toolLabel prefixes a tool name with its shortcut letter.
func toolLabel(t tool.Tool, km tool.Keymap) string {
	for r, kt := range km.Tools {
		if kt == t {
			return fmt.Sprintf("%c:%s", r-'a'+'A', t)
		}
	}
	return t.String()
}

func (v *Viewer) drawToolbar(dst *image.RGBA) {
	l := v.layout
	fill(dst, l.Toolbar, barColor)
	m := v.editor.Machine()
	for i, t := range tool.Tools() {
		r := l.ToolRect(i)
		if t == m.Tool() {
			fill(dst, r, pressedColor)
		}
		label(dst, r.Min.X+4, r.Min.Y+16, toolLabel(t, v.keymap))
	}
	style := m.Style()
	for i, e := range v.palette.Entries {
		r := l.SwatchRect(i)
		fill(dst, r, e.Color)
		if string(style.Color) == e.Name {
			outline(dst, r.Inset(-2), color.Black)
		}
	}
	for i, w := range StrokeWidths {
		r := l.WidthRect(i, len(v.palette.Entries))
		if w == style.StrokeWidth {
			fill(dst, r, pressedColor)
		}
		cy := (r.Min.Y + r.Max.Y) / 2
		th := int(w)
		fill(dst, image.Rect(r.Min.X+6, cy-th/2, r.Min.X+30, cy-th/2+max(th, 1)), color.Black)
		label(dst, r.Min.X+36, r.Min.Y+13, fmt.Sprintf("%g", w))
	}
}

func (v *Viewer) drawTimeline(dst *image.RGBA) {
	l := v.layout
	fill(dst, l.Timeline, barColor)
	p := v.editor.Player()
	duration := p.Duration()
	if duration > 0 {
		x := l.TimelineX(p.CurrentTime() / duration * 100)
		fill(dst, image.Rect(l.Timeline.Min.X, l.Timeline.Min.Y+8, x, l.Timeline.Max.Y-8), playedColor)
	}
	selected := v.editor.Machine().Selection()
	for _, mk := range v.editor.Markers() {
		x := l.TimelineX(mk.Position)
		c := color.RGBA{0, 0, 0, 255}
		if a, ok := v.editor.Store().Get(mk.ID); ok {
			c = v.palette.Resolve(a.Style.Color)
		}
		top := l.Timeline.Min.Y + 4
		if mk.ID == selected {
			top = l.Timeline.Min.Y
		}
		fill(dst, image.Rect(x-1, top, x+2, l.Timeline.Max.Y-4), c)
	}
	if duration > 0 {
		x := l.TimelineX(p.CurrentTime() / duration * 100)
		fill(dst, image.Rect(x, l.Timeline.Min.Y, x+1, l.Timeline.Max.Y), playheadColor)
	}
}

func (v *Viewer) drawStatus(dst *image.RGBA) {
	l := v.layout
	fill(dst, l.Status, barColor)
	m := v.editor.Machine()
	text := fmt.Sprintf("%s  %s  t=%.2fs  %d marks", m.Tool(), m.Status(), v.editor.Player().CurrentTime(), v.editor.Store().Len())
	if v.editor.ShowAll() {
		text += "  (all)"
	}
	if v.editor.Dirty() {
		text += "  *"
	}
	if v.text.active {
		text = "Enter:place  Esc:cancel"
	} else if msg := v.currentMessage(); msg != "" {
		text += "  " + msg
	}
	label(dst, l.Status.Min.X+6, l.Status.Min.Y+15, text)
}

// drawTextEntry shows the label being typed at its anchor.
func (v *Viewer) drawTextEntry(dst *image.RGBA) {
	if !v.text.active {
		return
	}
	l := v.layout
	sx := float64(l.Video.Dx()) / float64(v.frameW)
	sy := float64(l.Video.Dy()) / float64(v.frameH)
	x := l.Video.Min.X + int(v.text.anchor.X*sx)
	y := l.Video.Min.Y + int(v.text.anchor.Y*sy)
	c := v.palette.Resolve(v.editor.Machine().Style().Color)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y+13)}
	d.DrawString(v.text.String() + "|")
}
