package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/timeline"
)

// describe summarises a record's geometry in one line.
func describe(a annotation.Annotation) string {
	switch g := a.Geometry.(type) {
	case annotation.Segment:
		if a.Kind == annotation.KindCircle {
			return fmt.Sprintf("centre %s r=%.0f", point(g.Start), geom.CircleRadius(g.Start, g.End))
		}
		return fmt.Sprintf("%s → %s", point(g.Start), point(g.End))
	case annotation.AngleGeometry:
		m := geom.MeasureAngle(g.ArmA, g.Vertex, g.ArmB, a.Style.StrokeWidth)
		return fmt.Sprintf("%s at %s", render.AngleLabel(m.Degrees), point(g.Vertex))
	case annotation.FreehandGeometry:
		return fmt.Sprintf("%d points from %s", len(g.Points), point(g.Points[0]))
	case annotation.TextGeometry:
		return fmt.Sprintf("%q at %s", g.Text, point(g.Anchor))
	}
	return ""
}

func point(p geom.Point) string { return fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y) }

func (m Model) tokenColor(tok annotation.ColorToken) lipgloss.Color {
	return lipgloss.Color(palette.ToHex(m.colors.Resolve(tok)))
}

func (m Model) renderList(width, height int) string {
	var b strings.Builder
	p := m.editor.Player()
	now := p.CurrentTime()
	tol := m.editor.Tolerance()

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %.3fs / %.3fs", m.editor.VideoID(), now, p.Duration())))
	b.WriteByte('\n')

	marks := m.marks()
	if len(marks) == 0 {
		b.WriteString(itemStyle.Render("No annotations"))
	}

	innerHeight := height - 2
	visible := innerHeight - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(marks))

	for i := start; i < end; i++ {
		a := marks[i]
		swatch := lipgloss.NewStyle().Foreground(m.tokenColor(a.Style.Color)).Render("■")
		line := fmt.Sprintf("%-8s %-7s %s", a.Kind, a.Style.Color, describe(a))

		var style lipgloss.Style
		switch {
		case i == m.cursor:
			style = itemSelectedStyle
		case timeline.Active(a, now, tol):
			style = itemActiveStyle
		default:
			style = itemStyle
		}
		b.WriteString(timeStyle.Render(fmt.Sprintf("%.3fs", a.Timestamp)))
		b.WriteString(" " + swatch + " ")
		b.WriteString(style.Render(line))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return listStyle.Width(width - 2).Height(max(innerHeight, 1)).Render(b.String())
}

// renderBar draws one tick per record along the media duration with the
// playhead underneath.
func (m Model) renderBar(width int) string {
	inner := width - 6
	if inner < 2 {
		inner = 2
	}
	p := m.editor.Player()
	cells := make([]string, inner)
	for i := range cells {
		cells[i] = "─"
	}
	selected := m.editor.Machine().Selection()
	for _, mk := range m.editor.Markers() {
		i := column(mk.Position, inner)
		glyph := "│"
		if mk.ID == selected {
			glyph = "┃"
		}
		c := colorFg
		if a, ok := m.editor.Store().Get(mk.ID); ok {
			c = m.tokenColor(a.Style.Color)
		}
		cells[i] = lipgloss.NewStyle().Foreground(c).Render(glyph)
	}

	head := strings.Repeat(" ", inner)
	if d := p.Duration(); d > 0 {
		i := column(timeline.MarkerPosition(p.CurrentTime(), d), inner)
		head = strings.Repeat(" ", i) + playheadStyle.Render("▲") + strings.Repeat(" ", inner-i-1)
	}
	return barStyle.Width(width - 2).Render(strings.Join(cells, "") + "\n" + head)
}

// column maps a 0..100 position onto a cell index.
func column(percent float64, cells int) int {
	i := int(percent / 100 * float64(cells-1))
	return max(0, min(i, cells-1))
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %d marks", m.editor.Store().Len())
	if m.editor.ShowAll() {
		left += "  all"
	}
	if m.editor.Dirty() {
		left += dirtyStyle.Render("  ● unsaved")
	}

	right := m.status
	if m.err != nil {
		right = errorStyle.Render(m.err.Error())
	}
	right += "  ? help "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("swingmark timeline"))
	b.WriteString("\n\n")
	h := m.help
	h.ShowAll = true
	b.WriteString(h.View(keys))
	b.WriteString("\n\n")
	b.WriteString(itemStyle.Foreground(colorDim).Render("Press ? to close help"))
	return b.String()
}
