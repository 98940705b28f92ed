package viewer

import (
	"golang.org/x/mobile/event/key"

	"github.com/example/swingmark/internal/geom"
)

// textEntry collects a label typed in the window for the text tool.
type textEntry struct {
	active bool
	anchor geom.Point
	buf    []rune
	done   func(string, bool)
}

// RequestText starts collecting; the machine is answered on Enter or Escape.
func (t *textEntry) RequestText(anchor geom.Point, done func(string, bool)) {
	t.active = true
	t.anchor = anchor
	t.buf = t.buf[:0]
	t.done = done
}

func (t *textEntry) String() string { return string(t.buf) }

// handleKey consumes e while active and reports whether it did.
func (t *textEntry) handleKey(e key.Event) bool {
	if !t.active {
		return false
	}
	if e.Direction == key.DirRelease {
		return true
	}
	switch e.Code {
	case key.CodeReturnEnter:
		t.finish(string(t.buf), true)
	case key.CodeEscape:
		t.finish("", false)
	case key.CodeDeleteBackspace:
		if n := len(t.buf); n > 0 {
			t.buf = t.buf[:n-1]
		}
	default:
		if e.Rune > 0 {
			t.buf = append(t.buf, e.Rune)
		}
	}
	return true
}

func (t *textEntry) finish(s string, ok bool) {
	done := t.done
	t.abandon()
	if done != nil {
		done(s, ok)
	}
}

// abandon closes the entry without answering the machine.
func (t *textEntry) abandon() {
	t.active = false
	t.done = nil
	t.buf = t.buf[:0]
}
