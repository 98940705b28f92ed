package tool

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
)

// Action is what a key press asks the editor to do.
type Action int

const (
	ActionNone Action = iota
	ActionSelectTool
	ActionUndo
	ActionRedo
	ActionDelete
	ActionCancel
	ActionNextMarker
	ActionPrevMarker
	ActionStepBack
	ActionStepForward
)

func (a Action) String() string {
	switch a {
	case ActionSelectTool:
		return "tool"
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	case ActionDelete:
		return "delete"
	case ActionCancel:
		return "cancel"
	case ActionNextMarker:
		return "next"
	case ActionPrevMarker:
		return "previous"
	case ActionStepBack:
		return "step-back"
	case ActionStepForward:
		return "step-forward"
	}
	return "none"
}

// Binding is the resolved meaning of a key press. Tool is set for
// ActionSelectTool.
type Binding struct {
	Action Action
	Tool   Tool
}

// Keymap resolves key events into bindings.
type Keymap struct {
	Tools map[rune]Tool
}

// DefaultKeymap returns the standard single letter tool shortcuts.
func DefaultKeymap() Keymap {
	return Keymap{Tools: map[rune]Tool{
		'v': ToolSelect,
		'l': ToolLine,
		'c': ToolCircle,
		'a': ToolArrow,
		'g': ToolAngle,
		'p': ToolFreehand,
		't': ToolText,
	}}
}

const primaryMods = key.ModControl | key.ModMeta

// Lookup resolves e. Releases never match.
func (k Keymap) Lookup(e key.Event) (Binding, bool) {
	if e.Direction == key.DirRelease {
		return Binding{}, false
	}
	primary := e.Modifiers&primaryMods != 0
	shift := e.Modifiers&key.ModShift != 0
	r := unicode.ToLower(e.Rune)
	if r <= 0 {
		r = runeForCode(e.Code)
	}

	switch e.Code {
	case key.CodeEscape:
		return Binding{Action: ActionCancel}, true
	case key.CodeDeleteBackspace, key.CodeDeleteForward:
		if !primary {
			return Binding{Action: ActionDelete}, true
		}
	case key.CodeLeftArrow:
		return Binding{Action: ActionStepBack}, true
	case key.CodeRightArrow:
		return Binding{Action: ActionStepForward}, true
	}

	if primary {
		switch r {
		case 'z':
			if shift {
				return Binding{Action: ActionRedo}, true
			}
			return Binding{Action: ActionUndo}, true
		case 'y':
			return Binding{Action: ActionRedo}, true
		}
		return Binding{}, false
	}
	if e.Modifiers&key.ModAlt != 0 {
		return Binding{}, false
	}
	switch r {
	case ']':
		return Binding{Action: ActionNextMarker}, true
	case '[':
		return Binding{Action: ActionPrevMarker}, true
	}
	if t, ok := k.Tools[r]; ok {
		return Binding{Action: ActionSelectTool, Tool: t}, true
	}
	return Binding{}, false
}

func runeForCode(c key.Code) rune {
	switch {
	case c >= key.CodeA && c <= key.CodeZ:
		return 'a' + rune(c-key.CodeA)
	case c == key.CodeLeftSquareBracket:
		return '['
	case c == key.CodeRightSquareBracket:
		return ']'
	}
	return -1
}

// ParseKey builds a press event from a chord such as "ctrl+shift+z",
// "cmd+y", "escape" or "g". Remote clients send chords in this form.
func ParseKey(chord string) (key.Event, error) {
	e := key.Event{Direction: key.DirPress, Rune: -1}
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return e, fmt.Errorf("empty key chord %q", chord)
	}
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "control":
			e.Modifiers |= key.ModControl
		case "cmd", "meta", "super":
			e.Modifiers |= key.ModMeta
		case "shift":
			e.Modifiers |= key.ModShift
		case "alt", "option":
			e.Modifiers |= key.ModAlt
		default:
			return e, fmt.Errorf("unknown modifier %q in %q", mod, chord)
		}
	}
	name := parts[len(parts)-1]
	switch name {
	case "escape", "esc":
		e.Code = key.CodeEscape
	case "delete", "del":
		e.Code = key.CodeDeleteForward
	case "backspace":
		e.Code = key.CodeDeleteBackspace
	case "left":
		e.Code = key.CodeLeftArrow
	case "right":
		e.Code = key.CodeRightArrow
	default:
		r, size := utf8.DecodeRuneInString(name)
		if size != len(name) {
			return e, fmt.Errorf("unknown key %q", name)
		}
		e.Rune = r
		switch {
		case r >= 'a' && r <= 'z':
			e.Code = key.CodeA + key.Code(r-'a')
		case r == '[':
			e.Code = key.CodeLeftSquareBracket
		case r == ']':
			e.Code = key.CodeRightSquareBracket
		}
	}
	return e, nil
}
