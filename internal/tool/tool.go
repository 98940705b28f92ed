// Package tool turns pointer gestures into committed annotations.
package tool

import (
	"fmt"
	"strings"

	"github.com/example/swingmark/internal/annotation"
)

// Tool is the active drawing tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolLine
	ToolCircle
	ToolArrow
	ToolAngle
	ToolFreehand
	ToolText
)

var toolNames = []string{"select", "line", "circle", "arrow", "angle", "freehand", "text"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{ToolSelect, ToolLine, ToolCircle, ToolArrow, ToolAngle, ToolFreehand, ToolText}
}

// Parse matches a tool by name.
func Parse(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return ToolSelect, fmt.Errorf("unknown tool %q", s)
}

// Kind is the shape a drawing tool produces. Select has none.
func (t Tool) Kind() (annotation.ShapeKind, bool) {
	switch t {
	case ToolLine:
		return annotation.KindLine, true
	case ToolCircle:
		return annotation.KindCircle, true
	case ToolArrow:
		return annotation.KindArrow, true
	case ToolAngle:
		return annotation.KindAngle, true
	case ToolFreehand:
		return annotation.KindFreehand, true
	case ToolText:
		return annotation.KindText, true
	}
	return "", false
}

func (t Tool) drags() bool {
	return t == ToolLine || t == ToolCircle || t == ToolArrow || t == ToolFreehand
}

// State is the machine's phase.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateCollecting
	StateAwaitingText
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateCollecting:
		return "collecting"
	case StateAwaitingText:
		return "awaiting-text"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Status is the phase plus, while collecting, how many points are held.
type Status struct {
	State     State
	Collected int
}

func (s Status) String() string {
	if s.State == StateCollecting {
		return fmt.Sprintf("collecting(%d)", s.Collected)
	}
	return s.State.String()
}
