// Package tui implements the Bubble Tea timeline browser.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/tool"
)

// SaveFunc persists the session. It runs on the update loop and returns a
// message for the status bar plus any repository writes still in flight.
type SaveFunc func(e *editor.Editor) (string, []*persist.Future, error)

type savedMsg struct {
	detail string
	err    error
}

// Model is the top-level Bubble Tea model.
type Model struct {
	editor *editor.Editor
	colors *palette.Palette
	save   SaveFunc
	help   help.Model

	width  int
	height int

	cursor int

	status   string
	err      error
	showHelp bool
}

// Option configures a Model.
type Option func(*Model)

// WithSave sets what the save key does.
func WithSave(fn SaveFunc) Option { return func(m *Model) { m.save = fn } }

// WithPalette sets the colors used for marker ticks.
func WithPalette(p *palette.Palette) Option { return func(m *Model) { m.colors = p } }

// New creates a model browsing e.
func New(e *editor.Editor, opts ...Option) Model {
	m := Model{editor: e, colors: palette.Default(), help: help.New()}
	for _, o := range opts {
		o(&m)
	}
	m.syncCursor()
	return m
}

// marks lists the records in time order.
func (m Model) marks() []annotation.Annotation {
	markers := m.editor.Markers()
	out := make([]annotation.Annotation, 0, len(markers))
	for _, mk := range markers {
		if a, ok := m.editor.Store().Get(mk.ID); ok {
			out = append(out, a)
		}
	}
	return out
}

// syncCursor moves the cursor onto the editor's selection.
func (m *Model) syncCursor() {
	sel := m.editor.Machine().Selection()
	marks := m.marks()
	for i, a := range marks {
		if a.ID == sel {
			m.cursor = i
			return
		}
	}
	m.clampCursor(len(marks))
}

func (m *Model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectCursor() (annotation.Annotation, bool) {
	marks := m.marks()
	m.clampCursor(len(marks))
	if len(marks) == 0 {
		return annotation.Annotation{}, false
	}
	a := marks[m.cursor]
	m.editor.Select(a.ID)
	return a, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case savedMsg:
		m.status, m.err = msg.detail, msg.err
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.selectCursor()

		case key.Matches(msg, keys.Down):
			m.cursor++
			m.selectCursor()

		case key.Matches(msg, keys.Seek):
			if a, ok := m.selectCursor(); ok {
				m.editor.Seek(a.Timestamp)
			}

		case key.Matches(msg, keys.Next):
			if !m.editor.Do(tool.Binding{Action: tool.ActionNextMarker}) {
				m.status = "no marks"
			}
			m.syncCursor()

		case key.Matches(msg, keys.Prev):
			if !m.editor.Do(tool.Binding{Action: tool.ActionPrevMarker}) {
				m.status = "no marks"
			}
			m.syncCursor()

		case key.Matches(msg, keys.StepBack):
			m.editor.Do(tool.Binding{Action: tool.ActionStepBack})

		case key.Matches(msg, keys.StepFwd):
			m.editor.Do(tool.Binding{Action: tool.ActionStepForward})

		case key.Matches(msg, keys.Delete):
			if _, ok := m.selectCursor(); ok && m.editor.DeleteSelected() {
				m.status = "deleted"
			}
			m.clampCursor(m.editor.Store().Len())

		case key.Matches(msg, keys.Undo):
			if m.editor.Do(tool.Binding{Action: tool.ActionUndo}) {
				m.status = "undone"
			}
			m.clampCursor(m.editor.Store().Len())

		case key.Matches(msg, keys.Redo):
			if m.editor.Do(tool.Binding{Action: tool.ActionRedo}) {
				m.status = "redone"
			}
			m.clampCursor(m.editor.Store().Len())

		case key.Matches(msg, keys.ShowAll):
			m.editor.SetShowAll(!m.editor.ShowAll())

		case key.Matches(msg, keys.Save):
			return m, m.startSave()
		}
	}

	return m, nil
}

func (m *Model) startSave() tea.Cmd {
	if m.save == nil {
		m.status = "nowhere to save"
		return nil
	}
	detail, futures, err := m.save(m.editor)
	if err != nil {
		m.err = err
		return nil
	}
	m.status = detail
	if len(futures) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := persist.WaitAll(ctx, futures); err != nil {
			return savedMsg{err: fmt.Errorf("save: %w", err)}
		}
		return savedMsg{detail: fmt.Sprintf("saved %d changes", len(futures))}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	bar := m.renderBar(m.width)
	listHeight := m.height - lipgloss.Height(bar) - 2
	list := m.renderList(m.width, listHeight)

	return lipgloss.JoinVertical(lipgloss.Left, list, bar, m.renderStatusBar(), m.help.View(keys))
}

// Run starts the browser on the terminal.
func Run(e *editor.Editor, opts ...Option) error {
	p := tea.NewProgram(New(e, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
