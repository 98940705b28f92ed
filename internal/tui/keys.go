package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Seek     key.Binding
	Next     key.Binding
	Prev     key.Binding
	StepBack key.Binding
	StepFwd  key.Binding
	Delete   key.Binding
	Undo     key.Binding
	Redo     key.Binding
	ShowAll  key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Delete, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Seek},
		{k.Next, k.Prev, k.StepBack, k.StepFwd},
		{k.Delete, k.Undo, k.Redo, k.ShowAll},
		{k.Save, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Seek: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "seek to mark"),
	),
	Next: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next mark"),
	),
	Prev: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev mark"),
	),
	StepBack: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "frame back"),
	),
	StepFwd: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "frame forward"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z", "u"),
		key.WithHelp("ctrl+z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "redo"),
	),
	ShowAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all/active"),
	),
	Save: key.NewBinding(
		key.WithKeys("s", "ctrl+s"),
		key.WithHelp("s", "save"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
