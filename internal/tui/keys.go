package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browser bindings. Printable keys are left to the filter
// input, so every binding here is a control or navigation key.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	First     key.Binding
	Last      key.Binding
	Copy      key.Binding
	Quit      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/dn", "previous/next day"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("C-j", "next day"),
	),
	First: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home/end", "first/last day"),
	),
	Last: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "last day"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy path"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	PreviewUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u/C-d", "scroll transcript"),
	),
	PreviewDn: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "scroll transcript down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "transcript page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "transcript page down"),
	),
}

// ShortHelp lists one binding per key pair for the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.First, k.PreviewUp, k.Copy, k.Quit}
}
