package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the pairing screen.
type keyMap struct {
	Refresh    key.Binding
	ToggleQR   key.Binding
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r/enter", "Refresh code"),
		),
		ToggleQR: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Toggle QR"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "More keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.ToggleQR},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
