package ui

// Panel layout.
const (
	// PanelMinWidth keeps the panel stable while the code text changes.
	PanelMinWidth = 44

	// ErrorDetailWidth wraps long fetch errors inside the panel.
	ErrorDetailWidth = 48
)
