package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the pairing screen.
type Theme struct {
	Name string

	// Page and panel
	Background string // area around the panel
	Surface    string // panel body
	Border     string

	// Text colors
	Title   string
	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Refresh button
	ButtonBg   string
	ButtonText string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			BorderBackground(lipgloss.Color(t.Background)).
			Padding(1, 3).
			Align(lipgloss.Center),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Title)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		Code: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Button: lipgloss.NewStyle().
			Background(lipgloss.Color(t.ButtonBg)).
			Foreground(lipgloss.Color(t.ButtonText)).
			Padding(0, 3).
			Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Panel      lipgloss.Style
	Title      lipgloss.Style
	Text       lipgloss.Style
	MutedText  lipgloss.Style
	Code       lipgloss.Style
	DangerText lipgloss.Style
	Button     lipgloss.Style
}

// StatusStyle returns a bold style in the color for s.
func (t Theme) StatusStyle(s ConnStatus) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.statusColor(s))).
		Bold(true)
}

// Theme definitions

var themes = map[string]Theme{
	"Teal":     tealTheme(),
	"Nightfox": nightfoxTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Teal", "Nightfox", "Slate"}

// GetTheme returns a theme by name, falling back to Teal.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return tealTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func tealTheme() Theme {
	// Light card on a teal page, the TV app's stock look.
	return Theme{
		Name: "Teal",

		Background: "#008080",
		Surface:    "#ffffff",
		Border:     "#d0d7de",

		Title:   "#777777",
		Text:    "#333333",
		Muted:   "#6c757d",
		Accent:  "#111111",
		Success: "#1e7e34",
		Warning: "#b8860b",
		Danger:  "#ff0000",

		ButtonBg:   "#007bff",
		ButtonText: "#ffffff",
	}
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		Border:     "#39506d", // bg4

		Title:   "#738091", // comment
		Text:    "#cdcecf", // fg1
		Muted:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red

		ButtonBg:   "#719cd6",
		ButtonText: "#131a24",
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		Border:     "#334155", // slate-700

		Title:   "#94a3b8", // slate-400
		Text:    "#f1f5f9", // slate-100
		Muted:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500

		ButtonBg:   "#0284c7", // sky-600
		ButtonText: "#f8fafc", // slate-50
	}
}
