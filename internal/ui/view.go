package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	screenTitle       = "Pair Code Fetcher"
	fetchErrorText    = "Failed to fetch pair code"
	identifierMissing = "Not Connected"
)

// View renders the pairing screen.
func (m Model) View() string {
	styles := m.theme.Styles()

	var body string
	switch {
	case m.loading:
		body = m.renderLoading(styles)
	case m.fetchErr != nil:
		body = m.renderError(styles)
	default:
		body = m.renderPairing(styles)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render(screenTitle),
		"",
		body,
	)
	panel := styles.Panel.Width(maxInt(PanelMinWidth, lipgloss.Width(content)+6)).Render(content)
	footer := m.help.View(m.keys)

	screen := lipgloss.JoinVertical(lipgloss.Center, panel, "", footer)
	if m.width == 0 || m.height == 0 {
		return screen
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, screen,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.Background)))
}

func (m Model) renderLoading(styles Styles) string {
	return m.spinner.View() + " " + styles.MutedText.Render("Fetching pair code...")
}

// renderError replaces the normal content while the latest fetch failed.
// The last good code stays visible, dimmed, so a viewer can still pair.
func (m Model) renderError(styles Styles) string {
	lines := []string{
		styles.DangerText.Render(fetchErrorText),
		styles.MutedText.Width(ErrorDetailWidth).Align(lipgloss.Center).
			Render(truncate(firstLine(m.fetchErr.Error()), ErrorDetailWidth*2)),
	}
	if m.code != "" {
		lines = append(lines, "", styles.MutedText.Render("Last code: "+m.code))
	}
	lines = append(lines, "", styles.MutedText.Render("Press r to retry"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) renderPairing(styles Styles) string {
	var b strings.Builder

	code := m.code
	if code == "" {
		code = "-"
	}
	b.WriteString(styles.Text.Render("Pair Code: ") + styles.Code.Render(code))
	b.WriteString("\n")

	if m.showQR && m.qr != "" {
		b.WriteString("\n")
		b.WriteString(m.qr)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Button.Render("Refresh (r)"))
	b.WriteString("\n\n")

	b.WriteString(styles.Text.Render("Socket Status: ") + m.theme.StatusStyle(m.status).Render(m.status.String()))
	b.WriteString("\n")

	id := identifierMissing
	if m.identifier != "" {
		id = truncateMiddle(m.identifier, 32)
	}
	b.WriteString(styles.MutedText.Render("Socket ID (SID): " + id))

	return lipgloss.JoinVertical(lipgloss.Center, strings.Split(b.String(), "\n")...)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
