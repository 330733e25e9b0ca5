package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/five82/pairscreen/internal/realtime"
)

const qrGlyphs = "█▀▄"

func TestViewLoading(t *testing.T) {
	m, _ := newTestModel(t, nil)

	out := m.View()
	require.Contains(t, out, screenTitle)
	require.Contains(t, out, "Fetching pair code...")
	require.NotContains(t, out, "Pair Code:")
	require.NotContains(t, out, "Socket Status:")
}

func TestViewPairing(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "ABC123", nil)

	out := m.View()
	require.Contains(t, out, "Pair Code: ABC123")
	require.Contains(t, out, "Socket Status: Connecting...")
	require.Contains(t, out, "Socket ID (SID): "+identifierMissing)
	require.Contains(t, out, "Refresh (r)")
	require.NotContains(t, out, fetchErrorText)
	require.True(t, strings.ContainsAny(out, qrGlyphs), "QR symbol expected by default")

	m, _ = update(t, m, connEventMsg{gen: m.connGen, event: realtime.Event{Kind: realtime.EventConnect, ID: "sid-1"}})
	out = m.View()
	require.Contains(t, out, "Socket Status: Connected to Server")
	require.Contains(t, out, "Socket ID (SID): sid-1")
}

func TestViewStatusStrings(t *testing.T) {
	cases := []struct {
		status ConnStatus
		want   string
	}{
		{StatusDisconnected, "Disconnected"},
		{StatusConnecting, "Connecting..."},
		{StatusConnected, "Connected to Server"},
		{StatusFailed, "Failed to connect to the server"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.status.String())
	}
}

func TestViewFetchErrorSuppressesNormalContent(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "ABC123", nil)
	m.RequestCode()
	m, _ = deliver(t, m, "", errors.New("api /api/pair-code returned status 503"))

	out := m.View()
	require.Contains(t, out, fetchErrorText)
	require.Contains(t, out, "status 503")
	require.Contains(t, out, "Last code: ABC123")
	require.Contains(t, out, "Press r to retry")
	require.NotContains(t, out, "Socket Status:")
	require.NotContains(t, out, "Pair Code: ABC123")
}

func TestViewQRToggle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "ABC123", nil)
	require.NotEmpty(t, m.qr)

	m, _ = update(t, m, keyPress("c"))
	require.False(t, strings.ContainsAny(m.View(), qrGlyphs))

	m, _ = update(t, m, keyPress("c"))
	require.True(t, strings.ContainsAny(m.View(), qrGlyphs))
}

func TestViewPlacedInWindow(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "ABC123", nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 60)
	require.Contains(t, strings.Join(lines, "\n"), "Pair Code: ABC123")
}

func TestRenderQR(t *testing.T) {
	qr, err := renderQR("ABC123")
	require.NoError(t, err)
	require.True(t, strings.ContainsAny(qr, qrGlyphs))
	require.False(t, strings.HasSuffix(qr, "\n"))
}
