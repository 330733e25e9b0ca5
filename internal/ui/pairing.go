package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pairscreen/internal/pairing"
	"github.com/five82/pairscreen/internal/realtime"
)

// RequestCode issues a new fetch. Only the most recently issued fetch may
// change the screen; earlier responses are discarded when they arrive.
func (m *Model) RequestCode() tea.Cmd {
	m.seq++
	m.loading = true
	return fetchCodeCmd(m.ctx, m.fetcher, m.seq)
}

// Refresh is the user-triggered form of RequestCode.
func (m *Model) Refresh() tea.Cmd {
	m.log.Debug().Uint64("seq", m.seq+1).Msg("refresh requested")
	return m.RequestCode()
}

// Close tears down the open session. Safe to call more than once.
func (m *Model) Close() {
	m.closeConn()
}

func fetchCodeCmd(ctx context.Context, fetcher pairing.CodeFetcher, seq uint64) tea.Cmd {
	return func() tea.Msg {
		// oldCode stays empty: the server issues a fresh code either way.
		code, err := fetcher.FetchCode(ctx, "")
		return codeMsg{seq: seq, code: code, err: err}
	}
}

func waitForEvent(gen uint64, conn Connection) tea.Cmd {
	events := conn.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return connClosedMsg{gen: gen}
		}
		return connEventMsg{gen: gen, event: ev}
	}
}

func (m *Model) handleCode(msg codeMsg) tea.Cmd {
	if msg.seq != m.seq {
		m.log.Debug().
			Uint64("seq", msg.seq).
			Uint64("latest", m.seq).
			Msg("discarding stale pair code response")
		return nil
	}

	m.loading = false
	if msg.err != nil {
		m.fetchErr = msg.err
		m.log.Warn().Err(msg.err).Str("code", m.code).Msg("fetch pair code failed")
		return nil
	}

	m.fetchErr = nil
	return m.setCode(msg.code)
}

// setCode replaces the current code. A changed code closes the previous
// session before the next one is opened.
func (m *Model) setCode(code string) tea.Cmd {
	if code == m.code {
		return nil
	}

	m.log.Info().Str("old", m.code).Str("code", code).Msg("pair code changed")
	m.closeConn()
	m.code = code
	m.qr = ""

	if code == "" {
		return nil
	}

	if qr, err := renderQR(code); err != nil {
		m.log.Warn().Err(err).Msg("render qr")
	} else {
		m.qr = qr
	}

	return m.openConn(code)
}

func (m *Model) openConn(code string) tea.Cmd {
	m.connGen++
	m.status = StatusConnecting
	m.identifier = ""
	m.conn = m.connect(m.ctx, code)
	m.log.Info().Uint64("gen", m.connGen).Str("code", code).Msg("opening realtime session")
	return waitForEvent(m.connGen, m.conn)
}

func (m *Model) closeConn() {
	if m.conn == nil {
		return
	}
	m.log.Info().Uint64("gen", m.connGen).Str("code", m.code).Msg("closing realtime session")
	if err := m.conn.Close(); err != nil {
		m.log.Debug().Err(err).Msg("close realtime session")
	}
	m.conn = nil
	m.status = StatusDisconnected
	m.identifier = ""
}

func (m *Model) handleConnEvent(msg connEventMsg) tea.Cmd {
	if msg.gen != m.connGen || m.conn == nil {
		m.log.Debug().
			Uint64("gen", msg.gen).
			Stringer("event", msg.event).
			Msg("ignoring event from replaced session")
		return nil
	}

	ev := msg.event
	switch ev.Kind {
	case realtime.EventConnect:
		m.status = StatusConnected
		m.identifier = ev.ID
	case realtime.EventDisconnect:
		m.status = StatusDisconnected
		m.identifier = ""
	case realtime.EventConnectError:
		m.status = StatusFailed
	case realtime.EventSIDUpdate:
		m.identifier = ev.ID
	}
	m.log.Info().Uint64("gen", msg.gen).Stringer("event", ev).Msg("realtime event")

	return waitForEvent(msg.gen, m.conn)
}

// handleConnClosed releases a session whose event stream ended on its own.
func (m *Model) handleConnClosed(msg connClosedMsg) {
	if msg.gen != m.connGen || m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.log.Debug().Err(err).Msg("close realtime session")
	}
	m.conn = nil
}
