package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/five82/pairscreen/internal/prefs"
	"github.com/five82/pairscreen/internal/realtime"
)

type fetcherFunc func(ctx context.Context, oldCode string) (string, error)

func (f fetcherFunc) FetchCode(ctx context.Context, oldCode string) (string, error) {
	return f(ctx, oldCode)
}

type fakeConn struct {
	code   string
	events chan realtime.Event
	closes int
	log    *[]string
}

func (c *fakeConn) Events() <-chan realtime.Event { return c.events }

func (c *fakeConn) Close() error {
	c.closes++
	*c.log = append(*c.log, "close "+c.code)
	if c.closes == 1 {
		close(c.events)
	}
	return nil
}

// fakeConnector records open and close calls in order.
type fakeConnector struct {
	log   []string
	conns []*fakeConn
}

func (f *fakeConnector) connect(_ context.Context, code string) Connection {
	f.log = append(f.log, "open "+code)
	c := &fakeConn{code: code, events: make(chan realtime.Event, 8), log: &f.log}
	f.conns = append(f.conns, c)
	return c
}

func newTestModel(t *testing.T, fetch fetcherFunc) (Model, *fakeConnector) {
	t.Helper()
	if fetch == nil {
		fetch = func(context.Context, string) (string, error) { return "", errors.New("unexpected fetch") }
	}
	fc := &fakeConnector{}
	m := New(Options{
		Context:   context.Background(),
		Fetcher:   fetch,
		Connect:   fc.connect,
		Logger:    zerolog.Nop(),
		Prefs:     prefs.Defaults(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	return m, fc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

// deliver completes the latest outstanding fetch with code/err.
func deliver(t *testing.T, m Model, code string, err error) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, codeMsg{seq: m.seq, code: code, err: err})
}

// refresh issues a fetch and runs it synchronously.
func refresh(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	cmd := m.RequestCode()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewStartsLoadingAndDisconnected(t *testing.T) {
	m, fc := newTestModel(t, nil)

	require.True(t, m.loading)
	require.Empty(t, m.code)
	require.Equal(t, StatusDisconnected, m.status)
	require.Empty(t, m.identifier)
	require.Empty(t, fc.log)
}

func TestInitFetchesWithEmptyOldCode(t *testing.T) {
	var gotOld []string
	m, _ := newTestModel(t, func(_ context.Context, old string) (string, error) {
		gotOld = append(gotOld, old)
		return "ABC123", nil
	})

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)

	var code *codeMsg
	for _, cmd := range batch {
		if msg, ok := cmd().(codeMsg); ok {
			code = &msg
		}
	}
	require.NotNil(t, code, "Init must issue a fetch")
	require.Equal(t, uint64(1), code.seq)
	require.Equal(t, "ABC123", code.code)
	require.Equal(t, []string{""}, gotOld)
}

func TestFetchSuccessOpensConnection(t *testing.T) {
	m, fc := newTestModel(t, func(context.Context, string) (string, error) { return "ABC123", nil })

	m, cmd := refresh(t, m)

	require.False(t, m.loading)
	require.NoError(t, m.fetchErr)
	require.Equal(t, "ABC123", m.code)
	require.Equal(t, StatusConnecting, m.status)
	require.Equal(t, []string{"open ABC123"}, fc.log)
	require.NotNil(t, cmd, "expected a wait on the new session")
}

func TestFetchFailureKeepsCodeAndConnection(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)

	m.RequestCode()
	m, cmd := deliver(t, m, "", errors.New("api returned status 500"))

	require.Nil(t, cmd)
	require.False(t, m.loading)
	require.Error(t, m.fetchErr)
	require.Equal(t, "A", m.code)
	require.NotNil(t, m.conn)
	require.Equal(t, []string{"open A"}, fc.log)
	require.Zero(t, fc.conns[0].closes)
}

func TestFetchErrorClearedBySuccess(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "", errors.New("boom"))
	require.Error(t, m.fetchErr)

	m.RequestCode()
	require.True(t, m.loading)
	require.Error(t, m.fetchErr, "error stays until the next fetch completes")

	m, _ = deliver(t, m, "B", nil)
	require.NoError(t, m.fetchErr)
	require.Equal(t, "B", m.code)
}

func TestCodeChangeClosesBeforeOpening(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)

	m.RequestCode()
	m, _ = deliver(t, m, "B", nil)

	require.Equal(t, []string{"open A", "close A", "open B"}, fc.log)
	require.Equal(t, 1, fc.conns[0].closes)
	require.Zero(t, fc.conns[1].closes)
	require.Equal(t, StatusConnecting, m.status)
}

func TestSameCodeLeavesConnectionAlone(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)
	m, _ = update(t, m, connEventMsg{gen: m.connGen, event: realtime.Event{Kind: realtime.EventConnect, ID: "sid-1"}})

	m.RequestCode()
	m, cmd := deliver(t, m, "A", nil)

	require.Nil(t, cmd)
	require.Equal(t, []string{"open A"}, fc.log)
	require.Equal(t, StatusConnected, m.status)
	require.Equal(t, "sid-1", m.identifier)
}

func TestEmptyCodeTearsDownWithoutOpening(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)

	m.RequestCode()
	m, cmd := deliver(t, m, "", nil)

	require.Nil(t, cmd)
	require.Nil(t, m.conn)
	require.Equal(t, StatusDisconnected, m.status)
	require.Equal(t, []string{"open A", "close A"}, fc.log)
}

func TestStaleFetchResponseDiscarded(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m.RequestCode() // seq 2
	m.RequestCode() // seq 3

	m, _ = update(t, m, codeMsg{seq: 2, code: "OLD"})
	require.True(t, m.loading, "stale response must not clear loading")
	require.Empty(t, m.code)

	m, _ = update(t, m, codeMsg{seq: 3, code: "NEW"})
	require.False(t, m.loading)
	require.Equal(t, "NEW", m.code)

	m, cmd := update(t, m, codeMsg{seq: 1, code: "OLDEST", err: errors.New("late failure")})
	require.Nil(t, cmd)
	require.Equal(t, "NEW", m.code)
	require.NoError(t, m.fetchErr)
	require.Equal(t, []string{"open NEW"}, fc.log)
}

func TestConnectionEvents(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, wait := deliver(t, m, "A", nil)
	conn := fc.conns[0]

	conn.events <- realtime.Event{Kind: realtime.EventConnect, ID: "sid-1"}
	m, wait = update(t, m, wait())
	require.Equal(t, StatusConnected, m.status)
	require.Equal(t, "sid-1", m.identifier)
	require.NotNil(t, wait)

	conn.events <- realtime.Event{Kind: realtime.EventSIDUpdate, ID: "sid-2"}
	m, wait = update(t, m, wait())
	require.Equal(t, StatusConnected, m.status, "sid-update must not change status")
	require.Equal(t, "sid-2", m.identifier)

	conn.events <- realtime.Event{Kind: realtime.EventDisconnect, Reason: realtime.ReasonServerDisconnect}
	m, _ = update(t, m, wait())
	require.Equal(t, StatusDisconnected, m.status)
	require.Empty(t, m.identifier)
}

func TestConnectErrorKeepsIdentifier(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)
	m, _ = update(t, m, connEventMsg{gen: m.connGen, event: realtime.Event{Kind: realtime.EventSIDUpdate, ID: "sid-9"}})

	m, cmd := update(t, m, connEventMsg{gen: m.connGen, event: realtime.Event{Kind: realtime.EventConnectError, Err: errors.New("refused")}})

	require.NotNil(t, cmd)
	require.Equal(t, StatusFailed, m.status)
	require.Equal(t, "sid-9", m.identifier)
}

func TestStaleConnectionEventsIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)
	oldGen := m.connGen

	m.RequestCode()
	m, _ = deliver(t, m, "B", nil)
	require.NotEqual(t, oldGen, m.connGen)

	m, cmd := update(t, m, connEventMsg{gen: oldGen, event: realtime.Event{Kind: realtime.EventConnect, ID: "old-sid"}})
	require.Nil(t, cmd)
	require.Equal(t, StatusConnecting, m.status)
	require.Empty(t, m.identifier)

	m, _ = update(t, m, connClosedMsg{gen: oldGen})
	require.NotNil(t, m.conn, "stale close must not release the current session")
}

func TestReplacedSessionWaiterReportsClosed(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, wait := deliver(t, m, "A", nil)
	oldGen := m.connGen

	m.RequestCode()
	m, _ = deliver(t, m, "B", nil)

	// Closing A ended its event stream, so the pending wait resolves.
	msg := wait()
	require.Equal(t, connClosedMsg{gen: oldGen}, msg)
	m, cmd := update(t, m, msg)
	require.Nil(t, cmd)
	require.Equal(t, StatusConnecting, m.status)
}

func TestConnClosedReleasesSession(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)

	m, _ = update(t, m, connClosedMsg{gen: m.connGen})
	require.Nil(t, m.conn)
	require.Equal(t, 1, fc.conns[0].closes)

	m.RequestCode()
	_, _ = deliver(t, m, "B", nil)
	require.Equal(t, 1, fc.conns[0].closes, "released session must not be closed twice")
	require.Equal(t, []string{"open A", "close A", "open B"}, fc.log)
}

func TestCloseTearsDownOnce(t *testing.T) {
	m, fc := newTestModel(t, nil)
	m, _ = deliver(t, m, "A", nil)

	m.Close()
	m.Close()

	require.Nil(t, m.conn)
	require.Equal(t, 1, fc.conns[0].closes)
	require.Equal(t, StatusDisconnected, m.status)
}

func TestQuitKeyClosesConnection(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m, fc := newTestModel(t, nil)
			m, _ = deliver(t, m, "A", nil)

			m, cmd := update(t, m, keyPress(k))

			require.NotNil(t, cmd)
			require.IsType(t, tea.QuitMsg{}, cmd())
			require.Nil(t, m.conn)
			require.Equal(t, []string{"open A", "close A"}, fc.log)
		})
	}
}

func TestRefreshKeys(t *testing.T) {
	for _, k := range []string{"r", "enter"} {
		t.Run(k, func(t *testing.T) {
			calls := 0
			m, _ := newTestModel(t, func(context.Context, string) (string, error) {
				calls++
				return "XYZ", nil
			})
			m, _ = deliver(t, m, "A", nil)
			seq := m.seq

			m, cmd := update(t, m, keyPress(k))
			require.True(t, m.loading)
			require.Equal(t, seq+1, m.seq)
			require.NotNil(t, cmd)

			m, _ = update(t, m, cmd())
			require.Equal(t, 1, calls)
			require.Equal(t, "XYZ", m.code)
		})
	}
}

func TestToggleQRPersistsPrefs(t *testing.T) {
	m, _ := newTestModel(t, nil)
	require.True(t, m.showQR)

	m, _ = update(t, m, keyPress("c"))
	require.False(t, m.showQR)

	saved := prefs.Load(m.prefsPath)
	require.False(t, saved.ShowQR)
	require.Equal(t, "Teal", saved.Theme)
}

func TestCycleThemePersistsPrefs(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = update(t, m, keyPress("T"))
	require.Equal(t, "Nightfox", m.theme.Name)
	require.Equal(t, "Nightfox", prefs.Load(m.prefsPath).Theme)

	m, _ = update(t, m, keyPress("T"))
	m, _ = update(t, m, keyPress("T"))
	require.Equal(t, "Teal", m.theme.Name)
}

func TestRunRequiresDependencies(t *testing.T) {
	fc := &fakeConnector{}
	err := Run(Options{Connect: fc.connect})
	require.ErrorContains(t, err, "fetcher")

	err = Run(Options{Fetcher: fetcherFunc(func(context.Context, string) (string, error) { return "", nil })})
	require.ErrorContains(t, err, "connector")
}
