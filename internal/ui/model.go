package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/pairscreen/internal/pairing"
	"github.com/five82/pairscreen/internal/prefs"
	"github.com/five82/pairscreen/internal/realtime"
)

// Connection is a live realtime session owned by the screen.
type Connection interface {
	Events() <-chan realtime.Event
	Close() error
}

// Connector opens a realtime session keyed by a pairing code. It must not
// block; dialing happens in the background and is reported through Events.
type Connector func(ctx context.Context, code string) Connection

// Options configure the pairing screen.
type Options struct {
	Context   context.Context
	Fetcher   pairing.CodeFetcher
	Connect   Connector
	Logger    zerolog.Logger
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the pairing screen's Bubble Tea model.
type Model struct {
	ctx       context.Context
	fetcher   pairing.CodeFetcher
	connect   Connector
	log       zerolog.Logger
	prefsPath string

	// UI components
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	showQR  bool
	width   int
	height  int

	// Pairing code
	code     string
	qr       string
	loading  bool
	fetchErr error
	seq      uint64 // latest issued fetch

	// Realtime session
	status     ConnStatus
	identifier string
	conn       Connection
	connGen    uint64 // bumped on every Connector call
}

// Message types

// codeMsg carries the result of one fetch, tagged with its sequence number.
type codeMsg struct {
	seq  uint64
	code string
	err  error
}

// connEventMsg carries one lifecycle event from session gen.
type connEventMsg struct {
	gen   uint64
	event realtime.Event
}

// connClosedMsg reports that session gen stopped producing events.
type connClosedMsg struct {
	gen uint64
}

// New creates a pairing screen. The initial fetch is primed here and issued
// by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	theme := GetTheme(opts.Prefs.Theme)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		fetcher:   opts.Fetcher,
		connect:   opts.Connect,
		log:       opts.Logger,
		prefsPath: opts.PrefsPath,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		showQR:    opts.Prefs.ShowQR,
		status:    StatusDisconnected,
		seq:       1,
		loading:   true,
	}
	m.applyTheme(theme)
	return m
}

// Init fetches the first pairing code.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchCodeCmd(m.ctx, m.fetcher, m.seq),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case codeMsg:
		return m, m.handleCode(msg)

	case connEventMsg:
		return m, m.handleConnEvent(msg)

	case connClosedMsg:
		m.handleConnClosed(msg)
		return m, nil
	}

	return m, nil
}

// applyTheme switches the palette for the panel, spinner and help footer.
func (m *Model) applyTheme(t Theme) {
	m.theme = t
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))

	key := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Border))
	m.help.Styles.ShortKey = key
	m.help.Styles.ShortDesc = desc
	m.help.Styles.ShortSeparator = sep
	m.help.Styles.FullKey = key
	m.help.Styles.FullDesc = desc
	m.help.Styles.FullSeparator = sep
}

// savePrefs persists the theme and QR toggle. Failures are logged only.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, ShowQR: m.showQR}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save preferences")
	}
}

// Run starts the pairing screen and blocks until it exits. The open
// session, if any, is closed before Run returns.
func Run(opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Fetcher == nil {
		return errors.New("ui requires a pairing code fetcher")
	}
	if opts.Connect == nil {
		return errors.New("ui requires a realtime connector")
	}

	all := append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	if opts.Context != nil {
		all = append(all, tea.WithContext(opts.Context))
	}

	p := tea.NewProgram(New(opts), all...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
