package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arin-jaff/peach-data-tool/internal/catalog"
	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/fetch"
	"github.com/arin-jaff/peach-data-tool/internal/logging"
)

type screen int

const (
	screenSessions screen = iota
	screenAthletes
	screenDashboard
)

var screenNames = []string{"Sessions", "Athletes", "Dashboard"}

// Backend is everything the UI reads from or writes to the API.
type Backend interface {
	fetch.Backend
	catalog.Backend
	AthleteBackend
}

// Options configures the program model.
type Options struct {
	Dashboard dashboard.Options
	Timeout   time.Duration
	Logger    *logging.Logger
	// SessionID opens a dashboard right away.
	SessionID string
	// Source is shown in the header, usually the API base URL.
	Source string
}

// Model is the root Bubble Tea model.
type Model struct {
	backend Backend
	opts    Options
	log     *logging.Logger

	screen   screen
	sessions *sessionsView
	athletes *athletesView
	dash     *dashboardView

	spinner spinner.Model
	help    help.Model

	width  int
	height int
}

// NewModel constructs the program model.
func NewModel(backend Backend, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = panelStyle
	cat := catalog.New(backend, catalog.Options{Timeout: opts.Timeout, Logger: opts.Logger})
	return &Model{
		backend:  backend,
		opts:     opts,
		log:      opts.Logger,
		sessions: newSessionsView(cat),
		athletes: newAthletesView(backend, opts.Timeout),
		spinner:  spin,
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.sessions.cat.Refresh()}
	if m.opts.SessionID != "" {
		cmds = append(cmds, m.openSession(m.opts.SessionID))
	}
	return tea.Batch(cmds...)
}

// openSession replaces the dashboard with a fresh one for id.
func (m *Model) openSession(id string) tea.Cmd {
	m.log.Infof("opening session %s", id)
	state := dashboard.NewWithOptions(m.opts.Dashboard)
	m.dash = newDashboardView(m.backend, state, fetch.Options{Timeout: m.opts.Timeout, Logger: m.log})
	m.screen = screenDashboard
	m.layout()
	cmd := m.dash.orch.LoadSession(id)
	m.dash.render()
	return cmd
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case catalog.ListedMsg, catalog.RenamedMsg, catalog.DeletedMsg:
		m.sessions.cat.Update(msg)
		m.sessions.syncRows()
		return m, nil
	case athletesLoadedMsg, trendsLoadedMsg:
		m.athletes.handle(msg)
		return m, nil
	case fetch.SessionLoadedMsg, fetch.PieceLoadedMsg, fetch.ForceCurveLoadedMsg:
		if m.dash == nil {
			return m, nil
		}
		return m, m.dash.handle(msg)
	case openSessionMsg:
		return m, m.openSession(msg.id)
	case showScreenMsg:
		return m, m.show(msg.screen)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenDashboard:
			if m.dash != nil {
				if msg.String() == "?" {
					m.help.ShowAll = !m.help.ShowAll
					return m, nil
				}
				return m, m.dash.update(msg)
			}
		case screenAthletes:
			return m, m.athletes.update(msg)
		default:
			return m, m.sessions.update(msg)
		}
	}
	return m, nil
}

func (m *Model) show(s screen) tea.Cmd {
	m.screen = s
	m.help.ShowAll = false
	if s == screenAthletes && !m.athletes.loaded && !m.athletes.loading {
		return m.athletes.refresh()
	}
	return nil
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.bodyHeight()
	m.sessions.setSize(m.width, bodyHeight)
	m.athletes.setSize(m.width, bodyHeight)
	if m.dash != nil {
		m.dash.setSize(m.width, bodyHeight)
	}
}

func (m *Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.renderTabs()) - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(screenNames))
	for i, name := range screenNames {
		if screen(i) == screenDashboard && m.screen != screenDashboard {
			continue
		}
		if screen(i) == m.screen {
			parts = append(parts, activeNavStyle.Render(name))
		} else {
			parts = append(parts, inactiveNavStyle.Render(name))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.opts.Source != "" {
		tabs = lipgloss.JoinHorizontal(lipgloss.Center, tabs, "  ", headerStyle.Render(m.opts.Source))
	}
	return tabs
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	tabs := padLines(m.renderTabs(), m.width)
	bodyHeight := m.bodyHeight()
	spin := m.spinner.View()
	var body, footer string
	switch m.screen {
	case screenDashboard:
		if m.dash != nil {
			return tabs + "\n" + m.dash.view(m.width, bodyHeight+1, spin, m.help)
		}
	case screenAthletes:
		body = m.athletes.view(m.width, bodyHeight, spin)
		footer = m.help.View(m.athletes.keys)
	default:
		body = m.sessions.view(m.width, bodyHeight, spin)
		footer = m.help.View(m.sessions.keys)
	}
	return strings.Join([]string{tabs, body, truncateLine(footer, m.width)}, "\n")
}
