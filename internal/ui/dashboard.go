package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/fetch"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const strokePage = 10

type dashboardView struct {
	orch      *fetch.Orchestrator
	state     *dashboard.State
	keys      dashboardKeys
	panelKeys panelKeys
	viewport  viewport.Model

	configuring bool
	panelIndex  int
	width       int
}

func newDashboardView(backend fetch.Backend, state *dashboard.State, opts fetch.Options) *dashboardView {
	return &dashboardView{
		orch:      fetch.New(backend, state, opts),
		state:     state,
		keys:      newDashboardKeys(),
		panelKeys: newPanelKeys(),
		viewport:  viewport.New(0, 0),
	}
}

func (d *dashboardView) setSize(width, height int) {
	d.width = width
	d.viewport.Width = width
	d.viewport.Height = maxInt(1, height)
	d.render()
}

// render rebuilds the panel content from the committed data.
func (d *dashboardView) render() {
	d.viewport.SetContent(RenderPanels(d.orch, RenderOptions{Width: d.width, Color: true}))
}

// handle commits fetch results and re-renders.
func (d *dashboardView) handle(msg tea.Msg) tea.Cmd {
	cmd := d.orch.Update(msg)
	d.render()
	return cmd
}

func (d *dashboardView) update(msg tea.KeyMsg) tea.Cmd {
	if d.configuring {
		return d.updatePanels(msg)
	}
	cur := &d.state.Cursor
	sel := &d.state.Selection
	switch {
	case key.Matches(msg, d.keys.Quit):
		return tea.Quit
	case key.Matches(msg, d.keys.Back):
		return navigate(showScreenMsg{screen: screenSessions})
	case key.Matches(msg, d.keys.Prev):
		cur.StepBackward()
	case key.Matches(msg, d.keys.Next):
		cur.StepForward()
	case key.Matches(msg, d.keys.PrevTen):
		cur.Jump(-strokePage)
	case key.Matches(msg, d.keys.NextTen):
		cur.Jump(strokePage)
	case key.Matches(msg, d.keys.First):
		cur.First()
	case key.Matches(msg, d.keys.Last):
		cur.Last()
	case key.Matches(msg, d.keys.PrevPiece):
		return d.switchPiece(-1)
	case key.Matches(msg, d.keys.NextPiece):
		return d.switchPiece(1)
	case key.Matches(msg, d.keys.Seat):
		seat := int(msg.String()[0] - '0')
		if seat <= sel.SeatCount() {
			sel.ToggleAthlete(seat)
		}
		d.render()
		return nil
	case key.Matches(msg, d.keys.Crew):
		sel.ToggleCrewAverage()
		d.render()
		return nil
	case key.Matches(msg, d.keys.All):
		sel.SelectAll()
		d.render()
		return nil
	case key.Matches(msg, d.keys.None):
		sel.DeselectAll()
		d.render()
		return nil
	case key.Matches(msg, d.keys.Panels):
		d.configuring = true
		d.panelIndex = 0
		return nil
	case key.Matches(msg, d.keys.Retry):
		cmd := d.orch.RetryStroke()
		d.render()
		return cmd
	default:
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return cmd
	}
	cmd := d.orch.SyncStroke()
	d.render()
	return cmd
}

// switchPiece selects the neighbouring piece. Nothing happens at either end.
func (d *dashboardView) switchPiece(delta int) tea.Cmd {
	session := d.orch.Session()
	if session == nil || len(session.Pieces) == 0 {
		return nil
	}
	current := d.orch.SelectedPiece()
	idx := 0
	for i, p := range session.Pieces {
		if p.ID == current {
			idx = i
			break
		}
	}
	next := idx + delta
	if next < 0 || next >= len(session.Pieces) {
		return nil
	}
	cmd := d.orch.SelectPiece(session.Pieces[next].ID)
	d.render()
	return cmd
}

func (d *dashboardView) updatePanels(msg tea.KeyMsg) tea.Cmd {
	panels := &d.state.Panels
	all := panels.All()
	if len(all) == 0 {
		d.configuring = false
		return nil
	}
	id := all[clampInt(d.panelIndex, 0, len(all)-1)].ID
	switch {
	case key.Matches(msg, d.panelKeys.Done):
		d.configuring = false
	case key.Matches(msg, d.panelKeys.Up):
		d.panelIndex = clampInt(d.panelIndex-1, 0, len(all)-1)
	case key.Matches(msg, d.panelKeys.Down):
		d.panelIndex = clampInt(d.panelIndex+1, 0, len(all)-1)
	case key.Matches(msg, d.panelKeys.Toggle):
		panels.TogglePanel(id)
	case key.Matches(msg, d.panelKeys.MoveUp):
		panels.MovePanelUp(id)
		d.panelIndex = panelIndex(panels, id)
	case key.Matches(msg, d.panelKeys.MoveDn):
		panels.MovePanelDown(id)
		d.panelIndex = panelIndex(panels, id)
	}
	d.render()
	return nil
}

func panelIndex(p *dashboard.Panels, id model.PanelID) int {
	for i, cfg := range p.All() {
		if cfg.ID == id {
			return i
		}
	}
	return 0
}

// activePiece is the piece whose data is on screen, or the requested one
// before any piece has loaded.
func (d *dashboardView) activePiece() string {
	if id := d.orch.PieceID(); id != "" {
		return id
	}
	return d.orch.SelectedPiece()
}

func (d *dashboardView) header(spin string) string {
	session := d.orch.Session()
	title := "Dashboard"
	if session != nil {
		title = session.Name
	}
	parts := []string{titleStyle.Render(title)}
	if session != nil {
		active := d.activePiece()
		tabs := make([]string, 0, len(session.Pieces))
		for _, p := range session.Pieces {
			label := truncateLine(p.Label(), 24)
			if p.ID == active {
				tabs = append(tabs, activeNavStyle.Render(label))
			} else {
				tabs = append(tabs, inactiveNavStyle.Render(label))
			}
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	}
	status := d.seatSummary()
	if d.orch.Busy() {
		status = spin + " " + status
	}
	parts = append(parts, headerStyle.Render(status))
	return strings.Join(parts, "\n")
}

func (d *dashboardView) seatSummary() string {
	sel := &d.state.Selection
	marks := make([]string, 0, sel.SeatCount())
	for seat := 1; seat <= sel.SeatCount(); seat++ {
		if sel.Selected(seat) {
			marks = append(marks, fmt.Sprintf("%d", seat))
		} else {
			marks = append(marks, "·")
		}
	}
	crew := "off"
	if sel.ShowCrewAverage() {
		crew = "on"
	}
	return fmt.Sprintf("Seats %s  Crew avg %s  Stroke %d/%d", strings.Join(marks, " "), crew, d.state.Cursor.Current(), d.state.Cursor.Total())
}

func (d *dashboardView) renderPanelConfig(width, height int) string {
	lines := []string{cardValueStyle.Render("Panels"), ""}
	for i, p := range d.state.Panels.All() {
		box := "[ ]"
		if p.Visible {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, p.Label)
		if i == d.panelIndex {
			line = activeLine(line)
		}
		lines = append(lines, line)
	}
	return modal(width, height, lines...)
}

func activeLine(s string) string {
	return panelStyle.Render("> " + s)
}

func (d *dashboardView) view(width, height int, spin string, h help.Model) string {
	if d.configuring {
		return fitLines(d.renderPanelConfig(width, height-1), width, height-1) + "\n" + h.View(d.panelKeys)
	}
	header := d.header(spin)
	footer := h.View(d.keys)
	bodyHeight := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if d.viewport.Height != bodyHeight {
		d.viewport.Height = bodyHeight
	}
	return strings.Join([]string{
		padLines(header, width),
		fitLines(d.viewport.View(), width, bodyHeight),
		footer,
	}, "\n")
}
