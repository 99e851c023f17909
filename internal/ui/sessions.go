package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arin-jaff/peach-data-tool/internal/catalog"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

type sessionMode int

const (
	modeBrowse sessionMode = iota
	modeRename
	modeConfirmDelete
)

// openSessionMsg asks the root model to open a dashboard.
type openSessionMsg struct{ id string }

// showScreenMsg asks the root model to switch screens.
type showScreenMsg struct{ screen screen }

func navigate(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

type sessionsView struct {
	cat   *catalog.Catalog
	keys  sessionKeys
	table table.Model
	input textinput.Model
	mode  sessionMode
	// target is the session being renamed or deleted.
	target model.Session
}

func newSessionsView(cat *catalog.Catalog) *sessionsView {
	input := textinput.New()
	input.Prompt = "Name: "
	input.CharLimit = 120
	input.Cursor.SetMode(cursor.CursorBlink)
	t := table.New(table.WithColumns(sessionColumns(80)), table.WithFocused(true), table.WithHeight(10))
	t.SetStyles(tableStyles())
	return &sessionsView{cat: cat, keys: newSessionKeys(), table: t, input: input}
}

func sessionColumns(width int) []table.Column {
	fixed := 20 + 12 + 6 + 6
	nameWidth := width - fixed - 4
	if nameWidth < 12 {
		nameWidth = 12
	}
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Date", Width: 20},
		{Title: "Boat", Width: 12},
		{Title: "Seats", Width: 6},
		{Title: "File", Width: 6},
	}
}

func (v *sessionsView) setSize(width, height int) {
	v.table.SetColumns(sessionColumns(width))
	v.table.SetWidth(width)
	v.table.SetHeight(maxInt(3, height-1))
	v.input.Width = maxInt(10, modalWidth(width)-len(v.input.Prompt)-6)
}

// syncRows copies the catalog into the table, keeping the cursor on
// the same row index where possible.
func (v *sessionsView) syncRows() {
	sessions := v.cat.Sessions()
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row{
			s.Name,
			sessionDate(s),
			optString(s.BoatName),
			strconv.Itoa(s.BoatSeats),
			fileMark(s.Filename),
		})
	}
	cursorAt := v.table.Cursor()
	v.table.SetRows(rows)
	if cursorAt >= len(rows) {
		cursorAt = len(rows) - 1
	}
	if cursorAt < 0 {
		cursorAt = 0
	}
	v.table.SetCursor(cursorAt)
}

func (v *sessionsView) selected() (model.Session, bool) {
	sessions := v.cat.Sessions()
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(sessions) {
		return model.Session{}, false
	}
	return sessions[idx], true
}

func (v *sessionsView) update(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case modeRename:
		return v.updateRename(msg)
	case modeConfirmDelete:
		return v.updateConfirm(msg)
	}
	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Open):
		if s, ok := v.selected(); ok {
			return navigate(openSessionMsg{id: s.ID})
		}
		return nil
	case key.Matches(msg, v.keys.Rename):
		s, ok := v.selected()
		if !ok {
			return nil
		}
		v.target = s
		v.mode = modeRename
		v.input.SetValue(s.Name)
		v.input.CursorEnd()
		return v.input.Focus()
	case key.Matches(msg, v.keys.Delete):
		if s, ok := v.selected(); ok {
			v.target = s
			v.mode = modeConfirmDelete
		}
		return nil
	case key.Matches(msg, v.keys.Refresh):
		v.cat.ClearNotice()
		return v.cat.Refresh()
	case key.Matches(msg, v.keys.Athletes):
		return navigate(showScreenMsg{screen: screenAthletes})
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *sessionsView) updateRename(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		v.mode = modeBrowse
		v.input.Blur()
		return nil
	case tea.KeyEnter:
		v.mode = modeBrowse
		v.input.Blur()
		cmd := v.cat.Rename(v.target.ID, v.input.Value())
		v.syncRows()
		return cmd
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *sessionsView) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	v.mode = modeBrowse
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		cmd := v.cat.Delete(v.target.ID)
		v.syncRows()
		return cmd
	}
	return nil
}

func (v *sessionsView) view(width, height int, spin string) string {
	switch v.mode {
	case modeRename:
		return modal(width, height,
			cardValueStyle.Render("Rename Session"),
			v.input.View(),
			headerStyle.Render("Enter to save / Esc to cancel"))
	case modeConfirmDelete:
		return modal(width, height,
			cardValueStyle.Render("Delete Session"),
			fmt.Sprintf("Delete %q and all of its data?", v.target.Name),
			headerStyle.Render("y to delete / any other key to cancel"))
	}
	lines := []string{}
	if err := v.cat.Err(); err != nil {
		lines = append(lines, errorStyle.Render(err.Error()))
	}
	if n := v.cat.Notice(); n != nil {
		if n.Error {
			lines = append(lines, errorStyle.Render(n.Text))
		} else {
			lines = append(lines, noticeStyle.Render(n.Text))
		}
	}
	switch {
	case !v.cat.Loaded() && v.cat.Loading():
		lines = append(lines, spin+" Loading sessions...")
	case v.cat.Loaded() && len(v.cat.Sessions()) == 0:
		lines = append(lines, "No sessions yet. Upload one with: peach upload <file>")
	case v.cat.Loaded():
		lines = append(lines, v.table.View())
	}
	return fitLines(strings.Join(lines, "\n"), width, height)
}

func sessionDate(s model.Session) string {
	switch {
	case s.StartTime != nil && *s.StartTime != "":
		return shortDate(*s.StartTime)
	case s.CreatedAt != nil:
		return shortDate(*s.CreatedAt)
	}
	return "-"
}

// shortDate trims an RFC 3339 timestamp to minutes.
func shortDate(ts string) string {
	ts = strings.Replace(ts, "T", " ", 1)
	if len(ts) > 16 {
		ts = ts[:16]
	}
	return ts
}

func optString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func fileMark(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	return "yes"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
