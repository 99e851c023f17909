package ui

import "github.com/charmbracelet/bubbles/key"

type sessionKeys struct {
	Open     key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Athletes key.Binding
	Quit     key.Binding
}

func newSessionKeys() sessionKeys {
	return sessionKeys{
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Refresh:  key.NewBinding(key.WithKeys("g", "f5"), key.WithHelp("g", "refresh")),
		Athletes: key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "athletes")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k sessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Rename, k.Delete, k.Refresh, k.Athletes, k.Quit}
}

func (k sessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type dashboardKeys struct {
	Prev       key.Binding
	Next       key.Binding
	PrevTen    key.Binding
	NextTen    key.Binding
	First      key.Binding
	Last       key.Binding
	PrevPiece  key.Binding
	NextPiece  key.Binding
	Seat       key.Binding
	Crew       key.Binding
	All        key.Binding
	None       key.Binding
	Panels     key.Binding
	Retry      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newDashboardKeys() dashboardKeys {
	return dashboardKeys{
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev stroke")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next stroke")),
		PrevTen:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "-10 strokes")),
		NextTen:    key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "+10 strokes")),
		First:      key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "first")),
		Last:       key.NewBinding(key.WithKeys("end", "$"), key.WithHelp("$", "last")),
		PrevPiece:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev piece")),
		NextPiece:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next piece")),
		Seat:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "toggle seat")),
		Crew:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "crew avg")),
		All:        key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "all seats")),
		None:       key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "no seats")),
		Panels:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "panels")),
		Retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry curve")),
		ScrollUp:   key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/k", "scroll")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "j", "pgdown"), key.WithHelp("↓/j", "scroll")),
		Back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.PrevPiece, k.NextPiece, k.Seat, k.Panels, k.Back, k.Help}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.PrevTen, k.NextTen, k.First, k.Last},
		{k.PrevPiece, k.NextPiece, k.Retry},
		{k.Seat, k.Crew, k.All, k.None, k.Panels},
		{k.ScrollUp, k.ScrollDown, k.Back, k.Quit},
	}
}

type panelKeys struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	MoveUp key.Binding
	MoveDn key.Binding
	Done   key.Binding
}

func newPanelKeys() panelKeys {
	return panelKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "show/hide")),
		MoveUp: key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDn: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Done:   key.NewBinding(key.WithKeys("esc", "p"), key.WithHelp("esc", "done")),
	}
}

func (k panelKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.MoveUp, k.MoveDn, k.Done}
}

func (k panelKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type athleteKeys struct {
	Open     key.Binding
	Sessions key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func newAthleteKeys() athleteKeys {
	return athleteKeys{
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "trends")),
		Sessions: key.NewBinding(key.WithKeys("s", "tab", "esc"), key.WithHelp("s", "sessions")),
		Refresh:  key.NewBinding(key.WithKeys("g", "f5"), key.WithHelp("g", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k athleteKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Sessions, k.Refresh, k.Quit}
}

func (k athleteKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
