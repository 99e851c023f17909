package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arin-jaff/peach-data-tool/internal/chart"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

// AthleteBackend is the profile side of the telemetry API.
type AthleteBackend interface {
	ListAthletes(ctx context.Context) ([]model.GlobalAthlete, error)
	GetAthleteTrends(ctx context.Context, id string) (model.AthleteTrends, error)
}

type athletesLoadedMsg struct {
	gen      uint64
	athletes []model.GlobalAthlete
	err      error
}

type trendsLoadedMsg struct {
	gen    uint64
	id     string
	trends model.AthleteTrends
	err    error
}

type athletesView struct {
	backend AthleteBackend
	timeout time.Duration
	keys    athleteKeys
	table   table.Model

	gen      uint64
	athletes []model.GlobalAthlete
	loaded   bool
	loading  bool
	err      error

	trendGen uint64
	trendID  string
	trends   *model.AthleteTrends
	trendErr error
	width    int
}

func newAthletesView(backend AthleteBackend, timeout time.Duration) *athletesView {
	t := table.New(table.WithColumns(athleteColumns()), table.WithFocused(true), table.WithHeight(8))
	t.SetStyles(tableStyles())
	return &athletesView{backend: backend, timeout: timeout, keys: newAthleteKeys(), table: t}
}

func athleteColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Squad", Width: 12},
		{Title: "Weight", Width: 7},
		{Title: "Sessions", Width: 8},
	}
}

func (v *athletesView) setSize(width, height int) {
	v.width = width
	v.table.SetWidth(width)
	v.table.SetHeight(clampInt(height/3, 3, 12))
}

func (v *athletesView) refresh() tea.Cmd {
	v.gen++
	v.loading = true
	gen, backend, timeout := v.gen, v.backend, v.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		athletes, err := backend.ListAthletes(ctx)
		return athletesLoadedMsg{gen: gen, athletes: athletes, err: err}
	}
}

func (v *athletesView) loadTrends(id string) tea.Cmd {
	v.trendGen++
	v.trendID = id
	v.trends = nil
	v.trendErr = nil
	gen, backend, timeout := v.trendGen, v.backend, v.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		trends, err := backend.GetAthleteTrends(ctx, id)
		return trendsLoadedMsg{gen: gen, id: id, trends: trends, err: err}
	}
}

func (v *athletesView) handle(msg tea.Msg) {
	switch msg := msg.(type) {
	case athletesLoadedMsg:
		if msg.gen != v.gen {
			return
		}
		v.loading = false
		if msg.err != nil {
			v.err = fmt.Errorf("failed to load athletes: %w", msg.err)
			return
		}
		v.err = nil
		v.loaded = true
		v.athletes = msg.athletes
		rows := make([]table.Row, 0, len(msg.athletes))
		for _, a := range msg.athletes {
			rows = append(rows, table.Row{a.Name, optString(a.Squad), formatOpt(a.Weight, "%.1f"), strconv.Itoa(a.SessionCount)})
		}
		v.table.SetRows(rows)
		if v.table.Cursor() >= len(rows) {
			v.table.SetCursor(maxInt(0, len(rows)-1))
		}
	case trendsLoadedMsg:
		if msg.gen != v.trendGen {
			return
		}
		if msg.err != nil {
			v.trendErr = fmt.Errorf("failed to load trends: %w", msg.err)
			return
		}
		trends := msg.trends
		v.trends = &trends
	}
}

func (v *athletesView) update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Sessions):
		return navigate(showScreenMsg{screen: screenSessions})
	case key.Matches(msg, v.keys.Refresh):
		return v.refresh()
	case key.Matches(msg, v.keys.Open):
		idx := v.table.Cursor()
		if idx >= 0 && idx < len(v.athletes) {
			return v.loadTrends(v.athletes[idx].ID)
		}
		return nil
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *athletesView) view(width, height int, spin string) string {
	lines := []string{}
	switch {
	case v.err != nil:
		lines = append(lines, errorStyle.Render(v.err.Error()))
	case !v.loaded && v.loading:
		lines = append(lines, spin+" Loading athletes...")
	case v.loaded && len(v.athletes) == 0:
		lines = append(lines, "No athletes yet.")
	case v.loaded:
		lines = append(lines, v.table.View())
	}
	if v.trendErr != nil {
		lines = append(lines, "", errorStyle.Render(v.trendErr.Error()))
	} else if v.trends != nil {
		lines = append(lines, "", renderTrends(*v.trends, width))
	} else if v.trendID != "" {
		lines = append(lines, "", spin+" Loading trends...")
	}
	return fitLines(strings.Join(lines, "\n"), width, height)
}

// renderTrends draws power and effective length across pieces, oldest first.
func renderTrends(t model.AthleteTrends, width int) string {
	title := panelStyle.Render("Trends: " + t.Athlete.Name)
	if len(t.DataPoints) == 0 {
		return title + "\nNo stroke data recorded for this athlete."
	}
	power := make([]*float64, len(t.DataPoints))
	eff := make([]*float64, len(t.DataPoints))
	for i, p := range t.DataPoints {
		power[i] = p.AvgPower
		eff[i] = p.AvgEffectiveLength
	}
	first, last := t.DataPoints[0], t.DataPoints[len(t.DataPoints)-1]
	plot := chart.Render([]chart.Series{
		{Name: "Avg power", Values: power, Slot: 0},
		{Name: "Eff length", Values: eff, Slot: 1},
	}, chart.Options{
		Width:   chart.PlotWidthFor(width),
		Height:  6,
		Scale:   chart.ScalePerSeries,
		XLabels: [2]string{trendLabel(first), trendLabel(last)},
		Color:   true,
	})
	headers := []string{"Session", "Piece", "Seat", "Power", "Eff", "Catch", "Finish"}
	rows := make([][]string, 0, len(t.DataPoints))
	for _, p := range t.DataPoints {
		rows = append(rows, []string{
			p.SessionName,
			optString(p.PieceName),
			strconv.Itoa(p.SeatPosition),
			formatOpt(p.AvgPower, "%.1f"),
			formatOpt(p.AvgEffectiveLength, "%.1f"),
			formatOpt(p.AvgCatchSlip, "%.1f"),
			formatOpt(p.AvgFinishSlip, "%.1f"),
		})
	}
	summary := chart.FormatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true})
	return title + "\n" + strings.TrimRight(plot, "\n") + "\n" + mutedStyle.Render(strings.Join(summary, "\n"))
}

func trendLabel(p model.AthleteTrendPoint) string {
	if p.SessionDate != nil && len(*p.SessionDate) >= 10 {
		return (*p.SessionDate)[:10]
	}
	return p.SessionName
}
