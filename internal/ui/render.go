package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arin-jaff/peach-data-tool/internal/chart"
	"github.com/arin-jaff/peach-data-tool/internal/fetch"
	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/series"
)

const defaultChartHeight = 8

// RenderOptions controls how dashboard panels are drawn.
type RenderOptions struct {
	Width       int
	ChartHeight int
	Color       bool
}

// RenderPanels draws the visible panels of a dashboard in registry order.
func RenderPanels(o *fetch.Orchestrator, opts RenderOptions) string {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = defaultChartHeight
	}
	session := o.Session()
	if session == nil {
		if err := o.Err(fetch.StageSession); err != nil {
			return errorStyle.Render(err.Error())
		}
		return "Loading session..."
	}
	if len(session.Pieces) == 0 {
		return "This session has no pieces."
	}

	st := o.State()
	var curve []model.PeriodicDataPoint
	if fc := o.ForceCurve(); fc != nil {
		curve = fc.Data
	}
	tables := series.Build(series.Input{
		Athletes:   session.Athletes,
		Strokes:    o.Strokes(),
		ForceCurve: curve,
		Selection:  &st.Selection,
	})

	blocks := []string{}
	for _, p := range st.Panels.Visible() {
		var body string
		switch p.ID {
		case model.PanelSummary:
			body = renderSummary(o, opts.Width)
		case model.PanelForceCurve:
			body = renderForceCurve(o, tables[p.ID], opts)
		default:
			body = renderStrokePanel(o, tables[p.ID], opts)
		}
		blocks = append(blocks, panelStyle.Render(p.Label)+"\n"+body)
	}
	if len(blocks) == 0 {
		return "All panels are hidden. Press p to configure panels."
	}
	return strings.Join(blocks, "\n\n")
}

func renderStrokePanel(o *fetch.Orchestrator, tbl series.Table, opts RenderOptions) string {
	if msg, ok := pieceStatus(o); ok {
		return msg
	}
	chartOpts := chart.TableOptions(tbl, "", chart.PlotWidthFor(opts.Width), opts.ChartHeight, o.State().Cursor.Current())
	chartOpts.Color = opts.Color
	return strings.TrimRight(chart.Render(chart.FromTable(tbl), chartOpts), "\n")
}

func renderForceCurve(o *fetch.Orchestrator, tbl series.Table, opts RenderOptions) string {
	if msg, ok := pieceStatus(o); ok {
		return msg
	}
	if err := o.Err(fetch.StageStroke); err != nil {
		return errorStyle.Render(err.Error()) + "\n" + headerStyle.Render("Press r to retry.")
	}
	fc := o.ForceCurve()
	if fc == nil {
		if o.Loading(fetch.StageStroke) {
			return "Loading force curve..."
		}
		return "No force curve loaded."
	}
	title := fmt.Sprintf("stroke %d, %d samples", fc.StrokeNumber, fc.DataPoints)
	if o.Loading(fetch.StageStroke) {
		title += " (updating)"
	}
	chartOpts := chart.TableOptions(tbl, headerStyle.Render(title), chart.PlotWidthFor(opts.Width), opts.ChartHeight, 0)
	chartOpts.Color = opts.Color
	return strings.TrimRight(chart.Render(chart.FromTable(tbl), chartOpts), "\n")
}

// pieceStatus returns a placeholder when the piece stage has nothing to draw.
func pieceStatus(o *fetch.Orchestrator) (string, bool) {
	if err := o.Err(fetch.StagePiece); err != nil && o.PieceID() == "" {
		return errorStyle.Render(err.Error()), true
	}
	if o.PieceID() == "" {
		return "Loading strokes...", true
	}
	if len(o.Strokes()) == 0 {
		return "No stroke data for this piece.", true
	}
	return "", false
}

func renderSummary(o *fetch.Orchestrator, width int) string {
	lines := []string{}
	if piece := currentPiece(o); piece != nil {
		header := titleStyle.Render(piece.Label())
		if piece.Duration != nil {
			header += "  " + headerStyle.Render(*piece.Duration)
		}
		if piece.DistanceMeters != nil {
			header += "  " + headerStyle.Render(fmt.Sprintf("%.0f m", *piece.DistanceMeters))
		}
		lines = append(lines, header)
	}
	if err := o.Err(fetch.StagePiece); err != nil {
		lines = append(lines, errorStyle.Render(err.Error()))
	}
	avg := o.Averages()
	if avg == nil {
		if msg, ok := pieceStatus(o); ok {
			lines = append(lines, msg)
		}
		return strings.Join(lines, "\n")
	}

	cards := []string{
		metricCard("Strokes", strconv.Itoa(avg.TotalStrokes)),
		metricCard("Avg rating", formatOpt(avg.AvgRating, "%.1f")),
		metricCard("Avg speed", formatOpt(avg.AvgBoatSpeed, "%.2f m/s")),
		metricCard("Crew power", formatOpt(avg.CrewAvgPower, "%.1f W")),
	}
	if width < 60 {
		lines = append(lines, strings.Join(cards, "\n"))
	} else {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	if cur := o.CurrentStroke(); cur != nil {
		st := o.State()
		lines = append(lines, fmt.Sprintf("Stroke %d/%d  #%d at %s  rating %s  speed %s  power %s",
			st.Cursor.Current(), st.Cursor.Total(), cur.StrokeNumber, formatClock(cur.TimeMs),
			formatOpt(cur.Rating, "%.1f"), formatOpt(cur.AvgBoatSpeed, "%.2f"), formatOpt(cur.AveragePower, "%.0f W")))
	}
	lines = append(lines, "", mutedStyle.Render(strings.Join(AveragesTable(*avg), "\n")))
	return strings.Join(lines, "\n")
}

// AveragesTable formats the per-athlete averages of a piece.
func AveragesTable(avg model.PieceAverages) []string {
	headers := []string{"Seat", "Athlete", "Power", "Length", "Eff", "Catch", "Finish", "Drive", "Recovery"}
	rows := make([][]string, 0, len(avg.Athletes))
	for _, a := range avg.Athletes {
		rows = append(rows, []string{
			strconv.Itoa(a.SeatPosition),
			a.Name,
			formatOpt(a.AvgPower, "%.1f"),
			formatOpt(a.AvgStrokeLength, "%.1f"),
			formatOpt(a.AvgEffectiveLength, "%.1f"),
			formatOpt(a.AvgCatchSlip, "%.1f"),
			formatOpt(a.AvgFinishSlip, "%.1f"),
			formatOpt(a.AvgDriveTime, "%.3f"),
			formatOpt(a.AvgRecoveryTime, "%.3f"),
		})
	}
	right := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	return chart.FormatTable(headers, rows, right)
}

func currentPiece(o *fetch.Orchestrator) *model.Piece {
	session := o.Session()
	if session == nil {
		return nil
	}
	id := o.PieceID()
	if id == "" {
		id = o.SelectedPiece()
	}
	for i := range session.Pieces {
		if session.Pieces[i].ID == id {
			return &session.Pieces[i]
		}
	}
	return nil
}

func formatOpt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// formatClock renders milliseconds as m:ss.s.
func formatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := float64(ms%60000) / 1000
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}
