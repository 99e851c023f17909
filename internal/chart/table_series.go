package chart

import (
	"strconv"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/series"
)

const crewSlot = 8

// FromTable turns the columns of a derived table into plot series.
func FromTable(t series.Table) []Series {
	out := make([]Series, len(t.Columns))
	for ci, col := range t.Columns {
		values := make([]*float64, len(t.Rows))
		for ri, row := range t.Rows {
			values[ri] = row.Values[ci]
		}
		out[ci] = Series{Name: col.Label, Values: values, Slot: slotFor(col, ci)}
	}
	return out
}

func slotFor(col series.Column, idx int) int {
	switch {
	case col.Seat > 0:
		return col.Seat - 1
	case col.Key == series.KeyCrewAverage:
		return crewSlot
	default:
		return idx
	}
}

// TableOptions fills the axis labels and scale for a derived table.
// cursor is the 1-based highlighted row, or 0.
func TableOptions(t series.Table, title string, width, height, cursor int) Options {
	opts := Options{Title: title, Width: width, Height: height, Cursor: cursor}
	if t.Panel == model.PanelSpeed {
		opts.Scale = ScalePerSeries
	}
	if n := len(t.Rows); n > 0 {
		opts.XLabels = [2]string{
			t.XLabel + " " + formatX(t.Rows[0].X),
			formatX(t.Rows[n-1].X),
		}
	}
	return opts
}

func formatX(x float64) string {
	if x == float64(int64(x)) {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}
