// Package series derives chart tables from raw stroke and periodic
// telemetry. Every function is pure: it reads its inputs and returns a
// fresh table, with no caching between calls.
package series

import (
	"sort"
	"strconv"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/stats"
)

// Column keys shared with renderers.
const (
	KeyCrewAverage = "crewAvg"
	KeySpeed       = "speed"
	KeyRating      = "rating"
)

// Axis labels.
const (
	XStroke         = "stroke"
	XNormalizedTime = "normalized time"
)

// Selection is the read-only view of the athlete selection.
type Selection interface {
	Selected(seat int) bool
	ShowCrewAverage() bool
}

// Column describes one value column. Seat is 0 for boat-level columns.
type Column struct {
	Key   string
	Label string
	Seat  int
}

// Row is one x position and its values, aligned with Table.Columns.
type Row struct {
	X      float64
	Values []*float64
}

// Table is a chart-ready series set.
type Table struct {
	Panel   model.PanelID
	XLabel  string
	Columns []Column
	Rows    []Row
}

// Input is a snapshot of everything the builder reads.
type Input struct {
	Athletes   []model.Athlete
	Strokes    []model.StrokeMetric
	ForceCurve []model.PeriodicDataPoint
	Selection  Selection
}

// ColumnIndex returns the position of a column key.
func (t Table) ColumnIndex(key string) (int, bool) {
	for i, c := range t.Columns {
		if c.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Value returns the value at a row for a column key; nil when absent or unknown.
func (t Table) Value(row int, key string) *float64 {
	idx, ok := t.ColumnIndex(key)
	if !ok || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row].Values[idx]
}

// Build computes every chart table for the snapshot.
func Build(in Input) map[model.PanelID]Table {
	return map[model.PanelID]Table{
		model.PanelPower:           Power(in),
		model.PanelEffectiveLength: EffectiveLength(in),
		model.PanelAngles:          Angles(in),
		model.PanelSpeed:           SpeedRating(in),
		model.PanelForceCurve:      ForceCurve(in),
	}
}

// Power has one column per selected seat plus, when enabled, the crew
// average across every seat of the stroke regardless of selection.
func Power(in Input) Table {
	seats := selectedAthletes(in)
	cols := make([]Column, 0, len(seats)+1)
	for _, a := range seats {
		cols = append(cols, Column{Key: seatKey("seat", a.SeatPosition), Label: athleteLabel(a), Seat: a.SeatPosition})
	}
	crew := showCrew(in.Selection)
	if crew {
		cols = append(cols, Column{Key: KeyCrewAverage, Label: "Crew Avg"})
	}
	return perStroke(model.PanelPower, cols, in.Strokes, func(s model.StrokeMetric) []*float64 {
		values := make([]*float64, 0, len(cols))
		for _, a := range seats {
			values = append(values, model.SeatValue(s.SwivelPower, a.SeatPosition))
		}
		if crew {
			values = append(values, stats.Mean(s.SwivelPower))
		}
		return values
	})
}

// EffectiveLength has one column per selected seat.
func EffectiveLength(in Input) Table {
	seats := selectedAthletes(in)
	cols := make([]Column, 0, len(seats))
	for _, a := range seats {
		cols = append(cols, Column{Key: seatKey("eff", a.SeatPosition), Label: athleteLabel(a), Seat: a.SeatPosition})
	}
	return perStroke(model.PanelEffectiveLength, cols, in.Strokes, func(s model.StrokeMetric) []*float64 {
		values := make([]*float64, 0, len(cols))
		for _, a := range seats {
			values = append(values, stats.EffectiveLength(s, a.SeatPosition))
		}
		return values
	})
}

// Angles pairs a catch and a finish column for each selected seat.
func Angles(in Input) Table {
	seats := selectedAthletes(in)
	cols := make([]Column, 0, 2*len(seats))
	for _, a := range seats {
		label := athleteLabel(a)
		cols = append(cols,
			Column{Key: seatKey("catch", a.SeatPosition), Label: label + " catch", Seat: a.SeatPosition},
			Column{Key: seatKey("finish", a.SeatPosition), Label: label + " finish", Seat: a.SeatPosition},
		)
	}
	return perStroke(model.PanelAngles, cols, in.Strokes, func(s model.StrokeMetric) []*float64 {
		values := make([]*float64, 0, len(cols))
		for _, a := range seats {
			values = append(values,
				model.SeatValue(s.MinAngle, a.SeatPosition),
				model.SeatValue(s.MaxAngle, a.SeatPosition),
			)
		}
		return values
	})
}

// SpeedRating is boat level: average speed and stroke rate.
func SpeedRating(in Input) Table {
	cols := []Column{
		{Key: KeySpeed, Label: "Speed (m/s)"},
		{Key: KeyRating, Label: "Rating (spm)"},
	}
	return perStroke(model.PanelSpeed, cols, in.Strokes, func(s model.StrokeMetric) []*float64 {
		return []*float64{s.AvgBoatSpeed, s.Rating}
	})
}

// ForceCurve keys rows by normalized time. Samples without one are
// skipped; order and duplicates are kept as delivered.
func ForceCurve(in Input) Table {
	seats := selectedAthletes(in)
	cols := make([]Column, 0, len(seats))
	for _, a := range seats {
		cols = append(cols, Column{Key: seatKey("force", a.SeatPosition), Label: athleteLabel(a), Seat: a.SeatPosition})
	}
	rows := make([]Row, 0, len(in.ForceCurve))
	for _, p := range in.ForceCurve {
		if p.NormalizedTime == nil {
			continue
		}
		values := make([]*float64, 0, len(cols))
		for _, a := range seats {
			values = append(values, model.SeatValue(p.GateForceX, a.SeatPosition))
		}
		rows = append(rows, Row{X: *p.NormalizedTime, Values: values})
	}
	return Table{Panel: model.PanelForceCurve, XLabel: XNormalizedTime, Columns: cols, Rows: rows}
}

func perStroke(panel model.PanelID, cols []Column, strokes []model.StrokeMetric, values func(model.StrokeMetric) []*float64) Table {
	rows := make([]Row, 0, len(strokes))
	for i, s := range strokes {
		rows = append(rows, Row{X: float64(i + 1), Values: values(s)})
	}
	return Table{Panel: panel, XLabel: XStroke, Columns: cols, Rows: rows}
}

func selectedAthletes(in Input) []model.Athlete {
	out := make([]model.Athlete, 0, len(in.Athletes))
	for _, a := range in.Athletes {
		if in.Selection == nil || in.Selection.Selected(a.SeatPosition) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SeatPosition < out[j].SeatPosition
	})
	return out
}

func showCrew(sel Selection) bool {
	return sel == nil || sel.ShowCrewAverage()
}

func seatKey(prefix string, seat int) string {
	return prefix + strconv.Itoa(seat)
}

func athleteLabel(a model.Athlete) string {
	if a.Name == "" {
		return "Seat " + strconv.Itoa(a.SeatPosition)
	}
	return strconv.Itoa(a.SeatPosition) + " " + a.Name
}
