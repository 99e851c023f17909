package series

import (
	"math"
	"testing"

	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

func roster(n int) []model.Athlete {
	names := []string{"Al", "Bo", "Cy", "Di", "Ed", "Fi", "Gu", "Hal"}
	out := make([]model.Athlete, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Athlete{ID: names[i], SeatPosition: i + 1, Name: names[i]})
	}
	return out
}

func selection(seats int) *dashboard.Selection {
	s := dashboard.NewSelection(seats)
	return &s
}

func expectValue(t *testing.T, tbl Table, row int, key string, want *float64) {
	t.Helper()
	got := tbl.Value(row, key)
	if (got == nil) != (want == nil) {
		t.Fatalf("%s row %d %s: expected %v, got %v", tbl.Panel, row, key, want, got)
	}
	if got != nil && math.Abs(*got-*want) > 1e-9 {
		t.Fatalf("%s row %d %s: expected %.3f, got %.3f", tbl.Panel, row, key, *want, *got)
	}
}

func TestPowerRowWithCrewAverage(t *testing.T) {
	in := Input{
		Athletes:  roster(4),
		Strokes:   []model.StrokeMetric{{StrokeNumber: 1, SwivelPower: model.Floats(200, nil, 210, 205)}},
		Selection: selection(4),
	}
	tbl := Power(in)
	if len(tbl.Rows) != 1 || tbl.Rows[0].X != 1 {
		t.Fatalf("unexpected rows: %+v", tbl.Rows)
	}
	expectValue(t, tbl, 0, "seat1", model.Float(200))
	expectValue(t, tbl, 0, "seat2", nil)
	expectValue(t, tbl, 0, "seat3", model.Float(210))
	expectValue(t, tbl, 0, "seat4", model.Float(205))
	expectValue(t, tbl, 0, KeyCrewAverage, model.Float(205))
}

func TestCrewAverageAbsentWhenNoSeatHasData(t *testing.T) {
	in := Input{
		Athletes:  roster(2),
		Strokes:   []model.StrokeMetric{{SwivelPower: model.Floats(nil, nil)}, {}},
		Selection: selection(2),
	}
	tbl := Power(in)
	expectValue(t, tbl, 0, KeyCrewAverage, nil)
	expectValue(t, tbl, 1, KeyCrewAverage, nil)
}

func TestCrewAverageIgnoresSelection(t *testing.T) {
	sel := selection(3)
	sel.ToggleAthlete(1)
	in := Input{
		Athletes:  roster(3),
		Strokes:   []model.StrokeMetric{{SwivelPower: model.Floats(300, 200, 100)}},
		Selection: sel,
	}
	tbl := Power(in)
	if _, ok := tbl.ColumnIndex("seat1"); ok {
		t.Fatalf("expected seat1 column removed")
	}
	expectValue(t, tbl, 0, KeyCrewAverage, model.Float(200))
}

func TestCrewAverageToggleRemovesColumn(t *testing.T) {
	sel := selection(2)
	sel.ToggleCrewAverage()
	tbl := Power(Input{Athletes: roster(2), Strokes: []model.StrokeMetric{{SwivelPower: model.Floats(1, 2)}}, Selection: sel})
	if _, ok := tbl.ColumnIndex(KeyCrewAverage); ok {
		t.Fatalf("expected no crew average column")
	}
	if len(tbl.Columns) != 2 || len(tbl.Rows[0].Values) != 2 {
		t.Fatalf("unexpected columns: %+v", tbl.Columns)
	}
}

func TestToggleAthleteRemovesExactlyOneSeatEverywhere(t *testing.T) {
	strokes := []model.StrokeMetric{{
		SwivelPower: model.Floats(1, 2, 3),
		MinAngle:    model.Floats(-50, -51, -52),
		MaxAngle:    model.Floats(30, 31, 32),
	}}
	sel := selection(3)
	before := Build(Input{Athletes: roster(3), Strokes: strokes, Selection: sel})
	sel.ToggleAthlete(2)
	after := Build(Input{Athletes: roster(3), Strokes: strokes, Selection: sel})

	perSeat := map[model.PanelID]int{
		model.PanelPower:           1,
		model.PanelEffectiveLength: 1,
		model.PanelAngles:          2,
		model.PanelForceCurve:      1,
	}
	for panel, width := range perSeat {
		if got, want := len(after[panel].Columns), len(before[panel].Columns)-width; got != want {
			t.Fatalf("%s: expected %d columns, got %d", panel, want, got)
		}
		for _, c := range after[panel].Columns {
			if c.Seat == 2 {
				t.Fatalf("%s: seat 2 column still present", panel)
			}
		}
	}
	expectValue(t, after[model.PanelPower], 0, KeyCrewAverage, model.Float(2))
	expectValue(t, after[model.PanelPower], 0, "seat3", model.Float(3))
}

func TestEffectiveLengthScenario(t *testing.T) {
	in := Input{
		Athletes: roster(1),
		Strokes: []model.StrokeMetric{{
			MinAngle:   model.Floats(-55),
			MaxAngle:   model.Floats(35),
			CatchSlip:  model.Floats(-3),
			FinishSlip: model.Floats(2),
		}},
		Selection: selection(1),
	}
	expectValue(t, EffectiveLength(in), 0, "eff1", model.Float(85))
}

func TestEffectiveLengthAbsentWithoutBothAngles(t *testing.T) {
	in := Input{
		Athletes: roster(3),
		Strokes: []model.StrokeMetric{{
			MinAngle:   model.Floats(nil, -50),
			MaxAngle:   model.Floats(30, nil),
			CatchSlip:  model.Floats(1, 1, 1),
			FinishSlip: model.Floats(1, 1, 1),
		}},
		Selection: selection(3),
	}
	tbl := EffectiveLength(in)
	for _, key := range []string{"eff1", "eff2", "eff3"} {
		expectValue(t, tbl, 0, key, nil)
	}
}

func TestAnglesPairCatchAndFinish(t *testing.T) {
	in := Input{
		Athletes:  roster(2),
		Strokes:   []model.StrokeMetric{{MinAngle: model.Floats(-55, nil), MaxAngle: model.Floats(35, 33)}},
		Selection: selection(2),
	}
	tbl := Angles(in)
	wantKeys := []string{"catch1", "finish1", "catch2", "finish2"}
	if len(tbl.Columns) != len(wantKeys) {
		t.Fatalf("unexpected columns: %+v", tbl.Columns)
	}
	for i, key := range wantKeys {
		if tbl.Columns[i].Key != key {
			t.Fatalf("column %d: expected %s, got %s", i, key, tbl.Columns[i].Key)
		}
	}
	expectValue(t, tbl, 0, "catch1", model.Float(-55))
	expectValue(t, tbl, 0, "finish1", model.Float(35))
	expectValue(t, tbl, 0, "catch2", nil)
	expectValue(t, tbl, 0, "finish2", model.Float(33))
}

func TestSpeedRatingIsBoatLevel(t *testing.T) {
	in := Input{
		Athletes: roster(8),
		Strokes: []model.StrokeMetric{
			{AvgBoatSpeed: model.Float(4.8), Rating: model.Float(32)},
			{Rating: model.Float(33)},
		},
		Selection: selection(8),
	}
	tbl := SpeedRating(in)
	if len(tbl.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(tbl.Columns))
	}
	expectValue(t, tbl, 0, KeySpeed, model.Float(4.8))
	expectValue(t, tbl, 1, KeySpeed, nil)
	expectValue(t, tbl, 1, KeyRating, model.Float(33))
	if tbl.Rows[1].X != 2 {
		t.Fatalf("expected x=2, got %v", tbl.Rows[1].X)
	}
}

func TestSeatBeyondArrayIsAbsent(t *testing.T) {
	in := Input{
		Athletes:  roster(4),
		Strokes:   []model.StrokeMetric{{SwivelPower: model.Floats(200, 210)}},
		Selection: selection(4),
	}
	tbl := Power(in)
	expectValue(t, tbl, 0, "seat4", nil)
	expectValue(t, tbl, 0, KeyCrewAverage, model.Float(205))
}

func TestRowsKeepStrokeOrder(t *testing.T) {
	in := Input{
		Athletes: roster(1),
		Strokes: []model.StrokeMetric{
			{StrokeNumber: 7, SwivelPower: model.Floats(1)},
			{StrokeNumber: 3, SwivelPower: model.Floats(2)},
			{StrokeNumber: 3, SwivelPower: model.Floats(3)},
		},
		Selection: selection(1),
	}
	tbl := Power(in)
	if len(tbl.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tbl.Rows))
	}
	for i, want := range []float64{1, 2, 3} {
		if tbl.Rows[i].X != float64(i+1) {
			t.Fatalf("row %d: unexpected x %v", i, tbl.Rows[i].X)
		}
		expectValue(t, tbl, i, "seat1", model.Float(want))
	}
}

func TestNoStrokesGivesEmptyRows(t *testing.T) {
	got := Build(Input{Athletes: roster(8), Selection: selection(8)})
	for panel, tbl := range got {
		if tbl.Rows == nil || len(tbl.Rows) != 0 {
			t.Fatalf("%s: expected empty rows, got %#v", panel, tbl.Rows)
		}
	}
}

func TestForceCurveFiltersAndKeepsDuplicates(t *testing.T) {
	in := Input{
		Athletes: roster(2),
		ForceCurve: []model.PeriodicDataPoint{
			{TimeMs: 10, NormalizedTime: model.Float(0), GateForceX: model.Floats(100, 90)},
			{TimeMs: 20, GateForceX: model.Floats(999, 999)},
			{TimeMs: 30, NormalizedTime: model.Float(0.5), GateForceX: model.Floats(400, nil)},
			{TimeMs: 40, NormalizedTime: model.Float(0.5), GateForceX: model.Floats(410)},
			{TimeMs: 50, NormalizedTime: model.Float(0.25), GateForceX: model.Floats(300, 280)},
		},
		Selection: selection(2),
	}
	tbl := ForceCurve(in)
	if tbl.XLabel != XNormalizedTime {
		t.Fatalf("unexpected x label %q", tbl.XLabel)
	}
	wantX := []float64{0, 0.5, 0.5, 0.25}
	if len(tbl.Rows) != len(wantX) {
		t.Fatalf("expected %d rows, got %d", len(wantX), len(tbl.Rows))
	}
	for i, x := range wantX {
		if tbl.Rows[i].X != x {
			t.Fatalf("row %d: expected x %v, got %v", i, x, tbl.Rows[i].X)
		}
	}
	expectValue(t, tbl, 1, "force2", nil)
	expectValue(t, tbl, 2, "force1", model.Float(410))
	expectValue(t, tbl, 2, "force2", nil)
}

func TestColumnsFollowSeatOrder(t *testing.T) {
	athletes := []model.Athlete{{SeatPosition: 3, Name: "C"}, {SeatPosition: 1, Name: "A"}}
	tbl := Power(Input{Athletes: athletes, Selection: selection(3)})
	if tbl.Columns[0].Key != "seat1" || tbl.Columns[1].Key != "seat3" {
		t.Fatalf("unexpected column order: %+v", tbl.Columns)
	}
	if tbl.Columns[0].Label != "1 A" {
		t.Fatalf("unexpected label %q", tbl.Columns[0].Label)
	}
}
