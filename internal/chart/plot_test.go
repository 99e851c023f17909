package chart

import (
	"strings"
	"testing"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/series"
)

func values(vs ...any) []*float64 {
	return model.Floats(vs...)
}

func TestRenderSharedScale(t *testing.T) {
	out := Render([]Series{
		{Name: "1 Ada", Values: values(100, 200, 300), Slot: 0},
		{Name: "2 Ben", Values: values(150, 250, 350), Slot: 1},
	}, Options{Title: "Power", Width: 20, Height: 4})
	if !strings.HasPrefix(out, "Power\n") {
		t.Fatalf("expected title first, got %q", out)
	}
	if !strings.Contains(out, "350") || !strings.Contains(out, "100") {
		t.Fatalf("expected shared axis bounds in output:\n%s", out)
	}
	if !strings.Contains(out, "1 Ada (solid)") || !strings.Contains(out, "2 Ben (dashed)") {
		t.Fatalf("expected legend entries:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes")
	}
}

func TestRenderNoData(t *testing.T) {
	out := Render([]Series{{Name: "empty", Values: values(nil, nil)}}, Options{Width: 20, Height: 4})
	if !strings.Contains(out, "no data") {
		t.Fatalf("expected no data marker, got %q", out)
	}
}

func TestRenderGapBreaksLine(t *testing.T) {
	gap := Render([]Series{{Name: "a", Values: values(1, nil, 1)}}, Options{Width: 10, Height: 2})
	full := Render([]Series{{Name: "a", Values: values(1, 1, 1)}}, Options{Width: 10, Height: 2})
	if gap == full {
		t.Fatalf("expected a gap to change the rendering")
	}
	blank := string(brailleFromMask(0))
	if !strings.Contains(gap, blank) {
		t.Fatalf("expected empty cells where the gap is:\n%s", gap)
	}
}

func TestRenderCursorMarker(t *testing.T) {
	out := Render([]Series{{Name: "a", Values: values(1, 2, 3, 4, 5)}}, Options{Width: 10, Height: 2, Cursor: 5, Color: true})
	if !strings.Contains(out, cursorMarker) {
		t.Fatalf("expected cursor marker:\n%s", out)
	}
	if !strings.Contains(out, cursorColor) {
		t.Fatalf("expected cursor layer color")
	}
	none := Render([]Series{{Name: "a", Values: values(1, 2, 3, 4, 5)}}, Options{Width: 10, Height: 2, Cursor: 9})
	if strings.Contains(none, cursorMarker) {
		t.Fatalf("out of range cursor should not be drawn")
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-axisLabelWidth-3 {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestIndexToDotSpansWidth(t *testing.T) {
	if got := indexToDot(0, 5, 10); got != 0 {
		t.Fatalf("first point at %d", got)
	}
	if got := indexToDot(4, 5, 10); got != 19 {
		t.Fatalf("last point at %d", got)
	}
	if got := indexToDot(0, 1, 10); got != 0 {
		t.Fatalf("single point at %d", got)
	}
}

func TestFromTable(t *testing.T) {
	tbl := series.Table{
		Panel:  model.PanelPower,
		XLabel: series.XStroke,
		Columns: []series.Column{
			{Key: "seat3", Label: "3 Cal", Seat: 3},
			{Key: series.KeyCrewAverage, Label: "Crew avg"},
		},
		Rows: []series.Row{
			{X: 1, Values: values(200, 210)},
			{X: 2, Values: values(nil, 205)},
		},
	}
	got := FromTable(tbl)
	if len(got) != 2 || got[0].Slot != 2 || got[1].Slot != crewSlot {
		t.Fatalf("unexpected series: %+v", got)
	}
	if got[0].Values[1] != nil || *got[1].Values[1] != 205 {
		t.Fatalf("values not transposed")
	}
	opts := TableOptions(tbl, "Power", 40, 6, 2)
	if opts.XLabels[0] != "stroke 1" || opts.XLabels[1] != "2" || opts.Scale != ScaleShared {
		t.Fatalf("unexpected options: %+v", opts)
	}
	speed := TableOptions(series.Table{Panel: model.PanelSpeed}, "", 0, 0, 0)
	if speed.Scale != ScalePerSeries {
		t.Fatalf("speed panel should scale per series")
	}
}
