// Package chart renders telemetry series as braille line plots and
// aligned text tables for the terminal.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named line. A nil value leaves a gap in the line.
type Series struct {
	Name   string
	Values []*float64
	// Slot picks the color and line style so a seat keeps its look
	// when other lines are hidden.
	Slot int
}

// Scale selects how the y axis is shared between series.
type Scale int

const (
	// ScaleShared draws every series against one axis.
	ScaleShared Scale = iota
	// ScalePerSeries normalizes each series to its own min/max.
	ScalePerSeries
)

// Options controls a plot.
type Options struct {
	Title  string
	Width  int
	Height int
	Scale  Scale
	// Cursor is the 1-based position of the highlighted point; 0 for none.
	Cursor int
	// XLabels are printed under the left and right ends of the x axis.
	XLabels [2]string
	Color   bool
}

type seriesRange struct {
	min float64
	max float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	cursorMarker        = "▲"
	colorReset          = "\x1b[0m"
	cursorColor         = "\x1b[90m"
	terminalWidthBackup = 80
	axisLabelWidth      = 8
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
	{name: "red", code: "\x1b[31m"},
	{name: "bright cyan", code: "\x1b[96m"},
	{name: "bright magenta", code: "\x1b[95m"},
	{name: "white", code: "\x1b[97m"},
}

// Plot writes a plot to w. Color is enabled when opts.Color is set or w
// is a terminal, unless NO_COLOR is present.
func Plot(w io.Writer, series []Series, opts Options) error {
	opts.Color = shouldUseColor(w, opts.Color)
	_, err := io.WriteString(w, Render(series, opts))
	return err
}

// Render returns the plot as a string. Series without a single present
// value produce a "no data" line instead of an empty frame.
func Render(series []Series, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(opts.Title)
		b.WriteByte('\n')
	}
	series = filterSeries(series)
	if len(series) == 0 {
		b.WriteString("  no data\n")
		return b.String()
	}
	n := maxSeriesLen(series)

	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.Width
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	ranges := seriesRanges(series, opts.Scale)
	cells := make([][][]uint8, 0, len(series)+1)
	for si, s := range series {
		layer := makeCells(height, width)
		style := lineStyles[s.Slot%len(lineStyles)]
		prevX, prevY := -1, -1
		for i, v := range s.Values {
			if v == nil {
				prevX, prevY = -1, -1
				continue
			}
			px := indexToDot(i, n, width)
			py := valueToRow(*v, ranges[si].min, ranges[si].max, height*4)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(layer, dx, dy)
					}
				})
			} else {
				setBrailleDot(layer, px, py)
			}
			prevX, prevY = px, py
		}
		cells = append(cells, layer)
	}
	cursorCol := -1
	if opts.Cursor > 0 && opts.Cursor <= n {
		layer := makeCells(height, width)
		px := indexToDot(opts.Cursor-1, n, width)
		for y := 0; y < height*4; y++ {
			setBrailleDot(layer, px, y)
		}
		cursorCol = px / 2
		cells = append(cells, layer)
	}

	labels := makeAxisLabels(height, ranges, opts.Scale)
	for y := 0; y < height; y++ {
		b.WriteString(runewidth.FillLeft(labels[y], axisLabelWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, layerIdx := composeCell(cells, x, y)
			ch := brailleFromMask(mask)
			code := ""
			switch {
			case !opts.Color || layerIdx < 0:
			case layerIdx == len(series):
				code = cursorColor
			default:
				code = colorPalette[series[layerIdx].Slot%len(colorPalette)].code
			}
			if code != "" {
				b.WriteString(code)
				b.WriteRune(ch)
				b.WriteString(colorReset)
			} else {
				b.WriteRune(ch)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(renderXAxis(width, cursorCol, opts.XLabels))
	b.WriteString(renderLegend(series, ranges, opts))
	b.WriteByte('\n')
	return b.String()
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		for _, v := range s.Values {
			if v != nil {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func maxSeriesLen(series []Series) int {
	maxLen := 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
	}
	return maxLen
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	return terminalWidth()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// UseColor reports whether w is a terminal that should receive ANSI color.
func UseColor(w io.Writer) bool {
	return shouldUseColor(w, false)
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// seriesRanges returns the y range of every series. A flat range is
// widened by one unit on each side.
func seriesRanges(series []Series, scale Scale) []seriesRange {
	out := make([]seriesRange, len(series))
	for i, s := range series {
		out[i] = presentRange(s.Values)
	}
	if scale == ScaleShared {
		shared := out[0]
		for _, r := range out[1:] {
			shared.min = math.Min(shared.min, r.min)
			shared.max = math.Max(shared.max, r.max)
		}
		for i := range out {
			out[i] = shared
		}
	}
	for i := range out {
		if math.Abs(out[i].max-out[i].min) < 1e-9 {
			out[i].min--
			out[i].max++
		}
	}
	return out
}

func presentRange(values []*float64) seriesRange {
	r := seriesRange{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range values {
		if v == nil {
			continue
		}
		r.min = math.Min(r.min, *v)
		r.max = math.Max(r.max, *v)
	}
	return r
}

func makeAxisLabels(height int, ranges []seriesRange, scale Scale) []string {
	labels := make([]string, height)
	if scale == ScalePerSeries {
		labels[0] = "100%"
		if height > 2 {
			labels[height/2] = "50%"
		}
		if height > 1 {
			labels[height-1] = "0%"
		}
		return labels
	}
	r := ranges[0]
	labels[0] = formatTick(r.max)
	if height > 2 {
		labels[height/2] = formatTick(r.min + (r.max-r.min)*float64(height-1-height/2)/float64(height-1))
	}
	if height > 1 {
		labels[height-1] = formatTick(r.min)
	}
	return labels
}

func formatTick(v float64) string {
	switch {
	case math.Abs(v) >= 1000:
		return fmt.Sprintf("%.0f", v)
	case math.Abs(v) >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func renderXAxis(width, cursorCol int, xLabels [2]string) string {
	pad := strings.Repeat(" ", axisLabelWidth+runewidth.StringWidth(axisSeparator))
	var b strings.Builder
	if cursorCol >= 0 {
		b.WriteString(pad)
		b.WriteString(strings.Repeat(" ", cursorCol))
		b.WriteString(cursorMarker)
		b.WriteByte('\n')
	}
	if xLabels[0] == "" && xLabels[1] == "" {
		return b.String()
	}
	gap := width - runewidth.StringWidth(xLabels[0]) - runewidth.StringWidth(xLabels[1])
	if gap < 1 {
		gap = 1
	}
	b.WriteString(pad)
	b.WriteString(xLabels[0])
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(xLabels[1])
	b.WriteByte('\n')
	return b.String()
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the layers of one cell. The first layer with a dot
// decides the color.
func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	layerIdx := -1
	for i, cells := range layers {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if layerIdx == -1 {
			layerIdx = i
		}
		mask |= cellMask
	}
	return mask, layerIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// indexToDot maps the i-th of n points onto the braille dot columns of
// a plot width cells wide.
func indexToDot(i, n, width int) int {
	dots := width * 2
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(dots-1) / float64(n-1)))
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func renderLegend(series []Series, ranges []seriesRange, opts Options) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		styleName := lineStyles[s.Slot%len(lineStyles)].name
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, styleName)
		if opts.Scale == ScalePerSeries {
			label += fmt.Sprintf(" %s..%s", formatTick(ranges[i].min), formatTick(ranges[i].max))
		}
		if opts.Color {
			label = colorPalette[s.Slot%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return strings.Repeat(" ", axisLabelWidth) + "   " + strings.Join(parts, "  ") + "\n"
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleDotMask(x, y int) uint8 {
	if x < 0 || x > 1 || y < 0 || y > 3 {
		return 0
	}
	return brailleDots[x][y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
