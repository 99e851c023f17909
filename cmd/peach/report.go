package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arin-jaff/peach-data-tool/internal/chart"
	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/fetch"
	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/ui"
)

var (
	reportPiece      int
	reportStroke     int
	reportWidth      int
	reportHeight     int
	periodicStart    int64
	periodicEnd      int64
	periodicDown     int
	periodicJSON     bool
	periodicMaxLines int
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Print the dashboard panels of a session piece",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportPiece, "piece", 0, "piece number (default: first piece)")
	cmd.Flags().IntVar(&reportStroke, "stroke", 1, "1-based stroke index for the cursor")
	cmd.Flags().IntVar(&reportWidth, "width", 0, "output width (default: terminal width)")
	cmd.Flags().IntVar(&reportHeight, "height", 0, "chart height in rows")
	addDashboardFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if reportStroke < 1 {
		return fmt.Errorf("--stroke must be >= 1")
	}
	o := fetch.New(s.client(), dashboard.NewWithOptions(s.dashboardOptions()), fetch.Options{
		Timeout: s.timeout,
		Logger:  s.logger(cmd.ErrOrStderr()),
	})
	o.Drive(o.LoadSession(args[0]))
	if err := o.Err(fetch.StageSession); err != nil {
		return err
	}
	if reportPiece > 0 {
		piece, err := pieceByNumber(*o.Session(), reportPiece)
		if err != nil {
			return err
		}
		o.Drive(o.SelectPiece(piece.ID))
	}
	if err := o.Err(fetch.StagePiece); err != nil {
		return err
	}
	if reportStroke != 1 {
		o.State().Cursor.SetCurrentStroke(reportStroke)
		o.Drive(o.SyncStroke())
	}

	width := reportWidth
	if width <= 0 {
		width = chart.TerminalWidth()
	}
	out := cmd.OutOrStdout()
	_, err = fmt.Fprintln(out, ui.RenderPanels(o, ui.RenderOptions{
		Width:       width,
		ChartHeight: reportHeight,
		Color:       chart.UseColor(out),
	}))
	return err
}

func newPeriodicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periodic <piece-id>",
		Short: "Print periodic sensor samples of a piece",
		Args:  cobra.ExactArgs(1),
		RunE:  runPeriodicCmd,
	}
	cmd.Flags().Int64Var(&periodicStart, "start", -1, "first time_ms to include")
	cmd.Flags().Int64Var(&periodicEnd, "end", -1, "last time_ms to include")
	cmd.Flags().IntVar(&periodicDown, "downsample", 1, "keep every nth sample")
	cmd.Flags().BoolVar(&periodicJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&periodicMaxLines, "limit", 200, "maximum rows to print (0 = all)")
	return cmd
}

func runPeriodicCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if periodicDown < 1 {
		return fmt.Errorf("--downsample must be >= 1")
	}
	q := model.PeriodicQuery{Downsample: periodicDown}
	if cmd.Flags().Changed("start") {
		q.StrokeStart = &periodicStart
	}
	if cmd.Flags().Changed("end") {
		q.StrokeEnd = &periodicEnd
	}
	page, err := s.client().GetPeriodic(context.Background(), args[0], q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if periodicJSON {
		return writeJSON(out, page)
	}
	rows := make([][]string, 0, len(page.Data))
	for i, p := range page.Data {
		if periodicMaxLines > 0 && i >= periodicMaxLines {
			break
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.TimeMs, 10),
			optFloat(p.NormalizedTime, "%.2f"),
			optFloat(p.Speed, "%.2f"),
			optFloat(model.SeatValue(p.GateAngle, 1), "%.1f"),
			optFloat(model.SeatValue(p.GateForceX, 1), "%.0f"),
		})
	}
	lines := chart.FormatTable([]string{"Time ms", "Norm", "Speed", "Angle 1", "Force 1"}, rows, map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true})
	if err := writeLines(out, lines); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d of %d samples\n", len(rows), page.TotalPoints)
	return err
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
