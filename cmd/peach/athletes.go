package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arin-jaff/peach-data-tool/internal/chart"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

var (
	athleteTrends bool
	athleteJSON   bool
	setName       string
	setUNI        string
	setSquad      string
	setWeight     float64
)

func newAthletesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athletes",
		Short: "List athlete profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			athletes, err := s.client().ListAthletes(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if athleteJSON {
				return writeJSON(out, athletes)
			}
			rows := make([][]string, 0, len(athletes))
			for _, a := range athletes {
				rows = append(rows, []string{
					a.ID,
					a.Name,
					derefOr(a.Squad, "-"),
					optFloat(a.Weight, "%.1f"),
					strconv.Itoa(a.SessionCount),
				})
			}
			return writeLines(out, chart.FormatTable([]string{"ID", "Name", "Squad", "Weight", "Sessions"}, rows, map[int]bool{3: true, 4: true}))
		},
	}
	cmd.Flags().BoolVar(&athleteJSON, "json", false, "print JSON")
	return cmd
}

func newAthleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlete <athlete-id>",
		Short: "Show an athlete profile and session history",
		Args:  cobra.ExactArgs(1),
		RunE:  runAthleteCmd,
	}
	cmd.Flags().BoolVar(&athleteTrends, "trends", false, "show per-piece performance trends")
	return cmd
}

func runAthleteCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	client := s.client()
	out := cmd.OutOrStdout()
	if athleteTrends {
		trends, err := client.GetAthleteTrends(context.Background(), args[0])
		if err != nil {
			return err
		}
		return writeLines(out, trendRows(trends))
	}
	detail, err := client.GetAthlete(context.Background(), args[0])
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s  squad %s  weight %s\n\n",
		detail.Name, derefOr(detail.Squad, "-"), optFloat(detail.Weight, "%.1f")); err != nil {
		return err
	}
	rows := make([][]string, 0, len(detail.Sessions))
	for _, entry := range detail.Sessions {
		rows = append(rows, []string{
			entry.SessionID,
			entry.SessionName,
			derefOr(entry.SessionDate, "-"),
			strconv.Itoa(entry.SeatPosition),
			derefOr(entry.Side, "-"),
		})
	}
	return writeLines(out, chart.FormatTable([]string{"Session", "Name", "Date", "Seat", "Side"}, rows, map[int]bool{3: true}))
}

func trendRows(t model.AthleteTrends) []string {
	rows := make([][]string, 0, len(t.DataPoints))
	for _, p := range t.DataPoints {
		piece := p.PieceID
		if p.PieceName != nil {
			piece = *p.PieceName
		}
		rows = append(rows, []string{
			p.SessionName,
			piece,
			strconv.Itoa(p.SeatPosition),
			optFloat(p.AvgPower, "%.0f"),
			optFloat(p.AvgStrokeLength, "%.1f"),
			optFloat(p.AvgEffectiveLength, "%.1f"),
			optFloat(p.AvgCatchSlip, "%.1f"),
			optFloat(p.AvgFinishSlip, "%.1f"),
		})
	}
	return chart.FormatTable(
		[]string{"Session", "Piece", "Seat", "Power", "Length", "Eff", "Catch", "Finish"},
		rows,
		map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true},
	)
}

func newAthleteSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlete-set <athlete-id>",
		Short: "Update athlete profile fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runAthleteSetCmd,
	}
	cmd.Flags().StringVar(&setName, "name", "", "display name")
	cmd.Flags().StringVar(&setUNI, "uni", "", "university identifier")
	cmd.Flags().StringVar(&setSquad, "squad", "", "squad")
	cmd.Flags().Float64Var(&setWeight, "weight", 0, "weight in kg")
	return cmd
}

func runAthleteSetCmd(cmd *cobra.Command, args []string) error {
	var u model.AthleteUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = model.String(setName)
	}
	if flags.Changed("uni") {
		u.UNI = model.String(setUNI)
	}
	if flags.Changed("squad") {
		u.Squad = model.String(setSquad)
	}
	if flags.Changed("weight") {
		if setWeight <= 0 {
			return fmt.Errorf("--weight must be > 0")
		}
		u.Weight = model.Float(setWeight)
	}
	if u.Empty() {
		return fmt.Errorf("nothing to update: pass at least one of --name, --uni, --squad, --weight")
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	athlete, err := s.client().UpdateAthlete(context.Background(), args[0], u)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", athlete.Name, athlete.ID)
	return err
}
