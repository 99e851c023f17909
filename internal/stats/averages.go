package stats

import (
	"math"
	"sort"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const (
	metricPlaces = 2
	timingPlaces = 4
)

// SeatSummary holds the per-piece means of one seat.
type SeatSummary struct {
	Power           *float64
	StrokeLength    *float64
	EffectiveLength *float64
	CatchSlip       *float64
	FinishSlip      *float64
	DriveTime       *float64
	RecoveryTime    *float64
}

// SummarizeSeat averages one seat across strokes. Slips are averaged by
// magnitude. Results are rounded for display; raw power is returned
// separately so crew totals are not built from rounded values.
func SummarizeSeat(strokes []model.StrokeMetric, seat int) (SeatSummary, *float64) {
	var power, length, eff, catchSlip, finishSlip, drive, recovery []float64
	for _, s := range strokes {
		if v := model.SeatValue(s.SwivelPower, seat); v != nil {
			power = append(power, *v)
		}
		if v := StrokeLength(s, seat); v != nil {
			length = append(length, *v)
		}
		if v := EffectiveLength(s, seat); v != nil {
			eff = append(eff, *v)
		}
		if v := model.SeatValue(s.CatchSlip, seat); v != nil {
			catchSlip = append(catchSlip, math.Abs(*v))
		}
		if v := model.SeatValue(s.FinishSlip, seat); v != nil {
			finishSlip = append(finishSlip, math.Abs(*v))
		}
		if v := model.SeatValue(s.DriveTime, seat); v != nil {
			drive = append(drive, *v)
		}
		if v := model.SeatValue(s.RecoveryTime, seat); v != nil {
			recovery = append(recovery, *v)
		}
	}
	rawPower := meanOf(power)
	return SeatSummary{
		Power:           RoundPtr(rawPower, metricPlaces),
		StrokeLength:    RoundPtr(meanOf(length), metricPlaces),
		EffectiveLength: RoundPtr(meanOf(eff), metricPlaces),
		CatchSlip:       RoundPtr(meanOf(catchSlip), metricPlaces),
		FinishSlip:      RoundPtr(meanOf(finishSlip), metricPlaces),
		DriveTime:       RoundPtr(meanOf(drive), timingPlaces),
		RecoveryTime:    RoundPtr(meanOf(recovery), timingPlaces),
	}, rawPower
}

// PieceAverages summarizes a piece for every rostered athlete, in seat
// order. The crew power is the mean of the athletes' average power over
// athletes that have one.
func PieceAverages(piece model.Piece, athletes []model.Athlete, strokes []model.StrokeMetric) model.PieceAverages {
	roster := append([]model.Athlete(nil), athletes...)
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].SeatPosition < roster[j].SeatPosition
	})

	out := model.PieceAverages{
		PieceID:      piece.ID,
		PieceName:    piece.Name,
		TotalStrokes: len(strokes),
		Athletes:     make([]model.AthleteAverage, 0, len(roster)),
	}
	var crewPower []float64
	for _, a := range roster {
		summary, rawPower := SummarizeSeat(strokes, a.SeatPosition)
		if rawPower != nil {
			crewPower = append(crewPower, *rawPower)
		}
		out.Athletes = append(out.Athletes, model.AthleteAverage{
			SeatPosition:       a.SeatPosition,
			Name:               a.Name,
			AvgPower:           summary.Power,
			AvgStrokeLength:    summary.StrokeLength,
			AvgEffectiveLength: summary.EffectiveLength,
			AvgCatchSlip:       summary.CatchSlip,
			AvgFinishSlip:      summary.FinishSlip,
			AvgDriveTime:       summary.DriveTime,
			AvgRecoveryTime:    summary.RecoveryTime,
		})
	}
	out.CrewAvgPower = RoundPtr(meanOf(crewPower), metricPlaces)

	ratings := make([]*float64, len(strokes))
	speeds := make([]*float64, len(strokes))
	for i, s := range strokes {
		ratings[i] = s.Rating
		speeds[i] = s.AvgBoatSpeed
	}
	out.AvgRating = RoundPtr(Mean(ratings), metricPlaces)
	out.AvgBoatSpeed = RoundPtr(Mean(speeds), timingPlaces)
	return out
}

// TrendPoint summarizes one seat of one piece for an athlete's history.
func TrendPoint(session model.Session, piece model.Piece, seat int, strokes []model.StrokeMetric) model.AthleteTrendPoint {
	summary, _ := SummarizeSeat(strokes, seat)
	return model.AthleteTrendPoint{
		SessionID:          session.ID,
		SessionName:        session.Name,
		SessionDate:        sessionDate(session),
		PieceID:            piece.ID,
		PieceName:          piece.Name,
		SeatPosition:       seat,
		AvgPower:           summary.Power,
		AvgStrokeLength:    summary.StrokeLength,
		AvgEffectiveLength: summary.EffectiveLength,
		AvgCatchSlip:       summary.CatchSlip,
		AvgFinishSlip:      summary.FinishSlip,
	}
}

func sessionDate(s model.Session) *string {
	if s.StartTime != nil && *s.StartTime != "" {
		return s.StartTime
	}
	return s.CreatedAt
}
