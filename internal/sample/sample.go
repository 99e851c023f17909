// Package sample generates a synthetic rowing session for demos and tests.
package sample

import (
	"math"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/stats"
)

const (
	strokeIntervalMs = 2000
	samplesPerStroke = 20
)

var crewNames = []string{"Ada Lane", "Ben Ortiz", "Cal Moore", "Dev Shah", "Eli Park", "Fay Grant", "Gus Bell", "Hana Ito"}

// Options shapes a generated bundle.
type Options struct {
	Name    string
	Seats   int
	Pieces  int
	Strokes int
}

// Bundle returns a deterministic bundle. The last seat has no power
// sensor, so its power readings are absent.
func Bundle(opts Options) model.Bundle {
	if opts.Name == "" {
		opts.Name = "Demo Outing"
	}
	if opts.Seats <= 0 || opts.Seats > len(crewNames) {
		opts.Seats = 4
	}
	if opts.Pieces <= 0 {
		opts.Pieces = 2
	}
	if opts.Strokes <= 0 {
		opts.Strokes = 12
	}
	b := model.Bundle{
		Name:         opts.Name,
		Filename:     model.String("demo.csv"),
		SerialNumber: model.String("PEACH-0001"),
		StartTime:    model.String("2024-05-01T07:00:00Z"),
		BoatName:     model.String("Demo"),
		BoatSeats:    opts.Seats,
	}
	for seat := 1; seat <= opts.Seats; seat++ {
		side := "Bow"
		if seat%2 == 0 {
			side = "Stroke"
		}
		b.Athletes = append(b.Athletes, model.BundleAthlete{SeatPosition: seat, Name: crewNames[seat-1], Side: model.String(side)})
	}
	var offset int64
	for p := 1; p <= opts.Pieces; p++ {
		piece := model.BundlePiece{
			PieceNumber: p,
			Name:        model.String(pieceName(p)),
			StartTimeMs: int64Ptr(offset),
			EndTimeMs:   int64Ptr(offset + int64(opts.Strokes*strokeIntervalMs)),
			AvgRating:   model.Float(30 + float64(p)),
		}
		for i := 0; i < opts.Strokes; i++ {
			piece.Strokes = append(piece.Strokes, stroke(opts.Seats, p, i, offset))
			piece.Periodic = append(piece.Periodic, periodic(opts.Seats, i, offset)...)
		}
		b.Pieces = append(b.Pieces, piece)
		offset += int64(opts.Strokes*strokeIntervalMs) + 60000
	}
	return b
}

func pieceName(n int) string {
	names := []string{"Warmup", "2k", "Cooldown"}
	if n-1 < len(names) {
		return names[n-1]
	}
	return "Piece"
}

func int64Ptr(v int64) *int64 { return &v }

func stroke(seats, piece, i int, offset int64) model.StrokeMetric {
	wave := math.Sin(float64(i) / 3)
	st := model.StrokeMetric{
		StrokeNumber:      i + 1,
		TimeMs:            offset + int64(i*strokeIntervalMs) + 1000,
		Rating:            model.Float(stats.Round(30+float64(piece)+wave, 1)),
		AvgBoatSpeed:      model.Float(stats.Round(4.5+0.2*wave, 2)),
		DistancePerStroke: model.Float(stats.Round(9+0.3*wave, 2)),
	}
	var total float64
	for seat := 1; seat <= seats; seat++ {
		base := float64(seat) * 5
		var power *float64
		if seat < seats {
			power = model.Float(stats.Round(200+base+10*wave, 1))
			total += *power
		}
		st.SwivelPower = append(st.SwivelPower, power)
		st.MinAngle = append(st.MinAngle, model.Float(stats.Round(-55-base/5+wave, 1)))
		st.MaxAngle = append(st.MaxAngle, model.Float(stats.Round(35+base/10-wave, 1)))
		st.CatchSlip = append(st.CatchSlip, model.Float(stats.Round(-3-wave/2, 1)))
		st.FinishSlip = append(st.FinishSlip, model.Float(stats.Round(2+wave/2, 1)))
		st.DriveTime = append(st.DriveTime, model.Float(stats.Round(0.8+0.02*wave, 3)))
		st.RecoveryTime = append(st.RecoveryTime, model.Float(stats.Round(1.2-0.02*wave, 3)))
	}
	if seats > 1 {
		st.AveragePower = model.Float(stats.Round(total/float64(seats-1), 1))
	}
	return st
}

func periodic(seats, i int, offset int64) []model.PeriodicDataPoint {
	out := make([]model.PeriodicDataPoint, 0, samplesPerStroke)
	start := offset + int64(i*strokeIntervalMs)
	for k := 0; k < samplesPerStroke; k++ {
		norm := float64(k) / float64(samplesPerStroke)
		pt := model.PeriodicDataPoint{
			TimeMs:         start + int64(k*strokeIntervalMs/samplesPerStroke),
			NormalizedTime: model.Float(stats.Round(norm, 3)),
			Speed:          model.Float(stats.Round(4.5+0.5*math.Sin(2*math.Pi*norm), 3)),
		}
		for seat := 1; seat <= seats; seat++ {
			force := 0.0
			if norm < 0.5 {
				force = (600 + float64(seat)*10) * math.Sin(2*math.Pi*norm)
			}
			pt.GateForceX = append(pt.GateForceX, model.Float(stats.Round(force, 1)))
			pt.GateAngle = append(pt.GateAngle, model.Float(stats.Round(-55+90*norm, 1)))
		}
		out = append(out, pt)
	}
	return out
}
