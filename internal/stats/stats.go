// Package stats contains null-safe aggregation over stroke telemetry.
//
// Absent readings are nil pointers. They are skipped by every aggregate
// and an aggregate with no present input is itself nil, never zero.
package stats

import (
	"math"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

// Mean returns the arithmetic mean of the present values, or nil when
// every value is absent.
func Mean(values []*float64) *float64 {
	var sum float64
	count := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

func meanOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	return &mean
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundPtr rounds a present value and passes nil through.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// StrokeLength is the arc between catch and finish angles for a seat.
func StrokeLength(s model.StrokeMetric, seat int) *float64 {
	minAngle := model.SeatValue(s.MinAngle, seat)
	maxAngle := model.SeatValue(s.MaxAngle, seat)
	if minAngle == nil || maxAngle == nil {
		return nil
	}
	length := *maxAngle - *minAngle
	return &length
}

// EffectiveLength is the stroke length minus the magnitude of both slips.
// It needs both angles; a missing slip counts as no slip.
func EffectiveLength(s model.StrokeMetric, seat int) *float64 {
	length := StrokeLength(s, seat)
	if length == nil {
		return nil
	}
	eff := *length - absOrZero(model.SeatValue(s.CatchSlip, seat)) - absOrZero(model.SeatValue(s.FinishSlip, seat))
	return &eff
}

func absOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return math.Abs(*v)
}
