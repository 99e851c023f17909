package model

// SeatValue returns the reading for a 1-based seat, or nil when the
// array is too short or the slot is empty.
func SeatValue(values []*float64, seat int) *float64 {
	idx := seat - 1
	if idx < 0 || idx >= len(values) {
		return nil
	}
	return values[idx]
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Floats builds a seat array from values, mapping nil entries to absent slots.
func Floats(values ...any) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case float64:
			out[i] = Float(n)
		case int:
			out[i] = Float(float64(n))
		}
	}
	return out
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
