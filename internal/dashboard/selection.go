package dashboard

import "sort"

// DefaultSeats is the seat range of an eight.
const DefaultSeats = 8

// Selection is the set of athletes shown in per-seat charts plus the
// crew-average toggle. Seats are not validated against a roster.
type Selection struct {
	seats    int
	selected map[int]struct{}
	crewAvg  bool
}

// NewSelection selects every seat in 1..seats with crew average on.
func NewSelection(seats int) Selection {
	if seats <= 0 {
		seats = DefaultSeats
	}
	s := Selection{seats: seats, crewAvg: true}
	s.SelectAll()
	return s
}

// Selected reports whether a seat is selected.
func (s *Selection) Selected(seat int) bool {
	_, ok := s.selected[seat]
	return ok
}

// ShowCrewAverage reports the crew-average toggle.
func (s *Selection) ShowCrewAverage() bool {
	return s.crewAvg
}

// SeatCount returns the size of the known seat range.
func (s *Selection) SeatCount() int {
	return s.seats
}

// Seats returns the selected seats in ascending order.
func (s *Selection) Seats() []int {
	out := make([]int, 0, len(s.selected))
	for seat := range s.selected {
		out = append(out, seat)
	}
	sort.Ints(out)
	return out
}

// ToggleAthlete flips membership of a seat.
func (s *Selection) ToggleAthlete(seat int) {
	if s.selected == nil {
		s.selected = map[int]struct{}{}
	}
	if _, ok := s.selected[seat]; ok {
		delete(s.selected, seat)
		return
	}
	s.selected[seat] = struct{}{}
}

// SelectAll selects the full known seat range.
func (s *Selection) SelectAll() {
	s.selected = make(map[int]struct{}, s.seats)
	for seat := 1; seat <= s.seats; seat++ {
		s.selected[seat] = struct{}{}
	}
}

// DeselectAll clears the selection.
func (s *Selection) DeselectAll() {
	s.selected = map[int]struct{}{}
}

// ToggleCrewAverage flips the crew-average toggle.
func (s *Selection) ToggleCrewAverage() {
	s.crewAvg = !s.crewAvg
}
