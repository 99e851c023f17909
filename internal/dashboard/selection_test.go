package dashboard

import (
	"reflect"
	"testing"
)

func TestNewSelectionSelectsAllSeats(t *testing.T) {
	s := NewSelection(0)
	if got := s.Seats(); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("unexpected default seats: %v", got)
	}
	if !s.ShowCrewAverage() {
		t.Fatalf("expected crew average on by default")
	}
}

func TestToggleAthleteOnlyAffectsThatSeat(t *testing.T) {
	s := NewSelection(4)
	s.ToggleAthlete(2)
	if s.Selected(2) {
		t.Fatalf("expected seat 2 deselected")
	}
	if got := s.Seats(); !reflect.DeepEqual(got, []int{1, 3, 4}) {
		t.Fatalf("unexpected seats: %v", got)
	}
	s.ToggleAthlete(2)
	if !s.Selected(2) {
		t.Fatalf("expected seat 2 selected again")
	}
	if !s.ShowCrewAverage() {
		t.Fatalf("crew average toggle must not change")
	}
}

func TestSelectAllAndDeselectAll(t *testing.T) {
	s := NewSelection(2)
	s.DeselectAll()
	if len(s.Seats()) != 0 {
		t.Fatalf("expected empty selection")
	}
	s.ToggleAthlete(9)
	if !s.Selected(9) {
		t.Fatalf("expected seat outside the range to be accepted")
	}
	s.SelectAll()
	if got := s.Seats(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("unexpected seats after SelectAll: %v", got)
	}
}

func TestToggleCrewAverage(t *testing.T) {
	s := NewSelection(8)
	s.ToggleCrewAverage()
	if s.ShowCrewAverage() {
		t.Fatalf("expected crew average off")
	}
	s.ToggleCrewAverage()
	if !s.ShowCrewAverage() {
		t.Fatalf("expected crew average on")
	}
}
