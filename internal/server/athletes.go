package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/stats"
)

func (s *server) listAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.store.ListGlobalAthletes(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *server) getAthlete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	athlete, err := s.store.GetGlobalAthlete(ctx, id)
	if err != nil {
		s.storeError(w, err, "Athlete not found")
		return
	}
	sessions, err := s.store.AthleteSessions(ctx, id)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, model.GlobalAthleteDetail{GlobalAthlete: athlete, Sessions: sessions})
}

func (s *server) updateAthlete(w http.ResponseWriter, r *http.Request) {
	var u model.AthleteUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if u.Name != nil && *u.Name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	athlete, err := s.store.UpdateGlobalAthlete(r.Context(), mux.Vars(r)["id"], u)
	if err != nil {
		s.storeError(w, err, "Athlete not found")
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

func (s *server) getTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	athlete, err := s.store.GetGlobalAthlete(ctx, id)
	if err != nil {
		s.storeError(w, err, "Athlete not found")
		return
	}
	seats, err := s.store.AthleteSeats(ctx, id)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	points := make([]model.AthleteTrendPoint, 0, len(seats))
	for _, ref := range seats {
		strokes, err := s.store.ListStrokes(ctx, ref.Piece.ID)
		if err != nil {
			s.storeError(w, err, "")
			return
		}
		if len(strokes) == 0 {
			continue
		}
		points = append(points, stats.TrendPoint(ref.Session, ref.Piece, ref.Seat, strokes))
	}
	writeJSON(w, http.StatusOK, model.AthleteTrends{Athlete: athlete, DataPoints: points})
}
