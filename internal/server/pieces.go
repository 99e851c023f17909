package server

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/stats"
)

// forceCurveWindowMs is how far from a stroke's timestamp samples are
// considered part of its cycle.
const forceCurveWindowMs = 2000

func (s *server) getPiece(w http.ResponseWriter, r *http.Request) {
	piece, err := s.store.GetPiece(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, err, "Piece not found")
		return
	}
	writeJSON(w, http.StatusOK, piece)
}

func (s *server) getStrokes(w http.ResponseWriter, r *http.Request) {
	strokes, err := s.store.ListStrokes(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, strokes)
}

func (s *server) getAverages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	piece, err := s.store.GetPiece(ctx, id)
	if err != nil {
		s.storeError(w, err, "Piece not found")
		return
	}
	athletes, err := s.store.PieceAthletes(ctx, id)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	strokes, err := s.store.ListStrokes(ctx, id)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	if len(strokes) == 0 {
		writeError(w, http.StatusNotFound, "No stroke data found")
		return
	}
	writeJSON(w, http.StatusOK, stats.PieceAverages(piece, athletes, strokes))
}

func (s *server) getPeriodic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q, err := parsePeriodicQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := s.store.PeriodicData(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Periodic data not found")
		return
	}
	data := FilterPeriodic(points, q)
	writeJSON(w, http.StatusOK, model.PeriodicPage{PieceID: id, TotalPoints: len(data), Data: data})
}

func parsePeriodicQuery(r *http.Request) (model.PeriodicQuery, error) {
	var q model.PeriodicQuery
	values := r.URL.Query()
	for key, dst := range map[string]**int64{"stroke_start": &q.StrokeStart, "stroke_end": &q.StrokeEnd} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, &paramError{name: key}
		}
		*dst = &v
	}
	q.Downsample = 1
	if raw := values.Get("downsample"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, &paramError{name: "downsample"}
		}
		q.Downsample = n
	}
	return q, nil
}

type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "invalid " + e.name
}

// FilterPeriodic keeps samples whose time_ms falls inside the query's
// inclusive window, then keeps every Nth sample.
func FilterPeriodic(points []model.PeriodicDataPoint, q model.PeriodicQuery) []model.PeriodicDataPoint {
	out := make([]model.PeriodicDataPoint, 0, len(points))
	for _, p := range points {
		if q.StrokeStart != nil && p.TimeMs < *q.StrokeStart {
			continue
		}
		if q.StrokeEnd != nil && p.TimeMs > *q.StrokeEnd {
			continue
		}
		out = append(out, p)
	}
	if q.Downsample <= 1 {
		return out
	}
	sampled := make([]model.PeriodicDataPoint, 0, len(out)/q.Downsample+1)
	for i := 0; i < len(out); i += q.Downsample {
		sampled = append(sampled, out[i])
	}
	return sampled
}

func (s *server) getForceCurve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]
	n, err := strconv.Atoi(vars["n"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid stroke number")
		return
	}
	stroke, err := s.store.GetStroke(ctx, id, n)
	if err != nil {
		s.storeError(w, err, "Stroke not found")
		return
	}
	points, err := s.store.PeriodicData(ctx, id)
	if err != nil {
		s.storeError(w, err, "Periodic data not found")
		return
	}
	data := StrokeWindow(points, stroke.TimeMs)
	writeJSON(w, http.StatusOK, model.ForceCurve{
		StrokeNumber: n,
		StrokeTimeMs: stroke.TimeMs,
		DataPoints:   len(data),
		Data:         data,
	})
}

// StrokeWindow returns the samples near a stroke's timestamp ordered by
// normalized time. Samples without one sort as zero; ties keep time order.
func StrokeWindow(points []model.PeriodicDataPoint, strokeTimeMs int64) []model.PeriodicDataPoint {
	out := make([]model.PeriodicDataPoint, 0, 64)
	for _, p := range points {
		d := p.TimeMs - strokeTimeMs
		if d < 0 {
			d = -d
		}
		if d < forceCurveWindowMs {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return normalized(out[i]) < normalized(out[j])
	})
	return out
}

func normalized(p model.PeriodicDataPoint) float64 {
	if p.NormalizedTime == nil {
		return 0
	}
	return *p.NormalizedTime
}
