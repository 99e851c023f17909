// Package server exposes stored telemetry over the REST API the client
// consumes. It is a local replay backend: bundles uploaded to it are kept
// in SQLite and served back unchanged.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/arin-jaff/peach-data-tool/internal/logging"
	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/store"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

const maxUploadBytes = 64 << 20

// Store is the persistence the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	ImportBundle(ctx context.Context, b model.Bundle, name string) (model.UploadResult, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	GetSession(ctx context.Context, id string) (model.SessionDetail, error)
	RenameSession(ctx context.Context, id, name string) error
	DeleteSession(ctx context.Context, id string) error
	GetPiece(ctx context.Context, id string) (model.Piece, error)
	PieceAthletes(ctx context.Context, pieceID string) ([]model.Athlete, error)
	ListStrokes(ctx context.Context, pieceID string) ([]model.StrokeMetric, error)
	GetStroke(ctx context.Context, pieceID string, strokeNumber int) (model.StrokeMetric, error)
	PeriodicData(ctx context.Context, pieceID string) ([]model.PeriodicDataPoint, error)
	ListGlobalAthletes(ctx context.Context) ([]model.GlobalAthlete, error)
	GetGlobalAthlete(ctx context.Context, id string) (model.GlobalAthlete, error)
	UpdateGlobalAthlete(ctx context.Context, id string, u model.AthleteUpdate) (model.GlobalAthlete, error)
	AthleteSessions(ctx context.Context, globalID string) ([]model.AthleteSessionEntry, error)
	AthleteSeats(ctx context.Context, globalID string) ([]store.SeatRef, error)
}

// Options configures the HTTP handler.
type Options struct {
	CORSOrigins []string
	Logger      *logging.Logger
}

type server struct {
	store Store
	log   *logging.Logger
}

// New builds the API handler.
func New(st Store, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	s := &server{store: st, log: opts.Logger}

	r := mux.NewRouter()
	r.Use(requestLogger(opts.Logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/upload", s.upload).Methods(http.MethodPost)

	api.HandleFunc("/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.renameSession).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}", s.deleteSession).Methods(http.MethodDelete)

	api.HandleFunc("/pieces/{id}", s.getPiece).Methods(http.MethodGet)
	api.HandleFunc("/pieces/{id}/strokes", s.getStrokes).Methods(http.MethodGet)
	api.HandleFunc("/pieces/{id}/strokes/averages", s.getAverages).Methods(http.MethodGet)
	api.HandleFunc("/pieces/{id}/periodic", s.getPeriodic).Methods(http.MethodGet)
	api.HandleFunc("/pieces/{id}/stroke/{n:[0-9]+}/force-curve", s.getForceCurve).Methods(http.MethodGet)

	api.HandleFunc("/athletes", s.listAthletes).Methods(http.MethodGet)
	api.HandleFunc("/athletes/{id}", s.getAthlete).Methods(http.MethodGet)
	api.HandleFunc("/athletes/{id}", s.updateAthlete).Methods(http.MethodPatch)
	api.HandleFunc("/athletes/{id}/trends", s.getTrends).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Infof("[%s] %s %d %s", r.Method, r.RequestURI, rec.status, time.Since(start))
		})
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError uses the {"detail": ...} body the client expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *server) storeError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	s.log.Errorf("store error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
