package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

func (s *server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *server) renameSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.store.RenameSession(r.Context(), id, strings.TrimSpace(*body.Name)); err != nil {
		s.storeError(w, err, "Session not found")
		return
	}
	detail, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.storeError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// upload accepts a multipart "file" holding a JSON session bundle and an
// optional "session_name" field.
func (s *server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	bundle, err := decodeBundle(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if bundle.Filename == nil && header.Filename != "" {
		bundle.Filename = model.String(header.Filename)
	}
	name := r.FormValue("session_name")
	if name == "" {
		name = r.URL.Query().Get("session_name")
	}
	res, err := s.store.ImportBundle(r.Context(), bundle, name)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.log.Infof("imported session %s (%d pieces, %d strokes)", res.SessionID, res.PiecesCreated, res.StrokeCount)
	writeJSON(w, http.StatusOK, res)
}

func decodeBundle(r io.Reader) (model.Bundle, error) {
	var b model.Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return model.Bundle{}, fmt.Errorf("file must be a JSON session bundle: %v", err)
	}
	seen := map[int]bool{}
	for _, a := range b.Athletes {
		if a.SeatPosition <= 0 {
			return model.Bundle{}, fmt.Errorf("athlete %q has invalid seat %d", a.Name, a.SeatPosition)
		}
		if seen[a.SeatPosition] {
			return model.Bundle{}, fmt.Errorf("seat %d listed twice", a.SeatPosition)
		}
		seen[a.SeatPosition] = true
	}
	return b, nil
}
