package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/campusquiz/internal/besttime"
	"github.com/playperu/campusquiz/internal/geo"
	"github.com/playperu/campusquiz/internal/quiz"
)

type SessionResponse struct {
	ID   string        `json:"id"`
	Quiz quiz.Snapshot `json:"quiz"`
	Best BestResponse  `json:"best"`
}

type GuessRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func sessionResponse(r *http.Request, s *Session, best *besttime.Record) SessionResponse {
	return SessionResponse{
		ID:   s.ID,
		Quiz: s.Quiz.Snapshot(),
		Best: bestResponse(r, best),
	}
}

func handleCreateSession(sessions *Registry, best *besttime.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessions.Create()
		if r.URL.Query().Get("start") == "true" {
			s.Quiz.Reset()
		}
		writeJSON(w, http.StatusCreated, sessionResponse(r, s, best))
	}
}

func handleGetSession(best *besttime.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse(r, sessionFrom(r), best))
	}
}

func handleDeleteSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := sessions.Delete(chi.URLParam(r, "sessionID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReset(best *besttime.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		s.Quiz.Reset()
		writeJSON(w, http.StatusOK, sessionResponse(r, s, best))
	}
}

func handleGuess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Lat == nil || req.Lng == nil {
			writeError(w, http.StatusBadRequest, "lat and lng are required")
			return
		}

		out, ok := sessionFrom(r).Quiz.SubmitGuess(r.Context(), geo.Point{Lat: *req.Lat, Lng: *req.Lng})
		if !ok {
			writeError(w, http.StatusConflict, "round is not running")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
