package server

import (
	"net/http"

	"github.com/playperu/campusquiz/internal/besttime"
	"github.com/playperu/campusquiz/internal/campusquiz"
	"github.com/playperu/campusquiz/internal/timer"
)

// ConfigResponse tells the browser how to set up the map. Building names and
// bounds are only revealed through question and answer events.
type ConfigResponse struct {
	View           campusquiz.MapView `json:"view"`
	TotalQuestions int                `json:"totalQuestions"`
	TickIntervalMS int64              `json:"tickIntervalMs"`
}

type BestResponse struct {
	BestSeconds *int   `json:"bestSeconds"`
	Formatted   string `json:"formatted,omitempty"`
}

func handleConfig(sessions *Registry) http.HandlerFunc {
	resp := ConfigResponse{
		View:           campusquiz.View,
		TotalQuestions: len(sessions.opts.Locations),
		TickIntervalMS: sessions.opts.TickInterval.Milliseconds(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleBest(best *besttime.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bestResponse(r, best))
	}
}

func bestResponse(r *http.Request, best *besttime.Record) BestResponse {
	seconds, ok := best.Get(r.Context())
	if !ok {
		return BestResponse{}
	}
	return BestResponse{BestSeconds: &seconds, Formatted: timer.Format(seconds)}
}
