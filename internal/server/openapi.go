package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/campusquiz/internal/handler/health"
	"github.com/playperu/campusquiz/internal/quiz"
)

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type createSessionQuery struct {
	Start bool `query:"start" description:"Reset the new session immediately."`
}

type guessInput struct {
	sessionPath
	GuessRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Campus Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the campus building quiz.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the best-time backend.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/config
	getConfig, _ := r.NewOperationContext(http.MethodGet, "/api/config")
	getConfig.SetSummary("Map configuration")
	getConfig.SetDescription("Initial map view and number of questions per round.")
	getConfig.AddRespStructure(ConfigResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getConfig)

	// GET /api/best
	getBest, _ := r.NewOperationContext(http.MethodGet, "/api/best")
	getBest.SetSummary("Best time")
	getBest.SetDescription("Fastest completed round. bestSeconds is null until a round has finished.")
	getBest.AddRespStructure(BestResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBest)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Create session")
	postSession.SetDescription("Creates an independent quiz. The quiz is idle until reset unless start=true.")
	postSession.AddReqStructure(createSessionQuery{})
	postSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postSession)

	// GET /api/sessions/{sessionID}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	getSession.SetSummary("Get session")
	getSession.SetDescription("Returns the quiz snapshot and current best time.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// DELETE /api/sessions/{sessionID}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	deleteSession.SetSummary("Delete session")
	deleteSession.SetDescription("Stops the session's timer and forgets it.")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// POST /api/sessions/{sessionID}/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/reset")
	postReset.SetSummary("Start a round")
	postReset.SetDescription("Starts a new round from any state, discarding the previous one.")
	postReset.AddReqStructure(sessionPath{})
	postReset.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postReset)

	// POST /api/sessions/{sessionID}/guess
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/guess")
	postGuess.SetSummary("Submit a guess")
	postGuess.SetDescription("Scores a coordinate against the current building. The last guess of a round includes the summary.")
	postGuess.AddReqStructure(guessInput{})
	postGuess.AddRespStructure(quiz.Outcome{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postGuess)

	// GET /api/sessions/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/events")
	getEvents.SetSummary("Event stream")
	getEvents.SetDescription("Server-sent events carrying question, answer, tick and finished events.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(Event{}, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{sessionID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/ws")
	getWS.SetSummary("WebSocket")
	getWS.SetDescription("Accepts guess and reset messages and streams the same events as /events.")
	getWS.AddReqStructure(sessionPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
