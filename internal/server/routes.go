package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/campusquiz/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Campus Quiz API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	r.Get("/api/config", handleConfig(deps.Sessions))
	r.Get("/api/best", handleBest(deps.Best))
	r.Post("/api/sessions", handleCreateSession(deps.Sessions, deps.Best))

	// Per-session routes; {sessionID} is resolved by sessionMiddleware.
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Sessions))
		r.Get("/", handleGetSession(deps.Best))
		r.Delete("/", handleDeleteSession(deps.Sessions))
		r.Post("/reset", handleReset(deps.Best))
		r.Post("/guess", handleGuess())
		r.Get("/events", handleEvents(deps.Broker, deps.PingInterval))
		r.Get("/ws", handleWS(logger, deps.Broker))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
