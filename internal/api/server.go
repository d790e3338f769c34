// Package api exposes the generation core over HTTP. Handlers are thin
// glue: validation, service call, JSON response.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/settings"
)

// Server represents the API server.
type Server struct {
	generator *generation.Service
	prompts   *prompts.Service
	settings  *settings.Service
	router    *chi.Mux
}

// NewServer creates a new API server.
func NewServer(generator *generation.Service, promptSvc *prompts.Service, settingsSvc *settings.Service) *Server {
	s := &Server{
		generator: generator,
		prompts:   promptSvc,
		settings:  settingsSvc,
		router:    chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Post("/source", s.findSource)
		r.Post("/explain", s.explain)
		r.Post("/analyze", s.analyze)

		r.Route("/prompts/{useCase}", func(r chi.Router) {
			r.Get("/", s.getPrompt)
			r.Put("/", s.savePrompt)
			r.Get("/history", s.promptHistory)
			r.Get("/audit", s.promptAudit)
			r.Post("/rollback", s.rollbackPrompt)
		})

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.updateSettings)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
