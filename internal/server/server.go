package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/repwise/internal/advisor"
	"github.com/claude/repwise/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	advisor *advisor.Advisor
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, adv *advisor.Advisor, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		advisor: adv,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/weeks/process", s.handleProcessWeek)
		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Post("/api/v1/sessions/{id}/result", s.handleSessionResult)
	})

	// Read endpoints
	s.router.Get("/api/v1/weeks", s.handleListWeeks)
	s.router.Get("/api/v1/weeks/{week}", s.handleGetWeek)
	s.router.Get("/api/v1/plan/current", s.handleCurrentPlan)
	s.router.Get("/api/v1/scoring", s.handleScoringHistory)
	s.router.Get("/api/v1/stats/progress", s.handleProgressStats)
}
