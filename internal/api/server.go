// Package api exposes the frame search over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solleo1989/framefinder/internal/scan"
	"github.com/solleo1989/framefinder/internal/store"
)

// Server handles HTTP requests. The store is optional; without one, scans
// still run but nothing is persisted.
type Server struct {
	db        store.DB
	scanner   *scan.Scanner
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server.
func NewServer(db store.DB) *Server {
	return &Server{
		db:        db,
		scanner:   scan.NewScanner(),
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/methods", s.handleListMethods)
		r.Post("/frames", s.handleFind)
		r.Post("/scan", s.handleScan)
		r.Get("/searches", s.handleListSearches)
		r.Get("/searches/{id}", s.handleGetSearch)
		r.Get("/searches/{id}/frames", s.handleSearchFrames)
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]any) {
	s.writeJSON(w, status, EngineError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
