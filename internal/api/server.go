package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/job-feed/internal/model"
)

const maxBodyBytes = 1 << 20

// JobsFetcher serves a job request and reports whether the response came
// from cache.
type JobsFetcher interface {
	Fetch(ctx context.Context, params model.FetchJobsParams) (model.JobsResponse, bool, error)
}

type Options struct {
	// Development adds stack traces to 500 responses.
	Development bool
	CORSOrigins []string
	Logger      *slog.Logger
}

type Server struct {
	router *chi.Mux
	jobs   JobsFetcher
	dev    bool
	logger *slog.Logger
}

func NewServer(jobs JobsFetcher, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		router: chi.NewRouter(),
		jobs:   jobs,
		dev:    opts.Development,
		logger: opts.Logger,
	}

	s.setupRoutes(opts.CORSOrigins)
	return s
}

func (s *Server) setupRoutes(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(s.recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Cache"},
	}))
	s.router.Use(middleware.Compress(5))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/jobs", s.handleFetchJobs)
		r.Get("/stats", s.handleStats)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("server is running"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondMessage is used for client errors, which carry "message" rather
// than "error".
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
