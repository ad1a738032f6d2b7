package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/cvgest/internal/config"
	"github.com/dgallion1/cvgest/internal/jobposting"
	"github.com/dgallion1/cvgest/internal/pipeline"
	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/store"
)

// ResumeRepository reads and deletes stored résumés.
type ResumeRepository interface {
	ListResumes(ctx context.Context, userID string) ([]store.Record, error)
	GetResume(ctx context.Context, userID, docID string) (*store.Record, error)
	DeleteResume(ctx context.Context, userID, docID string) error
}

// Server is the HTTP API server for cvgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	refiner      *refine.Refiner
	resumes      ResumeRepository
	fetcher      *jobposting.Fetcher
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. refiner and resumes may
// be nil; the endpoints that need them answer 503.
func NewServer(orch *pipeline.Orchestrator, refiner *refine.Refiner, resumes ResumeRepository, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		refiner:      refiner,
		resumes:      resumes,
		fetcher:      jobposting.NewFetcher(cfg.JobFetchTimeout),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		r.Use(middleware.Timeout(3 * time.Minute))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/render", s.handleRender)
		r.Post("/api/cover-letter", s.handleCoverLetter)

		r.Post("/api/resumes", s.handleUpload)
		r.Get("/api/resumes/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/resumes", s.handleListResumes)
		r.Get("/api/resumes/{docID}", s.handleGetResume)
		r.Delete("/api/resumes/{docID}", s.handleDeleteResume)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
		"llm":         s.refiner != nil,
		"storage":     s.resumes != nil,
	})
}
