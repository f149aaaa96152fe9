package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/paperdigest/internal/arxiv"
	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/jobs"
	"github.com/dgallion1/paperdigest/internal/stats"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

// Searcher finds papers for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, error)
}

// JobQueue accepts asynchronous summarization jobs.
type JobQueue interface {
	Submit(req jobs.Request) (*jobs.Job, error)
	GetJob(id string) *jobs.Job
	QueueDepth() int
}

// Deps are the collaborators the handlers call into. Jobs and Stats may be
// nil.
type Deps struct {
	Searcher   Searcher
	Extractor  jobs.TextExtractor
	Summarizer *summarize.Summarizer
	Jobs       JobQueue
	Stats      *stats.Registry
}

// Server is the HTTP API server for paperdigest.
type Server struct {
	router     chi.Router
	search     Searcher
	extractor  jobs.TextExtractor
	summarizer *summarize.Summarizer
	jobs       JobQueue
	stats      *stats.Registry
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if deps.Summarizer == nil {
		deps.Summarizer = summarize.New(nil)
	}
	if deps.Stats == nil {
		deps.Stats = stats.NewRegistry(cfg.StatsWindow)
	}
	s := &Server{
		search:     deps.Searcher,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		jobs:       deps.Jobs,
		stats:      deps.Stats,
		log:        log.With("component", "api"),
		cfg:        cfg,
	}
	s.stats.For("summarize")
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
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		r.Use(BodyLimit(s.cfg.MaxRequestBytes))

		r.Get("/api/search", s.handleSearch)
		r.Post("/api/summarize", s.handleSummarize)
		r.Post("/api/summarize_url", s.handleSummarizeURL)
		r.Post("/api/jobs/summarize_url", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats", s.handleStats)
	})

	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
