package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ideaforge/internal/core"
	"ideaforge/internal/knowledge"
)

// Records is the read side of the idea store.
type Records interface {
	List() ([]core.Record, error)
	ListRejected() ([]core.Record, error)
	Find(fp string) (core.Record, error)
}

// Snapshots loads the latest knowledge snapshot.
type Snapshots interface {
	Load() (knowledge.Snapshot, error)
}

// Config holds HTTP server settings
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// Server serves stored ideas as JSON and as rendered pages
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	records    Records
	knowledge  Snapshots
	config     Config
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(records Records, kb Snapshots, cfg Config, log *slog.Logger) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		router:    chi.NewRouter(),
		records:   records,
		knowledge: kb,
		config:    cfg,
		log:       log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(securityHeaders)

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", s.handleListIdeas)
			r.Get("/{fingerprint}", s.handleGetIdea)
		})
		r.Get("/knowledge", s.handleKnowledge)
	})

	s.router.Get("/", s.handleDashboardPage)
	s.router.Get("/ideas/{slug}", s.handleLandingPage)
	s.router.Get("/ideas/{slug}/", s.handleLandingPage)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
