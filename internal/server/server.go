// Package server exposes the screener and the watchlist over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"contrarian-screener/internal/interfaces"
	"contrarian-screener/internal/logger"
)

// Config holds server configuration
type Config struct {
	Addr            string
	AllowedOrigins  []string
	Screener        interfaces.Screener
	Watchlist       interfaces.Watchlist // optional; watchlist routes answer 503 without it
	DefaultUniverse string
	Concurrency     int
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate

	screener        interfaces.Screener
	watchlist       interfaces.Watchlist
	defaultUniverse string
	concurrency     int
	startedAt       time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		validate:        validator.New(),
		screener:        cfg.Screener,
		watchlist:       cfg.Watchlist,
		defaultUniverse: cfg.DefaultUniverse,
		concurrency:     cfg.Concurrency,
		startedAt:       time.Now(),
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(loggingMiddleware)

	// Full universe screens are slow
	s.router.Use(middleware.Timeout(75 * time.Second))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleStatus)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/universes", s.handleUniverses)
		r.Get("/stock/{ticker}", s.handleStock)
		r.Get("/screen", s.handleScreen)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlistList)
			r.Post("/", s.handleWatchlistAdd)
			r.Delete("/{ticker}", s.handleWatchlistRemove)
		})
	})
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	logger.Info(context.Background(), "Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
