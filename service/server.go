// Package service exposes the solver as a small JSON-over-HTTP query
// surface. It owns input validation and the string form of actions; the
// engine never sees either.
package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"bjsolver/engine"
)

// Options tunes the server.
type Options struct {
	// RequestTimeout bounds a single query. Pathological rule and deck
	// combinations can make an unbounded recursion expensive, so the
	// boundary enforces its own limit. Default 30s.
	RequestTimeout time.Duration
}

// Server routes solver queries.
type Server struct {
	log    *logrus.Logger
	solver *engine.EVEngine
	router chi.Router
}

// New builds a Server around a shared solver instance.
func New(log *logrus.Logger, solver *engine.EVEngine, opts Options) *Server {
	if log == nil {
		log = logrus.New()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{log: log, solver: solver}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ev", s.handleEV)
		r.Post("/dealer-probs", s.handleDealerProbs)
		r.Post("/strategy", s.handleStrategy)
		r.Get("/cache", s.handleCacheSize)
		r.Delete("/cache", s.handleCacheClear)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
