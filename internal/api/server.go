// Package api exposes the grading service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joacominatel/sqlgrader/internal/config"
	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/logger"
)

// Grader is the subset of app.Service the HTTP layer needs.
type Grader interface {
	Evaluate(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) evaluation.EvaluationResult
	Databases() []database.Target
	HasDatabase(id int64) bool
	Ping(ctx context.Context) error
}

// NewRouter builds the HTTP handler tree.
func NewRouter(g Grader, cfg config.Server, log *logger.Logger) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, accessLog(log), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	h := &handlers{grader: g, log: log}

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/databases", h.listDatabases)
		r.Post("/evaluations", h.evaluate)
	})

	return r
}

// NewServer wraps the router in an http.Server listening on cfg.Addr.
func NewServer(g Grader, cfg config.Server, log *logger.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(g, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
