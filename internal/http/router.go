package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studytracker/internal/log"
	"studytracker/internal/services"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(tracker *services.Tracker, logger *log.Logger) *chi.Mux {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}
	r := chi.NewRouter()

	r.Use(log.Middleware(logger.WithComponent(log.ComponentHTTP)))
	r.Use(Recovery)
	r.Use(SecurityHeaders)

	h := NewHandler(tracker)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/courses", h.Courses)
		r.Get("/weeks", h.Weeks)
		r.Get("/snapshot", h.Snapshot)
		r.Post("/entries", h.CreateEntry)
	})

	return r
}
