// Package api serves read-only lookups over the season store plus health and metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handler routes. Time-series routes are only mounted
// when the handler has a deriver.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/seasons/{season}", func(r chi.Router) {
		r.Get("/{key}", h.GetMap)
		r.Get("/{reportType}/{table}", h.GetTable)
	})

	if h.deriver != nil {
		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/goals", h.GetGoals)
			r.Get("/boxscores", h.GetBoxScores)
		})
	}

	return r
}
