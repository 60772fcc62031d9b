// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/kuchikomi/internal/middleware"
)

// Authenticator wraps handlers that require a requester.
type Authenticator interface {
	Authenticate(next http.Handler) http.Handler
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Middleware *ChiMiddleware

	// SlowRequestThreshold is passed to middleware.AccessLog.
	SlowRequestThreshold time.Duration
}

// NewRouter wires every route.
//
//	GET  /metrics
//	GET  /api/v1/health
//	POST /api/v1/recommend       (authenticated)
//	GET  /api/v1/threads/{id}    (authenticated)
func NewRouter(h *Handler, authn Authenticator, opts RouterOptions) http.Handler {
	mw := opts.Middleware
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(opts.SlowRequestThreshold))
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))
		r.Use(authn.Authenticate)

		r.Post("/api/v1/recommend", h.Recommend)
		r.Get("/api/v1/threads/{id}", h.Thread)
	})

	return r
}
