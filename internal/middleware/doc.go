// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package middleware provides HTTP middleware for the recommendation API.

Middleware, outermost first:

  - RequestID: reuses or generates X-Request-ID and stores it in the
    context so every logging.Ctx line carries request_id
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds,
    and api_active_requests, labelled with the chi route pattern
  - AccessLog: one structured line per request; slow requests at warn,
    5xx at error

All middleware has the func(http.Handler) http.Handler shape and composes
with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(cfg.SlowRequestThreshold))
*/
package middleware
