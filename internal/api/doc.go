// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package api serves the recommendation HTTP API.

Endpoints:

  - POST /api/v1/recommend: runs the pipeline for the authenticated
    requester. Body: {query, maxResults?, threadId?, candidates?}.
  - GET /api/v1/threads/{id}?limit=n: the requester's recent turns in a
    conversation thread, oldest first.
  - GET /api/v1/health: venue store and history store pings plus the
    geocode and oracle breaker states.
  - GET /metrics: Prometheus exposition.

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "metadata": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}, "metadata": {...}}

Error codes map from package errors at this boundary:

  - validation failures: 400 VALIDATION_ERROR
  - auth.ErrNoCredentials, auth.ErrInvalidToken: 401 UNAUTHORIZED
  - pipeline.ErrDataStore: 500 DATA_STORE_ERROR
  - httprate rejections: 429 RATE_LIMIT_EXCEEDED

Upstream geocoder and oracle failures never reach this layer; the pipeline
falls back around them and reports it in meta.fallback and meta.trace.
*/
package api
