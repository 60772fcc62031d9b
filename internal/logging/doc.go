// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package logging provides the zerolog-based structured logging used by
// every Kuchikomi component.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Ranking oracle failed")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Request Context
//
// The HTTP middleware stores the request id, and the auth middleware the
// requester id, in the request context. Ctx(ctx) returns a logger that
// carries both, so stage logs inside a pipeline run can be joined with the
// access log.
//
// # Components
//
// Long-lived components derive a child logger once:
//
//	logger := logging.With().Str("component", "location").Logger()
//
// # slog
//
// NewSlogLogger adapts the global logger to log/slog for libraries that
// require it, such as the suture supervisor event hook.
//
// Always terminate chains with Msg or Send; an unterminated event is
// never written.
package logging
