// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package main is the entry point for the Kuchikomi server.

Kuchikomi answers free-text venue questions ("渋谷 ラーメン") with a short,
ranked list of venues near the resolved place, weighted by what people the
requester follows have posted about them.

# Application Architecture

	RootSupervisor ("kuchikomi")
	├── DataSupervisor ("data-layer")
	│   └── StoreMonitorService (venue store, history store)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Initialization order:

 1. Configuration: koanf v2 defaults, optional config.yaml, environment
 2. Logging: zerolog via internal/logging
 3. Venue store: embedded DuckDB, optionally seeded with demo data
 4. History store: Postgres via pgx (optional, HISTORY_ENABLED)
 5. Geocoder: Google Geocoding client behind an LRU cache, limiter, breaker
 6. Ranking oracle: Gemini behind a limiter, timeout, breaker
 7. Pipeline: genre, location, scope, social graph, evidence, oracle, merge
 8. HTTP: chi router with auth, CORS, rate limiting, /metrics
 9. Supervisor tree: runs until SIGINT or SIGTERM

# Example Usage

Local development without credentials (demo data, no auth, fallbacks only):

	export AUTH_MODE=none
	export SEED_DEMO_DATA=true
	export GEOCODE_ENABLED=false
	export ORACLE_ENABLED=false
	./kuchikomi

Production:

	export JWT_SECRET=$(openssl rand -base64 32)
	export GEOCODE_API_KEY=...
	export ORACLE_API_KEY=...
	export HISTORY_ENABLED=true
	export HISTORY_DSN=postgres://kuchikomi@db:5432/kuchikomi
	./kuchikomi

Minting a development bearer token with the server's JWT_SECRET:

	./kuchikomi token demo-user
*/
package main
