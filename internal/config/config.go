// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP server configuration (port, host, timeouts)
//     - Database: DuckDB venue/post/follow store
//     - History: Postgres conversation history store
//
//  2. Collaborators:
//     - Geocode: Geocoding service client, cache and circuit breaker
//     - Oracle: Ranking oracle (Gemini) client and circuit breaker
//
//  3. Pipeline:
//     - Social: BFS bounds for the follow graph
//     - Pipeline: Pool, scope and evidence limits
//     - Location: Names used by coarse location keywords
//
//  4. API & Security:
//     - Security: Bearer token authentication, CORS, rate limiting
//
//  5. Observability:
//     - Logging: Log levels and output formats
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	History  HistoryConfig  `koanf:"history"`
	Geocode  GeocodeConfig  `koanf:"geocode"`
	Oracle   OracleConfig   `koanf:"oracle"`
	Social   SocialConfig   `koanf:"social"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Location LocationConfig `koanf:"location"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
//   - ENVIRONMENT: development, staging, production
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds the DuckDB venue store settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedDemoData loads a small Tokyo data set into an empty store.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// HistoryConfig holds the Postgres conversation history settings.
// History is best-effort: when disabled or unreachable, requests still succeed.
type HistoryConfig struct {
	Enabled  bool          `koanf:"enabled"`
	DSN      string        `koanf:"dsn"`
	MaxConns int32         `koanf:"max_conns"`
	Timeout  time.Duration `koanf:"timeout"`
}

// BreakerConfig configures a circuit breaker guarding an upstream.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// GeocodeConfig holds geocoding service settings.
//
// Environment Variables:
//   - GEOCODE_API_KEY: API key for the Geocoding API
//   - GEOCODE_BASE_URL: endpoint override (tests, proxies)
//   - GEOCODE_LANGUAGE, GEOCODE_REGION: result localization hints
type GeocodeConfig struct {
	Enabled           bool          `koanf:"enabled"`
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Language          string        `koanf:"language"`
	Region            string        `koanf:"region"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheSize         int           `koanf:"cache_size"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	Breaker           BreakerConfig `koanf:"breaker"`
}

// OracleConfig holds ranking oracle settings.
//
// Environment Variables:
//   - ORACLE_API_KEY (or GEMINI_API_KEY): Gemini API key
//   - ORACLE_MODEL: model name (default: gemini-2.5-flash)
//   - ORACLE_TIMEOUT: per-call timeout (default: 20s)
type OracleConfig struct {
	Enabled           bool          `koanf:"enabled"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	Temperature       float32       `koanf:"temperature"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	HistoryTurns      int           `koanf:"history_turns"`
	TurnMaxChars      int           `koanf:"turn_max_chars"`
	Breaker           BreakerConfig `koanf:"breaker"`
}

// SocialConfig bounds the follow-graph traversal.
// Values outside the allowed ranges are clamped, not rejected.
type SocialConfig struct {
	MaxHops   int `koanf:"max_hops"`
	MaxNodes  int `koanf:"max_nodes"`
	BatchSize int `koanf:"batch_size"`
}

// PipelineConfig holds pool and scope limits.
type PipelineConfig struct {
	PoolSize       int           `koanf:"pool_size"`
	RelaxLimit     int           `koanf:"relax_limit"`
	PostsPerVenue  int           `koanf:"posts_per_venue"`
	CandidateLimit int           `koanf:"candidate_limit"`
	StoreTimeout   time.Duration `koanf:"store_timeout"`
}

// LocationConfig names the places that coarse keywords ("市内", "nationwide")
// resolve to.
type LocationConfig struct {
	HomeWard    string `koanf:"home_ward"`
	HomeCity    string `koanf:"home_city"`
	HomeRegion  string `koanf:"home_region"`
	HomeCountry string `koanf:"home_country"`
}

// SecurityConfig holds authentication and HTTP protection settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // jwt or none
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads the layered configuration: defaults, optional YAML file, then
// environment variables.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
