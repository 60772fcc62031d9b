// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kuchikomi/config.yaml",
	"/etc/kuchikomi/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultBreaker() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/kuchikomi.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		History: HistoryConfig{
			Enabled:  false,
			DSN:      "",
			MaxConns: 8,
			Timeout:  5 * time.Second,
		},
		Geocode: GeocodeConfig{
			Enabled:           true,
			BaseURL:           "https://maps.googleapis.com/maps/api/geocode/json",
			Language:          "ja",
			Region:            "jp",
			Timeout:           10 * time.Second,
			CacheSize:         4096,
			RequestsPerSecond: 20,
			Burst:             5,
			Breaker:           defaultBreaker(),
		},
		Oracle: OracleConfig{
			Enabled:           true,
			Model:             "gemini-2.5-flash",
			Timeout:           20 * time.Second,
			Temperature:       0.2,
			RequestsPerSecond: 1,
			Burst:             2,
			HistoryTurns:      6,
			TurnMaxChars:      400,
			Breaker:           defaultBreaker(),
		},
		Social: SocialConfig{
			MaxHops:   3,
			MaxNodes:  3000,
			BatchSize: 1000,
		},
		Pipeline: PipelineConfig{
			PoolSize:       30,
			RelaxLimit:     80,
			PostsPerVenue:  20,
			CandidateLimit: 5000,
			StoreTimeout:   10 * time.Second,
		},
		Location: LocationConfig{
			HomeWard:    "渋谷区",
			HomeCity:    "東京都区部",
			HomeRegion:  "関東地方",
			HomeCountry: "日本",
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTIssuer:       "kuchikomi",
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// GEOCODE_API_KEY -> geocode.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML values are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// DuckDB venue store
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Postgres history store
	"history_enabled":   "history.enabled",
	"history_dsn":       "history.dsn",
	"database_url":      "history.dsn",
	"history_max_conns": "history.max_conns",
	"history_timeout":   "history.timeout",

	// Geocoder
	"geocode_enabled":               "geocode.enabled",
	"geocode_api_key":               "geocode.api_key",
	"google_maps_api_key":           "geocode.api_key",
	"geocode_base_url":              "geocode.base_url",
	"geocode_language":              "geocode.language",
	"geocode_region":                "geocode.region",
	"geocode_timeout":               "geocode.timeout",
	"geocode_cache_size":            "geocode.cache_size",
	"geocode_rps":                   "geocode.requests_per_second",
	"geocode_burst":                 "geocode.burst",
	"geocode_breaker_timeout":       "geocode.breaker.timeout",
	"geocode_breaker_failure_ratio": "geocode.breaker.failure_ratio",
	"geocode_breaker_min_requests":  "geocode.breaker.min_requests",

	// Ranking oracle
	"oracle_enabled":               "oracle.enabled",
	"oracle_api_key":               "oracle.api_key",
	"gemini_api_key":               "oracle.api_key",
	"oracle_model":                 "oracle.model",
	"oracle_timeout":               "oracle.timeout",
	"oracle_temperature":           "oracle.temperature",
	"oracle_rps":                   "oracle.requests_per_second",
	"oracle_burst":                 "oracle.burst",
	"oracle_history_turns":         "oracle.history_turns",
	"oracle_turn_max_chars":        "oracle.turn_max_chars",
	"oracle_breaker_timeout":       "oracle.breaker.timeout",
	"oracle_breaker_failure_ratio": "oracle.breaker.failure_ratio",
	"oracle_breaker_min_requests":  "oracle.breaker.min_requests",

	// Social graph
	"social_max_hops":   "social.max_hops",
	"social_max_nodes":  "social.max_nodes",
	"social_batch_size": "social.batch_size",

	// Pipeline
	"pipeline_pool_size":       "pipeline.pool_size",
	"pipeline_relax_limit":     "pipeline.relax_limit",
	"pipeline_posts_per_venue": "pipeline.posts_per_venue",
	"pipeline_candidate_limit": "pipeline.candidate_limit",
	"pipeline_store_timeout":   "pipeline.store_timeout",

	// Location keywords
	"location_home_ward":    "location.home_ward",
	"location_home_city":    "location.home_city",
	"location_home_region":  "location.home_region",
	"location_home_country": "location.home_country",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"token_ttl":           "security.token_ttl",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - GEOCODE_API_KEY -> geocode.api_key
//   - SOCIAL_MAX_HOPS -> social.max_hops
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//
// Unmapped variables return "" and are skipped so unrelated environment
// variables never pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
