// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// minJWTSecretLength is the minimum HS256 secret length accepted.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateHistory(); err != nil {
		return err
	}

	if err := c.validateGeocode(); err != nil {
		return err
	}

	if err := c.validateOracle(); err != nil {
		return err
	}

	if err := c.validatePipeline(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.Environment != "" && !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

// validateHistory validates the history store (only if enabled)
func (c *Config) validateHistory() error {
	if !c.History.Enabled {
		return nil
	}
	if c.History.DSN == "" {
		return fmt.Errorf("HISTORY_DSN is required when HISTORY_ENABLED=true")
	}
	if c.History.MaxConns < 1 {
		return fmt.Errorf("HISTORY_MAX_CONNS must be at least 1")
	}
	return nil
}

// validateGeocode validates geocoder settings (only if enabled)
func (c *Config) validateGeocode() error {
	if !c.Geocode.Enabled {
		return nil
	}
	if c.Geocode.APIKey == "" {
		return fmt.Errorf("GEOCODE_API_KEY is required when GEOCODE_ENABLED=true")
	}
	if err := validateEndpointURL(c.Geocode.BaseURL, "GEOCODE_BASE_URL"); err != nil {
		return err
	}
	if c.Geocode.Timeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT must be positive")
	}
	if c.Geocode.CacheSize < 1 {
		return fmt.Errorf("GEOCODE_CACHE_SIZE must be at least 1")
	}
	return validateBreaker(c.Geocode.Breaker, "GEOCODE_BREAKER")
}

// validateOracle validates ranking oracle settings (only if enabled)
func (c *Config) validateOracle() error {
	if !c.Oracle.Enabled {
		return nil
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("ORACLE_API_KEY is required when ORACLE_ENABLED=true")
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("ORACLE_MODEL is required when ORACLE_ENABLED=true")
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if c.Oracle.HistoryTurns < 0 {
		return fmt.Errorf("ORACLE_HISTORY_TURNS must be >= 0")
	}
	return validateBreaker(c.Oracle.Breaker, "ORACLE_BREAKER")
}

func validateBreaker(b BreakerConfig, prefix string) error {
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("%s_FAILURE_RATIO must be in (0, 1]", prefix)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("%s_TIMEOUT must be positive", prefix)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.PoolSize < 1 {
		return fmt.Errorf("PIPELINE_POOL_SIZE must be at least 1")
	}
	if c.Pipeline.RelaxLimit < 1 {
		return fmt.Errorf("PIPELINE_RELAX_LIMIT must be at least 1")
	}
	if c.Pipeline.PostsPerVenue < 1 {
		return fmt.Errorf("PIPELINE_POSTS_PER_VENUE must be at least 1")
	}
	if c.Pipeline.CandidateLimit < 1 {
		return fmt.Errorf("PIPELINE_CANDIDATE_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: jwt, none")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS=* is not allowed when ENVIRONMENT=production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateEndpointURL checks an absolute http(s) URL. Unlike a base URL, an
// endpoint may carry a path.
func validateEndpointURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
