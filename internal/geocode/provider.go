// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package geocode resolves place text to coordinates, a formatted address,
// place types and viewport bounds.
//
// Provider layers an LRU cache, a token-bucket limiter and a circuit breaker
// over an upstream Geocoder. It is built once at process startup and
// injected into the location resolver.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/kuchikomi/internal/breaker"
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

var (
	// ErrNoResults means the geocoder found no match for the text.
	ErrNoResults = errors.New("geocode: no results")

	// ErrQuotaExceeded means the upstream quota was exhausted.
	ErrQuotaExceeded = errors.New("geocode: quota exceeded")

	// ErrDisabled is returned by the upstream used when geocoding is off.
	ErrDisabled = errors.New("geocode: disabled")

	// ErrRequestDenied means the upstream rejected the credentials.
	ErrRequestDenied = errors.New("geocode: request denied")
)

// Result is one geocoding match.
type Result struct {
	FormattedAddress string
	Location         geo.Point
	Types            []string
	Viewport         *geo.Viewport
}

// Geocoder resolves text to a location.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*Result, error)
}

type cacheEntry struct {
	result *Result // nil records a negative lookup
}

// Provider is the process-wide geocoder used by the pipeline.
type Provider struct {
	upstream Geocoder
	breaker  *breaker.Breaker[*Result]
	limiter  *rate.Limiter
	cache    *lru.Cache[string, cacheEntry]
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewProvider wraps upstream with caching, rate limiting and a breaker.
func NewProvider(upstream Geocoder, cfg *config.GeocodeConfig) (*Provider, error) {
	cache, err := lru.New[string, cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode cache: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Provider{
		upstream: upstream,
		breaker:  breaker.New[*Result]("geocoder", cfg.Breaker, countsAsSuccess),
		limiter:  rate.NewLimiter(limit, burst),
		cache:    cache,
		timeout:  cfg.Timeout,
		logger:   logging.With().Str("component", "geocode").Logger(),
	}, nil
}

// countsAsSuccess keeps empty results, caller cancellations and a
// switched-off upstream from tripping the breaker.
func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNoResults) ||
		errors.Is(err, ErrDisabled) ||
		errors.Is(err, context.Canceled)
}

// Geocode resolves text, serving repeated lookups from the cache.
// Returns ErrNoResults when nothing matches.
func (p *Provider) Geocode(ctx context.Context, text string) (*Result, error) {
	key := textnorm.Normalize(text)
	if key == "" {
		return nil, ErrNoResults
	}

	if entry, ok := p.cache.Get(key); ok {
		metrics.GeocodeCacheHits.Inc()
		if entry.result == nil {
			return nil, ErrNoResults
		}
		return entry.result, nil
	}
	metrics.GeocodeCacheMisses.Inc()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode rate limit: %w", err)
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := p.breaker.Execute(func() (*Result, error) {
		return p.upstream.Geocode(callCtx, text)
	})
	metrics.RecordUpstream("geocoder", "geocode", time.Since(start), ignoreNoResults(err))

	switch {
	case err == nil:
		p.cache.Add(key, cacheEntry{result: result})
		return result, nil
	case errors.Is(err, ErrNoResults):
		p.cache.Add(key, cacheEntry{})
		return nil, ErrNoResults
	case errors.Is(err, ErrDisabled):
		return nil, err
	default:
		p.logger.Warn().Err(err).Str("text", text).Msg("Geocode lookup failed")
		return nil, err
	}
}

// BreakerState reports the upstream breaker state for health checks.
func (p *Provider) BreakerState() string {
	return p.breaker.State()
}

// CacheLen returns the number of cached lookups.
func (p *Provider) CacheLen() int {
	return p.cache.Len()
}

func ignoreNoResults(err error) error {
	if errors.Is(err, ErrNoResults) {
		return nil
	}
	return err
}

type disabledGeocoder struct{}

func (disabledGeocoder) Geocode(context.Context, string) (*Result, error) {
	return nil, ErrDisabled
}

// Disabled returns an upstream that always fails with ErrDisabled.
func Disabled() Geocoder {
	return disabledGeocoder{}
}
