// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/kuchikomi/internal/breaker"
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/metrics"
)

// ErrDisabled is returned by the generator used when the oracle is turned
// off in configuration. Every call then takes the fallback path.
var ErrDisabled = errors.New("oracle disabled")

// Client guards a Generator with a limiter, a timeout and a breaker.
type Client struct {
	gen     Generator
	breaker *breaker.Breaker[[]byte]
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient wraps gen using the limits in cfg.
func NewClient(gen Generator, cfg *config.OracleConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		gen:     gen,
		breaker: breaker.New[[]byte]("oracle", cfg.Breaker, countsAsSuccess),
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
	}
}

// countsAsSuccess keeps malformed replies, caller cancellations and a
// switched-off oracle out of the failure ratio; only transport-level
// failures trip the breaker.
func countsAsSuccess(err error) bool {
	var parseErr *ParseError
	return err == nil ||
		errors.As(err, &parseErr) ||
		errors.Is(err, ErrDisabled) ||
		errors.Is(err, context.Canceled)
}

// GenerateJSON implements Generator.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, input any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("oracle rate limit: %w", err)
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.gen.GenerateJSON(callCtx, prompt, input)
	})
	metrics.RecordUpstream("oracle", "generate_json", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// BreakerState reports the breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

type disabledGenerator struct{}

func (disabledGenerator) GenerateJSON(context.Context, string, any) ([]byte, error) {
	return nil, ErrDisabled
}

// Disabled returns a Generator that always fails with ErrDisabled.
func Disabled() Generator {
	return disabledGenerator{}
}
