// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package services

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/metrics"
)

// DefaultMonitorInterval is the ping period when none is configured.
const DefaultMonitorInterval = 30 * time.Second

// Pinger is a store with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitorService pings each store on an interval, publishes
// dependency_up, and logs up/down transitions.
type StoreMonitorService struct {
	stores   map[string]Pinger
	names    []string
	interval time.Duration
	timeout  time.Duration
	up       map[string]bool
}

// NewStoreMonitorService monitors stores keyed by dependency name.
func NewStoreMonitorService(stores map[string]Pinger, interval time.Duration) *StoreMonitorService {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)

	return &StoreMonitorService{
		stores:   stores,
		names:    names,
		interval: interval,
		timeout:  min(interval, 5*time.Second),
		up:       make(map[string]bool, len(stores)),
	}
}

// Serve implements suture.Service. It checks once immediately, then on
// every tick until ctx is canceled.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *StoreMonitorService) checkAll(ctx context.Context) {
	for _, name := range s.names {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.stores[name].Ping(pingCtx)
		cancel()

		up := err == nil
		metrics.SetDependencyUp(name, up)

		prev, seen := s.up[name]
		s.up[name] = up
		switch {
		case !up && (!seen || prev):
			logging.Warn().Err(err).Str("dependency", name).Msg("Store ping failed")
		case up && seen && !prev:
			logging.Info().Str("dependency", name).Msg("Store ping recovered")
		}
	}
}

// String names the service in supervisor events.
func (s *StoreMonitorService) String() string {
	return "store-monitor"
}
