// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tomtom215/kuchikomi/internal/breaker"
)

const healthCheckTimeout = 2 * time.Second

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version,omitempty"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Checks        map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is one dependency's status.
type ComponentHealth struct {
	Status string `json:"status"`
	State  string `json:"state,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Health handles GET /api/v1/health.
//
// The venue store is required: when its ping fails the service is unhealthy
// and the status code is 503. A failed history store or an open breaker only
// degrades the service, since the pipeline falls back around both.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := &HealthResponse{
		Status:        StatusHealthy,
		Version:       h.deps.Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        make(map[string]ComponentHealth),
	}

	resp.Checks["venue_store"] = pingCheck(ctx, h.deps.VenueStore)
	if resp.Checks["venue_store"].Status != StatusHealthy {
		resp.Status = StatusUnhealthy
	}

	if h.deps.HistoryStore == nil {
		resp.Checks["history_store"] = ComponentHealth{Status: StatusHealthy, State: "disabled"}
	} else {
		resp.Checks["history_store"] = pingCheck(ctx, h.deps.HistoryStore)
		if resp.Checks["history_store"].Status != StatusHealthy {
			resp.degrade()
		}
	}

	names := make([]string, 0, len(h.deps.Breakers))
	for name := range h.deps.Breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := h.deps.Breakers[name].BreakerState()
		check := ComponentHealth{Status: StatusHealthy, State: state}
		if state != breaker.StateClosed {
			check.Status = StatusDegraded
			resp.degrade()
		}
		resp.Checks[name+"_breaker"] = check
	}

	status := http.StatusOK
	if resp.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	respondData(w, r, status, resp)
}

func (hr *HealthResponse) degrade() {
	if hr.Status == StatusHealthy {
		hr.Status = StatusDegraded
	}
}

func pingCheck(ctx context.Context, p Pinger) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: StatusUnhealthy, Error: "not configured"}
	}
	if err := p.Ping(ctx); err != nil {
		return ComponentHealth{Status: StatusUnhealthy, Error: err.Error()}
	}
	return ComponentHealth{Status: StatusHealthy}
}
