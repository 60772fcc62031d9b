// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	outcomeSuccess = "success"
	outcomeMissing = "missing"
	outcomeInvalid = "invalid"
)

// AuthAttempts counts authentication decisions.
// Labels:
//   - method: "jwt", "none"
//   - outcome: "success", "missing", "invalid"
var AuthAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Total authentication attempts by method and outcome",
	},
	[]string{"method", "outcome"},
)

func recordAttempt(mode AuthMode, outcome string) {
	AuthAttempts.WithLabelValues(string(mode), outcome).Inc()
}
