// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package metrics exposes the Prometheus collectors used across the service.
//
// Collectors are registered with the default registry through promauto and
// served by promhttp on /metrics. Record* helpers keep label values
// consistent between call sites.
package metrics
