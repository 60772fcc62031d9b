// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package scope narrows candidate venues to the resolved search radius.
package scope

import (
	"slices"

	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// DefaultRelaxLimit is the nearest-N size used when nothing lies within the
// radius.
const DefaultRelaxLimit = 80

// Result is the in-scope candidate set.
type Result struct {
	Items   []models.PoolItem
	Relaxed bool
}

// Builder applies the radius filter.
type Builder struct {
	relaxLimit int
}

// NewBuilder creates a builder; a non-positive relaxLimit uses
// DefaultRelaxLimit.
func NewBuilder(relaxLimit int) *Builder {
	if relaxLimit <= 0 {
		relaxLimit = DefaultRelaxLimit
	}
	return &Builder{relaxLimit: relaxLimit}
}

// Build scopes candidates around center.
//
// Without a center every candidate passes with a nil distance. With one,
// candidates are sorted by distance and those within radiusKm are kept. If
// none are, the nearest relaxLimit candidates are returned and Relaxed is
// set, so the result is only empty when candidates is.
func (b *Builder) Build(candidates []models.Venue, center *geo.Point, radiusKm *float64) Result {
	items := make([]models.PoolItem, len(candidates))
	for i := range candidates {
		items[i] = models.PoolItem{Venue: candidates[i]}
	}
	if center == nil {
		return Result{Items: items}
	}

	for i := range items {
		d := geo.DistanceKm(*center, geo.Point{Lat: items[i].Lat, Lng: items[i].Lng})
		items[i].DistanceKm = &d
	}
	slices.SortStableFunc(items, func(a, b models.PoolItem) int {
		switch {
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		}
		return 0
	})

	if radiusKm == nil {
		return Result{Items: items}
	}

	n := 0
	for n < len(items) && *items[n].DistanceKm <= *radiusKm {
		n++
	}
	if n > 0 || len(items) == 0 {
		return Result{Items: items[:n]}
	}

	return Result{Items: items[:min(b.relaxLimit, len(items))], Relaxed: true}
}
