// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package models

import (
	"math"
	"slices"
	"strings"
)

// Venue is an immutable snapshot of a candidate venue.
type Venue struct {
	PlaceID      string   `json:"place_id" validate:"required,max=255"`
	Name         string   `json:"name" validate:"max=500"`
	Address      string   `json:"address" validate:"max=1000"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	PrimaryGenre *string  `json:"primary_genre"`
	GenreTags    []string `json:"genre_tags"`
}

// Eligible reports whether the venue can take part in a pipeline run.
// Venues missing a name, an address or finite coordinates are skipped.
func (v *Venue) Eligible() bool {
	if strings.TrimSpace(v.PlaceID) == "" ||
		strings.TrimSpace(v.Name) == "" ||
		strings.TrimSpace(v.Address) == "" {
		return false
	}
	if math.IsNaN(v.Lat) || math.IsInf(v.Lat, 0) || math.IsNaN(v.Lng) || math.IsInf(v.Lng, 0) {
		return false
	}
	return v.Lat >= -90 && v.Lat <= 90 && v.Lng >= -180 && v.Lng <= 180
}

// GenreText returns the primary genre or "" when unset.
func (v *Venue) GenreText() string {
	if v.PrimaryGenre == nil {
		return ""
	}
	return *v.PrimaryGenre
}

// FilterEligible returns the eligible venues, preserving order.
func FilterEligible(venues []Venue) []Venue {
	out := make([]Venue, 0, len(venues))
	for i := range venues {
		if venues[i].Eligible() {
			out = append(out, venues[i])
		}
	}
	return out
}

// PoolItem is the working unit ranked and sent to the oracle.
type PoolItem struct {
	Venue
	DistanceKm  *float64 `json:"distance_km"`
	SocialScore float64  `json:"social_score"`
	ClosestK    *int     `json:"closest_k"`
}

// PickedResult is one ranking decision returned by the oracle.
type PickedResult struct {
	PlaceID    string `json:"place_id"`
	Headline   string `json:"headline"`
	Subline    string `json:"subline"`
	Reason     string `json:"reason"`
	MatchScore int    `json:"match_score"`
}

// FinalResult is the unit returned to the caller.
type FinalResult struct {
	PoolItem
	Headline   string         `json:"headline"`
	Subline    string         `json:"subline"`
	Reason     string         `json:"reason"`
	MatchScore int            `json:"match_score"`
	Evidence   []EvidencePost `json:"evidence"`
}

// NearestFirst returns a copy of items ordered by distance ascending.
// Items without a distance keep their relative order after those with one,
// so a pool built without a center comes back unchanged.
func NearestFirst(items []PoolItem) []PoolItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b PoolItem) int {
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return 0
		case a.DistanceKm == nil:
			return 1
		case b.DistanceKm == nil:
			return -1
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		}
		return 0
	})
	return out
}
