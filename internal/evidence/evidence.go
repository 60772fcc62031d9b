// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package evidence ranks other users' posts per venue and derives the
// social-proximity signal from the requester's follow distances.
package evidence

import (
	"cmp"
	"context"
	"slices"

	"github.com/tomtom215/kuchikomi/internal/models"
)

const (
	// MaxPerVenue caps the evidence attached to one venue.
	MaxPerVenue = 3

	// defaultNormalizedScore stands in for a post without a recommend score.
	defaultNormalizedScore = 0.7
)

// PostSource loads recent posts for venues, excluding one author.
type PostSource interface {
	PostsByVenues(ctx context.Context, venueIDs []string, excludeAuthorID string, perVenue int) ([]models.EvidencePost, error)
}

// Signal is the per-venue social aggregate.
type Signal struct {
	SocialScore float64
	ClosestK    *int
}

// Aggregate is the evidence for a set of venues.
type Aggregate struct {
	ByVenue map[string][]models.EvidencePost
	Signals map[string]Signal
	Posts   int
}

// Build annotates posts with hop distances, groups them per venue, sorts
// and caps each group, and computes the social signal.
//
// The signal is computed over every post of a venue, not only the capped
// display list, so adding a post never lowers it.
func Build(posts []models.EvidencePost, dist models.SocialDistanceMap, requesterID string) Aggregate {
	grouped := make(map[string][]models.EvidencePost)
	agg := Aggregate{
		ByVenue: make(map[string][]models.EvidencePost),
		Signals: make(map[string]Signal),
	}

	for _, p := range posts {
		if p.AuthorID == requesterID {
			continue
		}
		p.DistanceK = dist.Lookup(p.AuthorID)
		p.IsDirectFollow = p.DistanceK != nil && *p.DistanceK == 1
		grouped[p.PlaceID] = append(grouped[p.PlaceID], p)
		agg.Posts++
	}

	for placeID, group := range grouped {
		agg.Signals[placeID] = Score(group)
		Sort(group)
		agg.ByVenue[placeID] = slices.Clip(group[:min(MaxPerVenue, len(group))])
	}
	return agg
}

// Sort orders posts: direct follows first, then nearer hops (unknown
// last), then higher recommend score (missing counts as -1), then newer.
func Sort(posts []models.EvidencePost) {
	slices.SortStableFunc(posts, compare)
}

func compare(a, b models.EvidencePost) int {
	if a.IsDirectFollow != b.IsDirectFollow {
		if a.IsDirectFollow {
			return -1
		}
		return 1
	}
	if c := compareHops(a.DistanceK, b.DistanceK); c != 0 {
		return c
	}
	if c := cmp.Compare(scoreOrMissing(b.RecommendScore), scoreOrMissing(a.RecommendScore)); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.PostID, b.PostID)
}

func compareHops(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func scoreOrMissing(s *int) int {
	if s == nil {
		return -1
	}
	return *s
}

// Score sums (1/k) x normalized score over posts with a known positive hop.
// The normalized score is recommend_score/10, or 0.7 when absent.
func Score(posts []models.EvidencePost) Signal {
	var sig Signal
	for _, p := range posts {
		if p.DistanceK == nil || *p.DistanceK <= 0 {
			continue
		}
		k := *p.DistanceK
		if sig.ClosestK == nil || k < *sig.ClosestK {
			sig.ClosestK = &k
		}
		sig.SocialScore += normalizedScore(p.RecommendScore) / float64(k)
	}
	return sig
}

func normalizedScore(s *int) float64 {
	if s == nil {
		return defaultNormalizedScore
	}
	if *s <= 0 {
		return 0
	}
	return float64(*s) / 10
}

// Apply returns a copy of items carrying the aggregate's social signal.
func (a Aggregate) Apply(items []models.PoolItem) []models.PoolItem {
	out := slices.Clone(items)
	for i := range out {
		sig := a.Signals[out[i].PlaceID]
		out[i].SocialScore = sig.SocialScore
		out[i].ClosestK = sig.ClosestK
	}
	return out
}

// For returns the capped evidence of one venue, never nil.
func (a Aggregate) For(placeID string) []models.EvidencePost {
	if ev := a.ByVenue[placeID]; ev != nil {
		return ev
	}
	return []models.EvidencePost{}
}
