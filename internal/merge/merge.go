// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package merge reconciles oracle picks with the pool into the final,
// bounded result list.
package merge

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

// Merge constants
const (
	FillerScore  = 40
	FillerReason = "supplemented from nearby"

	socialBoostFactor = 12.0
	maxSocialBoost    = 12
	tieWindow         = 6
	quoteMaxRunes     = 60
)

// EvidenceSource returns the display evidence for a venue.
type EvidenceSource interface {
	For(placeID string) []models.EvidencePost
}

// Stats reports how the list was assembled.
type Stats struct {
	Picked  int
	Dropped int
	Filled  int
	Proofs  int
}

// Merge maps picks onto pool items, fills any shortfall with the nearest
// unused items, applies the social boost, sorts and slices to maxResults.
// Only pool members can appear in the output.
//
// When fallback is set the picks came from oracle.Fallback: they keep their
// fixed score, generic reason and nearest-first order, and only carry
// evidence.
func Merge(pool []models.PoolItem, picks []models.PickedResult, ev EvidenceSource, maxResults int, fallback bool) ([]models.FinalResult, Stats) {
	var stats Stats
	if maxResults <= 0 || len(pool) == 0 {
		return []models.FinalResult{}, stats
	}

	byID := make(map[string]int, len(pool))
	for i := range pool {
		byID[pool[i].PlaceID] = i
	}

	used := make(map[string]bool, maxResults)
	results := make([]models.FinalResult, 0, maxResults)
	for _, p := range picks {
		i, ok := byID[p.PlaceID]
		if !ok || used[p.PlaceID] {
			stats.Dropped++
			continue
		}
		used[p.PlaceID] = true
		results = append(results, models.FinalResult{
			PoolItem:   pool[i],
			Headline:   p.Headline,
			Subline:    p.Subline,
			Reason:     p.Reason,
			MatchScore: p.MatchScore,
		})
	}
	stats.Picked = len(results)

	for _, item := range models.NearestFirst(pool) {
		if len(results) >= maxResults {
			break
		}
		if used[item.PlaceID] {
			continue
		}
		used[item.PlaceID] = true
		results = append(results, models.FinalResult{
			PoolItem:   item,
			Headline:   item.Name,
			Subline:    item.Address,
			Reason:     FillerReason,
			MatchScore: FillerScore,
		})
		stats.Filled++
	}

	if !fallback {
		for i := range results {
			results[i].MatchScore = BoostedScore(results[i].MatchScore, results[i].SocialScore)
		}
		sortResults(results)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	for i := range results {
		results[i].Evidence = ev.For(results[i].PlaceID)
		if fallback {
			continue
		}
		if sentence, ok := SocialProof(results[i].Evidence); ok {
			results[i].Reason = appendSentence(results[i].Reason, sentence)
			stats.Proofs++
		}
	}
	return results, stats
}

// BoostedScore adds round(social x 12), capped at 12, and clamps the total
// to [0, 100].
func BoostedScore(score int, social float64) int {
	boost := int(math.Round(social * socialBoostFactor))
	boost = min(max(boost, 0), maxSocialBoost)
	return min(max(score+boost, 0), 100)
}

// before reports whether a ranks ahead of b. Scores closer than the tie
// window are ordered by social score, then by distance with unknown last.
func before(a, b *models.FinalResult) bool {
	diff := a.MatchScore - b.MatchScore
	if diff >= tieWindow {
		return true
	}
	if diff <= -tieWindow {
		return false
	}
	if a.SocialScore != b.SocialScore {
		return a.SocialScore > b.SocialScore
	}
	switch {
	case a.DistanceKm == nil:
		return false
	case b.DistanceKm == nil:
		return true
	}
	return *a.DistanceKm < *b.DistanceKm
}

// sortResults is a stable insertion sort. The tie window makes before
// non-transitive, so the result depends on input order and must be
// computed the same way every time.
func sortResults(results []models.FinalResult) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && before(&results[j], &results[j-1]); j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

// SocialProof builds the sentence naming the first directly followed
// author with a known display name. Hop-2 and farther evidence never
// qualifies.
func SocialProof(evidence []models.EvidencePost) (string, bool) {
	for _, e := range evidence {
		if !e.IsDirectFollow || e.DistanceK == nil || *e.DistanceK != 1 {
			continue
		}
		name := strings.TrimSpace(e.AuthorName)
		if name == "" {
			continue
		}
		quote := textnorm.Truncate(strings.Join(strings.Fields(e.Content), " "), quoteMaxRunes)
		if quote == "" {
			return fmt.Sprintf("%s, who you follow, posted about this place.", name), true
		}
		return fmt.Sprintf("%s, who you follow, wrote: \"%s\"", name, quote), true
	}
	return "", false
}

func appendSentence(reason, sentence string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return sentence
	}
	return reason + " " + sentence
}
