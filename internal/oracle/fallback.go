// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import "github.com/tomtom215/kuchikomi/internal/models"

// Fallback pick values.
const (
	FallbackScore  = 45
	FallbackReason = "shown from nearby fallback"
)

// Fallback picks the maxResults nearest pool items. Without distances the
// pool order is kept.
func Fallback(pool []models.PoolItem, maxResults int) []models.PickedResult {
	nearest := models.NearestFirst(pool)
	n := min(maxResults, len(nearest))
	if n <= 0 {
		return []models.PickedResult{}
	}

	picks := make([]models.PickedResult, 0, n)
	for _, item := range nearest[:n] {
		picks = append(picks, models.PickedResult{
			PlaceID:    item.PlaceID,
			Headline:   item.Name,
			Subline:    item.Address,
			Reason:     FallbackReason,
			MatchScore: FallbackScore,
		})
	}
	return picks
}
