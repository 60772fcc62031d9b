// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package models

import "time"

// EvidencePost is another user's post about a venue.
// DistanceK and IsDirectFollow are filled in once the social graph is known.
type EvidencePost struct {
	PostID         string    `json:"post_id"`
	PlaceID        string    `json:"place_id"`
	AuthorID       string    `json:"author_id"`
	AuthorName     string    `json:"author_name,omitempty"`
	AuthorAvatar   string    `json:"author_avatar,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	RecommendScore *int      `json:"recommend_score"`
	Price          *int      `json:"price"`
	PriceBucket    string    `json:"price_bucket,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	DistanceK      *int      `json:"distance_k"`
	IsDirectFollow bool      `json:"is_direct_follow"`
}

// SocialDistanceMap maps author_id to hop count from the requester.
type SocialDistanceMap map[string]int

// Lookup returns the hop distance for an author, or nil when unreachable.
func (m SocialDistanceMap) Lookup(authorID string) *int {
	k, ok := m[authorID]
	if !ok || k <= 0 {
		return nil
	}
	return &k
}

// FollowEdge is an accepted follower to followee relation.
type FollowEdge struct {
	FollowerID string
	FolloweeID string
}
