// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package database is the DuckDB-backed venue, post and follow store read by
// the recommendation pipeline.
//
// # Tables
//
//   - venues: candidate venues with coordinates and genre fields
//   - profiles: author display names and avatars
//   - posts: user posts about venues, with recommend score and price
//   - follows: directed follower/followee edges with a status
//
// # Read Paths
//
// The pipeline only reads:
//
//   - ListVenues and VenuesByIDs return eligible venues (name, address and
//     finite coordinates present).
//   - PostsByVenues returns the most recent posts per venue, excluding the
//     requester, using a ROW_NUMBER window with QUALIFY.
//   - AcceptedFollowees returns accepted follow edges for a follower batch.
//
// Id lists are split into batches of maxQueryParams placeholders.
//
// # Writes
//
// UpsertVenue, UpsertProfile, InsertPost and UpsertFollow exist for seeding
// and tests. SeedDemo loads a small Tokyo data set into an empty store.
package database
