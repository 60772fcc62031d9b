// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package models defines the request-scoped data structures of the
recommendation pipeline.

Every type here is created when a pipeline run starts and discarded when it
ends. Durable state (venues, posts, follow edges, conversation turns) lives
in the stores; these are snapshots read from them.

Key Types:

  - Venue: candidate venue snapshot (place_id is the unique key)
  - EvidencePost: another user's post about a venue, annotated with hop distance
  - SocialDistanceMap: author_id to hop count from the requester
  - PoolItem: venue plus distance, social score and closest hop
  - PickedResult: one ranking decision returned by the oracle
  - FinalResult: pool item merged with its pick and evidence
  - Turn: one role-tagged conversation turn
*/
package models
