// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// Follow statuses
const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
	FollowBlocked  = "blocked"
)

// AcceptedFollowees returns accepted follow edges whose follower is in
// followerIDs, ordered by follower then followee.
func (db *DB) AcceptedFollowees(ctx context.Context, followerIDs []string) (edges []models.FollowEdge, err error) {
	edges = make([]models.FollowEdge, 0)
	if len(followerIDs) == 0 {
		return edges, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_accepted", "follows", time.Since(start), err) }()

	for _, batch := range batches(followerIDs, maxQueryParams) {
		query := fmt.Sprintf(`
			SELECT follower_id, followee_id FROM follows
			WHERE status = ? AND follower_id IN (%s)
			ORDER BY follower_id, followee_id`, placeholders(len(batch)))

		args := append([]any{FollowAccepted}, toArgs(batch)...)
		rows, qerr := db.conn.QueryContext(ctx, query, args...)
		if qerr != nil {
			return nil, fmt.Errorf("accepted followees: %w", qerr)
		}
		for rows.Next() {
			var e models.FollowEdge
			if serr := rows.Scan(&e.FollowerID, &e.FolloweeID); serr != nil {
				closeQuietly(rows)
				return nil, fmt.Errorf("scan follow edge: %w", serr)
			}
			edges = append(edges, e)
		}
		rerr := rows.Err()
		closeWithLog(rows, "follow rows")
		if rerr != nil {
			return nil, fmt.Errorf("accepted followees: %w", rerr)
		}
	}
	return edges, nil
}

// UpsertFollow records or updates an edge.
func (db *DB) UpsertFollow(ctx context.Context, followerID, followeeID, status string) (err error) {
	if followerID == "" || followeeID == "" || followerID == followeeID {
		return fmt.Errorf("%w: follower and followee must be distinct and non-empty", ErrInvalidInput)
	}
	switch status {
	case FollowPending, FollowAccepted, FollowBlocked:
	default:
		return fmt.Errorf("%w: unknown follow status %q", ErrInvalidInput, status)
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "follows", time.Since(start), err) }()

	_, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO follows (follower_id, followee_id, status, created_at) VALUES (?, ?, ?, ?)`,
		followerID, followeeID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert follow %s->%s: %w", followerID, followeeID, err)
	}
	return nil
}
