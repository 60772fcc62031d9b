// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// PostsByVenues returns up to perVenue most recent posts for each venue,
// skipping posts by excludeAuthorID. Author display info comes from
// profiles when present. DistanceK and IsDirectFollow are left unset.
func (db *DB) PostsByVenues(ctx context.Context, venueIDs []string, excludeAuthorID string, perVenue int) (posts []models.EvidencePost, err error) {
	if len(venueIDs) == 0 || perVenue <= 0 {
		return []models.EvidencePost{}, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_by_venue", "posts", time.Since(start), err) }()

	posts = make([]models.EvidencePost, 0)
	for _, batch := range batches(venueIDs, maxQueryParams) {
		query := fmt.Sprintf(`
			SELECT p.post_id, p.place_id, p.author_id,
				COALESCE(pr.display_name, ''), COALESCE(pr.avatar_url, ''),
				p.content, p.created_at, p.recommend_score, p.price,
				COALESCE(p.price_bucket, ''), COALESCE(p.thumbnail_url, '')
			FROM posts p
			LEFT JOIN profiles pr ON pr.user_id = p.author_id
			WHERE p.place_id IN (%s) AND p.author_id <> ?
			QUALIFY ROW_NUMBER() OVER (PARTITION BY p.place_id ORDER BY p.created_at DESC, p.post_id) <= ?
			ORDER BY p.place_id, p.created_at DESC, p.post_id`, placeholders(len(batch)))

		rows, qerr := db.conn.QueryContext(ctx, query, toArgs(batch, excludeAuthorID, perVenue)...)
		if qerr != nil {
			return nil, fmt.Errorf("posts by venues: %w", qerr)
		}
		found, serr := scanPosts(rows)
		closeWithLog(rows, "post rows")
		if serr != nil {
			return nil, fmt.Errorf("posts by venues: %w", serr)
		}
		posts = append(posts, found...)
	}
	return posts, nil
}

// InsertPost stores a post.
func (db *DB) InsertPost(ctx context.Context, p *models.EvidencePost) (err error) {
	if p.PostID == "" || p.PlaceID == "" || p.AuthorID == "" {
		return fmt.Errorf("%w: post_id, place_id and author_id are required", ErrInvalidInput)
	}
	if p.RecommendScore != nil && (*p.RecommendScore < 1 || *p.RecommendScore > 10) {
		return fmt.Errorf("%w: recommend_score must be 1-10", ErrInvalidInput)
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "posts", time.Since(start), err) }()

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO posts (post_id, place_id, author_id, content, created_at, recommend_score, price, price_bucket, thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PostID, p.PlaceID, p.AuthorID, p.Content, created.UTC(),
		nullInt(p.RecommendScore), nullInt(p.Price), p.PriceBucket, p.ThumbnailURL)
	if err != nil {
		return fmt.Errorf("insert post %s: %w", p.PostID, err)
	}
	return nil
}

// UpsertProfile stores author display info.
func (db *DB) UpsertProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (user_id, display_name, avatar_url) VALUES (?, ?, ?)`,
		userID, displayName, avatarURL)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", userID, err)
	}
	return nil
}

func scanPosts(rows *sql.Rows) ([]models.EvidencePost, error) {
	var posts []models.EvidencePost
	for rows.Next() {
		var (
			p      models.EvidencePost
			score  sql.NullInt64
			price  sql.NullInt64
			create time.Time
		)
		if err := rows.Scan(&p.PostID, &p.PlaceID, &p.AuthorID, &p.AuthorName, &p.AuthorAvatar,
			&p.Content, &create, &score, &price, &p.PriceBucket, &p.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.CreatedAt = create.UTC()
		p.RecommendScore = intPtr(score)
		p.Price = intPtr(price)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
