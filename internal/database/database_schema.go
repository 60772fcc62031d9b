// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates tables and indexes. Every statement is idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// schemaQueries returns the DDL. genre_tags is stored comma-separated.
// follows has no secondary index: DuckDB rejects upserts that assign to
// indexed columns, and the primary key already leads with follower_id.
func schemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS venues (
			place_id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			primary_genre VARCHAR,
			genre_tags VARCHAR,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR PRIMARY KEY,
			display_name VARCHAR,
			avatar_url VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			post_id VARCHAR PRIMARY KEY,
			place_id VARCHAR NOT NULL,
			author_id VARCHAR NOT NULL,
			content VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			recommend_score INTEGER CHECK (recommend_score BETWEEN 1 AND 10),
			price INTEGER,
			price_bucket VARCHAR,
			thumbnail_url VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id VARCHAR NOT NULL,
			followee_id VARCHAR NOT NULL,
			status VARCHAR NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_place_created ON posts(place_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`,
	}
}
