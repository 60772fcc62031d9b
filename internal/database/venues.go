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

const venueColumns = `place_id, name, address, lat, lng, primary_genre, COALESCE(genre_tags, '')`

// eligibleVenue filters rows the pipeline cannot use.
const eligibleVenue = `trim(name) <> '' AND trim(address) <> ''
	AND lat IS NOT NULL AND lng IS NOT NULL AND isfinite(lat) AND isfinite(lng)`

// ListVenues returns up to limit eligible venues ordered by place_id. The
// limit is not geographic; callers scope the result afterwards.
func (db *DB) ListVenues(ctx context.Context, limit int) (venues []models.Venue, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "venues", time.Since(start), err) }()

	query := fmt.Sprintf(`SELECT %s FROM venues WHERE %s ORDER BY place_id LIMIT ?`, venueColumns, eligibleVenue)
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer closeWithLog(rows, "venue rows")

	venues, err = scanVenues(rows)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return models.FilterEligible(venues), nil
}

// VenuesByIDs returns the eligible venues among ids, in no particular order.
// Unknown ids are skipped.
func (db *DB) VenuesByIDs(ctx context.Context, ids []string) (venues []models.Venue, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_by_id", "venues", time.Since(start), err) }()

	venues = make([]models.Venue, 0, len(ids))
	for _, batch := range batches(ids, maxQueryParams) {
		query := fmt.Sprintf(`SELECT %s FROM venues WHERE place_id IN (%s) AND %s`,
			venueColumns, placeholders(len(batch)), eligibleVenue)

		rows, qerr := db.conn.QueryContext(ctx, query, toArgs(batch)...)
		if qerr != nil {
			return nil, fmt.Errorf("venues by id: %w", qerr)
		}
		found, serr := scanVenues(rows)
		closeWithLog(rows, "venue rows")
		if serr != nil {
			return nil, fmt.Errorf("venues by id: %w", serr)
		}
		venues = append(venues, found...)
	}
	return models.FilterEligible(venues), nil
}

// UpsertVenue inserts or replaces a venue.
func (db *DB) UpsertVenue(ctx context.Context, v *models.Venue) (err error) {
	if v.PlaceID == "" {
		return fmt.Errorf("%w: place_id is required", ErrInvalidInput)
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "venues", time.Since(start), err) }()

	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO venues (place_id, name, address, lat, lng, primary_genre, genre_tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.PlaceID, v.Name, v.Address, v.Lat, v.Lng, nullString(v.PrimaryGenre), joinTags(v.GenreTags), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert venue %s: %w", v.PlaceID, err)
	}
	return nil
}

// CountVenues returns the number of stored venues.
func (db *DB) CountVenues(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}

func scanVenues(rows *sql.Rows) ([]models.Venue, error) {
	var venues []models.Venue
	for rows.Next() {
		var (
			v       models.Venue
			primary sql.NullString
			tags    string
		)
		if err := rows.Scan(&v.PlaceID, &v.Name, &v.Address, &v.Lat, &v.Lng, &primary, &tags); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		v.PrimaryGenre = stringPtr(primary)
		v.GenreTags = parseTags(tags)
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
