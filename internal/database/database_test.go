// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO connections from
// parallel tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory store and holds the semaphore until the
// test completes.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func seededDB(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	seeded, err := db.SeedDemo(context.Background())
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	if !seeded {
		t.Fatal("SeedDemo() = false on an empty store")
	}
	return db
}

func TestNew_Ping(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	db := seededDB(t)
	seeded, err := db.SeedDemo(context.Background())
	if err != nil || seeded {
		t.Errorf("second SeedDemo() = %v, %v, want false, nil", seeded, err)
	}
}

func TestListVenues(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	// Ineligible rows are never returned.
	for _, v := range []models.Venue{
		{PlaceID: "zz-no-address", Name: "Nameless Address", Address: " ", Lat: 35.6, Lng: 139.7},
		{PlaceID: "zz-nan", Name: "NaN", Address: "somewhere", Lat: math.NaN(), Lng: 139.7},
	} {
		if err := db.UpsertVenue(ctx, &v); err != nil {
			t.Fatalf("UpsertVenue(%s) error = %v", v.PlaceID, err)
		}
	}

	venues, err := db.ListVenues(ctx, 100)
	if err != nil {
		t.Fatalf("ListVenues() error = %v", err)
	}
	if len(venues) != len(demoVenues) {
		t.Fatalf("len(venues) = %d, want %d", len(venues), len(demoVenues))
	}
	for i := 1; i < len(venues); i++ {
		if venues[i].PlaceID < venues[i-1].PlaceID {
			t.Errorf("venues not ordered by place_id at %d", i)
		}
	}

	var ichiran *models.Venue
	for i := range venues {
		if venues[i].PlaceID == "demo-ichiran-shibuya" {
			ichiran = &venues[i]
		}
	}
	if ichiran == nil {
		t.Fatal("demo-ichiran-shibuya missing")
	}
	if ichiran.PrimaryGenre == nil || *ichiran.PrimaryGenre != "ラーメン" {
		t.Errorf("PrimaryGenre = %v", ichiran.PrimaryGenre)
	}
	if len(ichiran.GenreTags) != 2 || ichiran.GenreTags[0] != "豚骨" {
		t.Errorf("GenreTags = %v", ichiran.GenreTags)
	}

	limited, err := db.ListVenues(ctx, 3)
	if err != nil || len(limited) != 3 {
		t.Errorf("ListVenues(3) = %d venues, %v", len(limited), err)
	}
}

func TestVenuesByIDs(t *testing.T) {
	db := seededDB(t)
	venues, err := db.VenuesByIDs(context.Background(), []string{"demo-afuri-ebisu", "missing", "demo-uobei-shibuya"})
	if err != nil {
		t.Fatalf("VenuesByIDs() error = %v", err)
	}
	if len(venues) != 2 {
		t.Errorf("len(venues) = %d, want 2", len(venues))
	}
}

func TestPostsByVenues(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	posts, err := db.PostsByVenues(ctx, []string{"demo-ichiran-shibuya", "demo-afuri-ebisu"}, DemoUserID, 20)
	if err != nil {
		t.Fatalf("PostsByVenues() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2 (requester's own post excluded)", len(posts))
	}
	for _, p := range posts {
		if p.AuthorID == DemoUserID {
			t.Errorf("requester post %s returned", p.PostID)
		}
		if p.AuthorName == "" {
			t.Errorf("post %s missing author display name", p.PostID)
		}
		if p.DistanceK != nil || p.IsDirectFollow {
			t.Errorf("store must not set social fields, got %+v", p)
		}
	}
}

func TestPostsByVenues_PerVenueLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		p := models.EvidencePost{
			PostID:    fmt.Sprintf("p%d", i),
			PlaceID:   "v1",
			AuthorID:  fmt.Sprintf("author%d", i),
			Content:   "x",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.InsertPost(ctx, &p); err != nil {
			t.Fatalf("InsertPost() error = %v", err)
		}
	}

	posts, err := db.PostsByVenues(ctx, []string{"v1"}, "", 3)
	if err != nil {
		t.Fatalf("PostsByVenues() error = %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("len(posts) = %d, want 3", len(posts))
	}
	if posts[0].PostID != "p4" || posts[2].PostID != "p2" {
		t.Errorf("posts = %s..%s, want newest first p4..p2", posts[0].PostID, posts[2].PostID)
	}

	empty, err := db.PostsByVenues(ctx, nil, "", 3)
	if err != nil || len(empty) != 0 {
		t.Errorf("PostsByVenues(nil) = %v, %v", empty, err)
	}
}

func TestInsertPost_Validation(t *testing.T) {
	db := setupTestDB(t)
	bad := 11
	err := db.InsertPost(context.Background(), &models.EvidencePost{PostID: "p", PlaceID: "v", AuthorID: "a", RecommendScore: &bad})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("InsertPost(score 11) error = %v, want ErrInvalidInput", err)
	}
}

func TestAcceptedFollowees(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	edges, err := db.AcceptedFollowees(ctx, []string{DemoUserID, "aiko"})
	if err != nil {
		t.Fatalf("AcceptedFollowees() error = %v", err)
	}
	got := fmt.Sprint(edges)
	want := fmt.Sprint([]models.FollowEdge{{FollowerID: "aiko", FolloweeID: "kenta"}, {FollowerID: DemoUserID, FolloweeID: "aiko"}})
	if got != want {
		t.Errorf("edges = %s, want %s (pending edges excluded)", got, want)
	}

	if err := db.UpsertFollow(ctx, DemoUserID, "stranger", FollowAccepted); err != nil {
		t.Fatalf("UpsertFollow() error = %v", err)
	}
	edges, err = db.AcceptedFollowees(ctx, []string{DemoUserID})
	if err != nil || len(edges) != 2 {
		t.Errorf("after accepting: %v, %v", edges, err)
	}
}

func TestUpsertFollow_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		from, to, status string
	}{
		{"a", "a", FollowAccepted},
		{"", "b", FollowAccepted},
		{"a", "b", "friends"},
	}
	for _, tt := range tests {
		if err := db.UpsertFollow(ctx, tt.from, tt.to, tt.status); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("UpsertFollow(%q, %q, %q) error = %v, want ErrInvalidInput", tt.from, tt.to, tt.status, err)
		}
	}
}

func TestHelpers(t *testing.T) {
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := len(batches(make([]string, 2001), 1000)); got != 3 {
		t.Errorf("len(batches(2001)) = %d, want 3", got)
	}
	got := parseTags(joinTags([]string{" 豚骨 ", "", "a,b"}))
	if len(got) != 2 || got[0] != "豚骨" || got[1] != "a b" {
		t.Errorf("tag round trip = %q", got)
	}
}
