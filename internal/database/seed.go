// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// DemoUserID is the requester the demo follow graph is built around.
const DemoUserID = "demo-user"

func strp(s string) *string { return &s }
func ip(v int) *int         { return &v }

var demoVenues = []models.Venue{
	{PlaceID: "demo-ichiran-shibuya", Name: "一蘭 渋谷店", Address: "東京都渋谷区神南1-22-7", Lat: 35.6617, Lng: 139.7005, PrimaryGenre: strp("ラーメン"), GenreTags: []string{"豚骨", "ラーメン"}},
	{PlaceID: "demo-afuri-ebisu", Name: "AFURI 恵比寿", Address: "東京都渋谷区恵比寿1-1-7", Lat: 35.6475, Lng: 139.7100, PrimaryGenre: strp("ラーメン"), GenreTags: []string{"柚子塩"}},
	{PlaceID: "demo-uobei-shibuya", Name: "魚べい 渋谷道玄坂店", Address: "東京都渋谷区道玄坂2-29-11", Lat: 35.6586, Lng: 139.6981, PrimaryGenre: strp("寿司"), GenreTags: []string{"回転寿司"}},
	{PlaceID: "demo-torikizoku-shibuya", Name: "鳥貴族 渋谷センター街店", Address: "東京都渋谷区宇田川町25-5", Lat: 35.6605, Lng: 139.6987, PrimaryGenre: strp("焼き鳥"), GenreTags: []string{"居酒屋"}},
	{PlaceID: "demo-fuglen-tomigaya", Name: "Fuglen Tokyo", Address: "東京都渋谷区富ヶ谷1-16-11", Lat: 35.6661, Lng: 139.6906, PrimaryGenre: strp("カフェ"), GenreTags: []string{"コーヒー"}},
	{PlaceID: "demo-fuunji-shinjuku", Name: "風雲児", Address: "東京都渋谷区代々木2-14-3", Lat: 35.6869, Lng: 139.6983, PrimaryGenre: strp("ラーメン"), GenreTags: []string{"つけ麺"}},
	{PlaceID: "demo-tsuta-yokohama", Name: "中華そば 蔦 横浜", Address: "神奈川県横浜市西区南幸2-1-22", Lat: 35.4662, Lng: 139.6223, PrimaryGenre: strp("ラーメン"), GenreTags: []string{"醤油"}},
}

var demoProfiles = []struct{ id, name string }{
	{DemoUserID, "Demo"},
	{"aiko", "Aiko"},
	{"kenta", "Kenta"},
	{"mei", "Mei"},
	{"stranger", "Taro"},
}

var demoFollows = []struct{ from, to, status string }{
	{DemoUserID, "aiko", FollowAccepted},
	{DemoUserID, "stranger", FollowPending},
	{"aiko", "kenta", FollowAccepted},
	{"kenta", "mei", FollowAccepted},
}

var demoPosts = []models.EvidencePost{
	{PostID: "demo-post-1", PlaceID: "demo-ichiran-shibuya", AuthorID: "aiko", Content: "深夜でも並ぶ価値あり。替え玉必須です。", RecommendScore: ip(9), Price: ip(1200)},
	{PostID: "demo-post-2", PlaceID: "demo-afuri-ebisu", AuthorID: "kenta", Content: "柚子塩らーめんがさっぱりして美味しい", RecommendScore: ip(8), Price: ip(1350)},
	{PostID: "demo-post-3", PlaceID: "demo-fuunji-shinjuku", AuthorID: "mei", Content: "濃厚つけ麺。昼は行列", RecommendScore: ip(9)},
	{PostID: "demo-post-4", PlaceID: "demo-uobei-shibuya", AuthorID: "stranger", Content: "安くて早い", RecommendScore: ip(6), PriceBucket: "¥1,000-1,999"},
	{PostID: "demo-post-5", PlaceID: "demo-ichiran-shibuya", AuthorID: DemoUserID, Content: "my own post"},
	{PostID: "demo-post-6", PlaceID: "demo-fuglen-tomigaya", AuthorID: "aiko", Content: "朝のコーヒーが最高"},
}

// SeedDemo loads the demo data set when the venue table is empty.
// Returns false without writing when data already exists.
func (db *DB) SeedDemo(ctx context.Context) (bool, error) {
	n, err := db.CountVenues(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for i := range demoVenues {
		if err := db.UpsertVenue(ctx, &demoVenues[i]); err != nil {
			return false, fmt.Errorf("seed venues: %w", err)
		}
	}
	for _, p := range demoProfiles {
		if err := db.UpsertProfile(ctx, p.id, p.name, ""); err != nil {
			return false, fmt.Errorf("seed profiles: %w", err)
		}
	}
	for _, f := range demoFollows {
		if err := db.UpsertFollow(ctx, f.from, f.to, f.status); err != nil {
			return false, fmt.Errorf("seed follows: %w", err)
		}
	}
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for i := range demoPosts {
		p := demoPosts[i]
		p.CreatedAt = base.Add(-time.Duration(i) * 24 * time.Hour)
		if err := db.InsertPost(ctx, &p); err != nil {
			return false, fmt.Errorf("seed posts: %w", err)
		}
	}

	logging.Info().Int("venues", len(demoVenues)).Int("posts", len(demoPosts)).Msg("Seeded demo data")
	return true, nil
}
