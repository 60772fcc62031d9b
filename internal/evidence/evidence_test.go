// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package evidence

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/kuchikomi/internal/models"
)

var base = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func post(id, place, author string, score *int, age time.Duration) models.EvidencePost {
	return models.EvidencePost{
		PostID:         id,
		PlaceID:        place,
		AuthorID:       author,
		Content:        "post " + id,
		CreatedAt:      base.Add(-age),
		RecommendScore: score,
	}
}

func postIDs(posts []models.EvidencePost) []string {
	out := make([]string, len(posts))
	for i := range posts {
		out[i] = posts[i].PostID
	}
	return out
}

func TestBuild_SortAndCap(t *testing.T) {
	dist := models.SocialDistanceMap{"friend": 1, "fof": 2, "far": 3}
	posts := []models.EvidencePost{
		post("stranger-high", "v1", "stranger", intPtr(10), time.Hour),
		post("fof", "v1", "fof", intPtr(5), time.Hour),
		post("friend-old", "v1", "friend", intPtr(8), 48*time.Hour),
		post("friend-new", "v1", "friend", intPtr(8), time.Hour),
		post("far", "v1", "far", nil, time.Hour),
		post("mine", "v1", "me", intPtr(10), time.Minute),
	}

	agg := Build(posts, dist, "me")
	got := postIDs(agg.For("v1"))
	want := []string{"friend-new", "friend-old", "fof"}
	if len(got) != len(want) {
		t.Fatalf("evidence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("evidence[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if agg.Posts != 5 {
		t.Errorf("Posts = %d, want 5 (requester excluded)", agg.Posts)
	}

	first := agg.For("v1")[0]
	if !first.IsDirectFollow || first.DistanceK == nil || *first.DistanceK != 1 {
		t.Errorf("first evidence = %+v, want direct follow at k=1", first)
	}
	if agg.For("v1")[2].IsDirectFollow {
		t.Error("hop-2 evidence marked as direct follow")
	}
}

func TestSort_UnknownHopsAndScores(t *testing.T) {
	posts := []models.EvidencePost{
		post("a", "v", "x", nil, time.Hour),
		post("b", "v", "x", intPtr(3), time.Hour),
		post("c", "v", "x", intPtr(3), time.Minute),
		post("d", "v", "x", intPtr(9), 72*time.Hour),
	}
	posts[0].DistanceK = intPtr(2)

	Sort(posts)
	got := postIDs(posts)
	want := []string{"a", "d", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sort() = %v, want %v", got, want)
		}
	}
}

func TestScore(t *testing.T) {
	posts := []models.EvidencePost{
		{RecommendScore: intPtr(9), DistanceK: intPtr(1)},
		{RecommendScore: nil, DistanceK: intPtr(2)},
		{RecommendScore: intPtr(10), DistanceK: nil},
	}

	sig := Score(posts)
	want := 0.9 + 0.35
	if math.Abs(sig.SocialScore-want) > 1e-9 {
		t.Errorf("SocialScore = %v, want %v", sig.SocialScore, want)
	}
	if sig.ClosestK == nil || *sig.ClosestK != 1 {
		t.Errorf("ClosestK = %v, want 1", sig.ClosestK)
	}

	if empty := Score(nil); empty.SocialScore != 0 || empty.ClosestK != nil {
		t.Errorf("Score(nil) = %+v", empty)
	}
}

func TestBuild_SocialScoreMonotonic(t *testing.T) {
	dist := models.SocialDistanceMap{"a": 3, "b": 3, "c": 3, "d": 1, "e": 2}
	posts := []models.EvidencePost{
		post("p1", "v", "a", intPtr(10), time.Hour),
		post("p2", "v", "b", intPtr(10), time.Hour),
		post("p3", "v", "c", intPtr(10), time.Hour),
	}

	prev := Build(posts, dist, "me").Signals["v"].SocialScore
	for _, add := range []models.EvidencePost{
		post("p4", "v", "e", intPtr(1), time.Hour),
		post("p5", "v", "d", intPtr(1), time.Hour),
		post("p6", "v", "d", nil, time.Hour),
	} {
		posts = append(posts, add)
		next := Build(posts, dist, "me").Signals["v"].SocialScore
		if next < prev {
			t.Errorf("adding %s lowered social score %v -> %v", add.PostID, prev, next)
		}
		prev = next
	}
}

func TestAggregate_Apply(t *testing.T) {
	dist := models.SocialDistanceMap{"friend": 1}
	agg := Build([]models.EvidencePost{post("p", "v1", "friend", intPtr(9), time.Hour)}, dist, "me")

	items := []models.PoolItem{
		{Venue: models.Venue{PlaceID: "v1"}},
		{Venue: models.Venue{PlaceID: "v2"}},
	}
	out := agg.Apply(items)

	if out[0].SocialScore <= 0 || out[0].ClosestK == nil || *out[0].ClosestK != 1 {
		t.Errorf("v1 = %+v, want positive score at k=1", out[0])
	}
	if out[1].SocialScore != 0 || out[1].ClosestK != nil {
		t.Errorf("v2 = %+v, want no signal", out[1])
	}
	if items[0].SocialScore != 0 {
		t.Error("Apply mutated its input")
	}
	if ev := agg.For("v2"); ev == nil || len(ev) != 0 {
		t.Errorf("For(v2) = %v, want empty slice", ev)
	}
}
