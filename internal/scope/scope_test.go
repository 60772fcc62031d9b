// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package scope

import (
	"fmt"
	"testing"

	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/models"
)

var shibuya = geo.Point{Lat: 35.6580, Lng: 139.7016}

func venueAt(id string, lat, lng float64) models.Venue {
	return models.Venue{PlaceID: id, Name: id, Address: "addr", Lat: lat, Lng: lng}
}

func radius(km float64) *float64 { return &km }

func TestBuild_NoCenter(t *testing.T) {
	in := []models.Venue{venueAt("a", 35.0, 135.0), venueAt("b", 43.0, 141.3)}
	res := NewBuilder(80).Build(in, nil, radius(3))

	if res.Relaxed {
		t.Error("Relaxed = true without a center")
	}
	if len(res.Items) != 2 || res.Items[0].PlaceID != "a" || res.Items[1].PlaceID != "b" {
		t.Fatalf("Items = %+v, want input order", res.Items)
	}
	for _, item := range res.Items {
		if item.DistanceKm != nil {
			t.Errorf("%s DistanceKm = %v, want nil", item.PlaceID, *item.DistanceKm)
		}
	}
}

func TestBuild_SortsAndFilters(t *testing.T) {
	in := []models.Venue{
		venueAt("harajuku", 35.6702, 139.7027),  // ~1.4 km
		venueAt("osaka", 34.7025, 135.4959),     // ~400 km
		venueAt("dogenzaka", 35.6573, 139.6990), // ~0.25 km
		venueAt("ebisu", 35.6467, 139.7101),     // ~1.5 km
	}

	res := NewBuilder(80).Build(in, &shibuya, radius(3))
	if res.Relaxed {
		t.Error("Relaxed = true with in-radius candidates")
	}
	if len(res.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(res.Items))
	}
	if res.Items[0].PlaceID != "dogenzaka" {
		t.Errorf("nearest = %s, want dogenzaka", res.Items[0].PlaceID)
	}
	for i, item := range res.Items {
		if item.DistanceKm == nil || *item.DistanceKm > 3 {
			t.Errorf("item %s distance %v outside radius", item.PlaceID, item.DistanceKm)
		}
		if i > 0 && *item.DistanceKm < *res.Items[i-1].DistanceKm {
			t.Errorf("items not sorted ascending at %d", i)
		}
	}
}

func TestBuild_Relaxes(t *testing.T) {
	var in []models.Venue
	for i := 0; i < 100; i++ {
		in = append(in, venueAt(fmt.Sprintf("v%03d", i), 34.0+float64(i)*0.01, 135.0))
	}

	res := NewBuilder(80).Build(in, &shibuya, radius(3))
	if !res.Relaxed {
		t.Fatal("Relaxed = false, want true when nothing is in range")
	}
	if len(res.Items) != 80 {
		t.Fatalf("len(Items) = %d, want 80", len(res.Items))
	}
	// v099 is the northernmost and therefore nearest to Tokyo.
	if res.Items[0].PlaceID != "v099" {
		t.Errorf("nearest relaxed = %s, want v099", res.Items[0].PlaceID)
	}
}

func TestBuild_RelaxSmallSet(t *testing.T) {
	in := []models.Venue{venueAt("osaka", 34.7025, 135.4959)}
	res := NewBuilder(0).Build(in, &shibuya, radius(3))
	if !res.Relaxed || len(res.Items) != 1 {
		t.Errorf("Build() = %+v, want one relaxed item", res)
	}
}

func TestBuild_Empty(t *testing.T) {
	res := NewBuilder(80).Build(nil, &shibuya, radius(3))
	if res.Relaxed || len(res.Items) != 0 {
		t.Errorf("Build(nil) = %+v, want empty and not relaxed", res)
	}
}
