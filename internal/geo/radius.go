// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package geo

import "math"

// Intent is the distance intent expressed in a query.
type Intent int

const (
	// IntentNone means no distance keywords were found.
	IntentNone Intent = iota
	// IntentNear covers "near me", "soon" style queries.
	IntentNear
	// IntentFar covers "trip", "far away" style queries.
	IntentFar
)

// String returns the basis suffix for the intent.
func (i Intent) String() string {
	switch i {
	case IntentNear:
		return "near"
	case IntentFar:
		return "far"
	default:
		return "none"
	}
}

// ScopeKind is the breadth of a coarse keyword match.
type ScopeKind string

const (
	ScopeNone    ScopeKind = ""
	ScopeWard    ScopeKind = "ward"
	ScopeCity    ScopeKind = "city"
	ScopeRegion  ScopeKind = "region"
	ScopeCountry ScopeKind = "country"
)

// PlaceLevel is the granularity of a geocoded place derived from its types.
type PlaceLevel int

const (
	LevelUnknown PlaceLevel = iota
	LevelNeighborhood
	LevelLocality
	LevelAdminArea
	LevelCountry
)

// Radius heuristic constants
const (
	ViewportFactor      = 0.65
	MinViewportRadiusKm = 3.0
	MaxViewportRadiusKm = 450.0
	NeighborhoodMaxKm   = 8.0
	LocalityMinKm       = 10.0
	LocalityMaxKm       = 40.0
	AdminAreaMinKm      = 60.0
	AdminAreaMaxKm      = 250.0
	CountryRadiusKm     = 2000.0
	NearFactor          = 0.7
	FarFactor           = 1.25
	DefaultRadiusKm     = 50.0
	DefaultFarRadiusKm  = 200.0
)

var neighborhoodTypes = map[string]bool{
	"neighborhood":        true,
	"sublocality":         true,
	"sublocality_level_1": true,
	"sublocality_level_2": true,
	"sublocality_level_3": true,
	"sublocality_level_4": true,
	"sublocality_level_5": true,
	"premise":             true,
	"subpremise":          true,
	"route":               true,
	"street_address":      true,
	"point_of_interest":   true,
	"establishment":       true,
	"transit_station":     true,
	"train_station":       true,
	"subway_station":      true,
	"postal_code":         true,
}

var localityTypes = map[string]bool{
	"locality":                    true,
	"postal_town":                 true,
	"administrative_area_level_3": true,
	"administrative_area_level_4": true,
}

var adminAreaTypes = map[string]bool{
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
}

// ClassifyPlaceTypes returns the most specific level present in types.
func ClassifyPlaceTypes(types []string) PlaceLevel {
	level := LevelUnknown
	for _, t := range types {
		switch {
		case neighborhoodTypes[t]:
			return LevelNeighborhood
		case localityTypes[t]:
			level = LevelLocality
		case adminAreaTypes[t] && level != LevelLocality:
			level = LevelAdminArea
		case t == "country" && level == LevelUnknown:
			level = LevelCountry
		}
	}
	return level
}

func (l PlaceLevel) basis() string {
	switch l {
	case LevelNeighborhood:
		return "+neighborhood"
	case LevelLocality:
		return "+locality"
	case LevelAdminArea:
		return "+admin_area"
	case LevelCountry:
		return "+country"
	default:
		return ""
	}
}

// RadiusDecision is the hard search radius and how it was derived.
type RadiusDecision struct {
	Km    float64
	Basis string
}

// RadiusFromViewport derives the radius from a geocoder viewport, the place
// types of the result and the query intent.
func RadiusFromViewport(vp Viewport, placeTypes []string, intent Intent) RadiusDecision {
	km := Clamp(vp.DiagonalKm()*ViewportFactor, MinViewportRadiusKm, MaxViewportRadiusKm)

	level := ClassifyPlaceTypes(placeTypes)
	switch level {
	case LevelNeighborhood:
		km = math.Min(km, NeighborhoodMaxKm)
	case LevelLocality:
		km = Clamp(km, LocalityMinKm, LocalityMaxKm)
	case LevelAdminArea:
		km = Clamp(km, AdminAreaMinKm, AdminAreaMaxKm)
	case LevelCountry:
		km = CountryRadiusKm
	}

	basis := "viewport" + level.basis()
	switch intent {
	case IntentNear:
		km *= NearFactor
		basis += "+near"
	case IntentFar:
		km = math.Min(km*FarFactor, CountryRadiusKm)
		basis += "+far"
	}

	return RadiusDecision{Km: Round(km, 1), Basis: basis}
}

// tableRadius holds near, normal and far radii per coarse scope.
var tableRadius = map[ScopeKind][3]float64{
	ScopeCity:    {25, 40, 60},
	ScopeWard:    {18, 30, 45},
	ScopeRegion:  {120, 200, 350},
	ScopeCountry: {CountryRadiusKm, CountryRadiusKm, CountryRadiusKm},
}

// RadiusFromTable is used when a center exists but no viewport does.
func RadiusFromTable(kind ScopeKind, intent Intent) RadiusDecision {
	radii, ok := tableRadius[kind]
	if !ok {
		if intent == IntentFar {
			return RadiusDecision{Km: DefaultFarRadiusKm, Basis: "default+far"}
		}
		return RadiusDecision{Km: DefaultRadiusKm, Basis: "default"}
	}

	basis := "table:" + string(kind)
	switch intent {
	case IntentNear:
		return RadiusDecision{Km: radii[0], Basis: basis + "+near"}
	case IntentFar:
		return RadiusDecision{Km: radii[2], Basis: basis + "+far"}
	default:
		return RadiusDecision{Km: radii[1], Basis: basis}
	}
}
