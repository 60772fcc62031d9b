// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package location resolves the place a query is about and the hard search
// radius around it.
//
// Resolution short-circuits in order: a coarse scope phrase ("市内",
// "nationwide") mapped to a configured home place, then a place name
// inferred by the ranking oracle, then geocoding of the chosen text. A
// query that resolves to nothing yields no center; the pipeline still
// completes without one.
package location

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/geocode"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

// Location reasons
const (
	ReasonCoarseKeyword   = "coarse_keyword"
	ReasonOracleInferred  = "oracle_inferred"
	ReasonNoPlace         = "no_place"
	ReasonGenreTerm       = "rejected_genre_term"
	ReasonInferenceFailed = "inference_failed"
)

// BasisNoCenter is the hard basis when no center was resolved.
const BasisNoCenter = "no_center"

// Geocode statuses
const (
	GeocodeSkipped   = "skipped"
	GeocodeOK        = "ok"
	GeocodeNoResults = "no_results"
	GeocodeFailed    = "error"
)

// Geocoder resolves text to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*geocode.Result, error)
}

// PlaceInferrer guesses one geocodable place name from a query.
type PlaceInferrer interface {
	InferPlace(ctx context.Context, query string) (string, error)
}

// GenreTerms rejects inferred "places" that are really genre words.
type GenreTerms interface {
	IsTerm(text string) bool
}

// Center is the resolved search center.
type Center struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

// Point returns the center as a geo point.
func (c *Center) Point() geo.Point {
	return geo.Point{Lat: c.Lat, Lng: c.Lng}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	LocationText   string
	LocationReason string
	Center         *Center
	HardMaxKm      *float64
	HardBasis      string
	Intent         geo.Intent
	Scope          geo.ScopeKind
	GeocodeStatus  string
}

// Resolver turns query text into a Resolution.
type Resolver struct {
	geocoder Geocoder
	inferrer PlaceInferrer
	genres   GenreTerms
	places   map[geo.ScopeKind]string
	logger   zerolog.Logger
}

// NewResolver creates a resolver. inferrer and genres may be nil.
func NewResolver(cfg config.LocationConfig, geocoder Geocoder, inferrer PlaceInferrer, genres GenreTerms) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		inferrer: inferrer,
		genres:   genres,
		places:   newCoarseTable(cfg),
		logger:   logging.With().Str("component", "location").Logger(),
	}
}

// Resolve never fails: upstream errors degrade to a resolution without a
// center.
func (r *Resolver) Resolve(ctx context.Context, query string) Resolution {
	normalized := textnorm.Normalize(query)
	res := Resolution{
		HardBasis:     BasisNoCenter,
		Intent:        DetectIntent(normalized),
		GeocodeStatus: GeocodeSkipped,
	}

	if m, ok := matchCoarse(normalized, r.places); ok {
		res.LocationText = m.place
		res.LocationReason = ReasonCoarseKeyword
		res.Scope = m.kind
	} else {
		res.LocationText, res.LocationReason = r.inferPlace(ctx, query)
	}

	if res.LocationText == "" || r.geocoder == nil {
		return res
	}

	result, err := r.geocoder.Geocode(ctx, res.LocationText)
	switch {
	case errors.Is(err, geocode.ErrNoResults):
		res.GeocodeStatus = GeocodeNoResults
		return res
	case err != nil:
		r.logger.Warn().Err(err).Str("text", res.LocationText).Msg("Geocoding failed, continuing without a center")
		res.GeocodeStatus = GeocodeFailed
		return res
	}
	res.GeocodeStatus = GeocodeOK

	label := result.FormattedAddress
	if label == "" {
		label = res.LocationText
	}
	res.Center = &Center{Lat: result.Location.Lat, Lng: result.Location.Lng, Label: label}

	var decision geo.RadiusDecision
	if result.Viewport != nil && result.Viewport.Valid() {
		decision = geo.RadiusFromViewport(*result.Viewport, result.Types, res.Intent)
	} else {
		decision = geo.RadiusFromTable(res.Scope, res.Intent)
	}
	res.HardMaxKm = &decision.Km
	res.HardBasis = decision.Basis
	return res
}

func (r *Resolver) inferPlace(ctx context.Context, query string) (string, string) {
	if r.inferrer == nil {
		return "", ReasonNoPlace
	}

	place, err := r.inferrer.InferPlace(ctx, query)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Place inference failed")
		return "", ReasonInferenceFailed
	}
	if place == "" {
		return "", ReasonNoPlace
	}
	if r.genres != nil && r.genres.IsTerm(place) {
		return "", ReasonGenreTerm
	}
	return place, ReasonOracleInferred
}
