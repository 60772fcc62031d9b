// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package location

import (
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

// coarseRule maps broad scope phrases to a configured home place.
// Rules are checked in order; country phrases come first because
// "日本全国" also contains shorter regional terms.
type coarseRule struct {
	kind  geo.ScopeKind
	terms []string
}

var coarseRules = []coarseRule{
	{geo.ScopeCountry, []string{"全国", "日本中", "日本全体", "国内どこでも", "nationwide", "anywhere in japan", "across the country", "whole country"}},
	{geo.ScopeRegion, []string{"県内", "府内", "道内", "地方全体", "地域全体", "近県", "the whole region", "across the region", "regionwide", "in the region"}},
	{geo.ScopeCity, []string{"市内", "都内", "街中", "within the city", "in the city", "around town", "citywide"}},
	{geo.ScopeWard, []string{"区内", "この区", "within the ward", "in the ward", "in my ward"}},
}

var nearTerms = []string{
	"近く", "近場", "近所", "周辺", "すぐ", "徒歩", "歩いて", "今から",
	"near me", "nearby", "close by", "walking distance", "soon", "right now",
}

var farTerms = []string{
	"旅行", "遠出", "遠く", "ドライブ", "日帰り", "出張",
	"trip", "travel", "far away", "getaway", "road trip",
}

// coarseMatch is a matched broad phrase.
type coarseMatch struct {
	term  string
	kind  geo.ScopeKind
	place string
}

func newCoarseTable(cfg config.LocationConfig) map[geo.ScopeKind]string {
	return map[geo.ScopeKind]string{
		geo.ScopeCountry: cfg.HomeCountry,
		geo.ScopeRegion:  cfg.HomeRegion,
		geo.ScopeCity:    cfg.HomeCity,
		geo.ScopeWard:    cfg.HomeWard,
	}
}

func matchCoarse(normalized string, places map[geo.ScopeKind]string) (coarseMatch, bool) {
	for _, rule := range coarseRules {
		place := places[rule.kind]
		if place == "" {
			continue
		}
		for _, term := range rule.terms {
			if textnorm.ContainsAny(normalized, []string{term}) {
				return coarseMatch{term: term, kind: rule.kind, place: place}, true
			}
		}
	}
	return coarseMatch{}, false
}

// DetectIntent finds near or far intent keywords in text. A query with
// both or neither has no intent.
func DetectIntent(text string) geo.Intent {
	normalized := textnorm.Normalize(text)
	near := textnorm.ContainsAny(normalized, nearTerms)
	far := textnorm.ContainsAny(normalized, farTerms)
	switch {
	case near && !far:
		return geo.IntentNear
	case far && !near:
		return geo.IntentFar
	default:
		return geo.IntentNone
	}
}
