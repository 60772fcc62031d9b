// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

const rankingPrompt = `You rank restaurant and venue candidates for a user's request.
Choose only from the candidates in the input. Never invent a place_id.
Rules:
- When distance_km is present, prefer closer candidates unless the request says otherwise.
- When the request names a genre or cuisine, respect it.
- Treat a high social_score (friends and people they follow posted about it) as a tie-break signal.
- Reply in the language of the request.
Return strictly this JSON object and nothing else:
{"understood":{"summary":string,"extracted_tags":[string]},
 "assistant_message":string|null,
 "results":[{"place_id":string,"headline":string,"subline":string,"reason":string,"match_score":integer 0-100}]}
Return at most max_results results, best first.`

const placePrompt = `Extract the single place name from the user's request that a geocoder could resolve
(a station, neighborhood, ward, city, prefecture or country).
Cuisine and nationality words are not places: "イタリアン", "中華", "韓国料理", "French", "Thai" and the like must never be returned.
If the request names no place, return null.
Return strictly: {"place": string|null}`

// RankRequest is one ranking call.
type RankRequest struct {
	Query         string
	MaxResults    int
	Genres        []string
	LocationLabel string
	Pool          []models.PoolItem
	History       []models.Turn
}

type poolPayload struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	DistanceKm   *float64 `json:"distance_km"`
	PrimaryGenre *string  `json:"primary_genre"`
	GenreTags    []string `json:"genre_tags"`
	SocialScore  float64  `json:"social_score"`
	ClosestK     *int     `json:"closest_k"`
}

type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rankPayload struct {
	Query      string        `json:"query"`
	MaxResults int           `json:"max_results"`
	Genres     []string      `json:"genres"`
	Location   *string       `json:"location"`
	Candidates []poolPayload `json:"candidates"`
	History    []turnPayload `json:"history"`
}

// Adapter sends ranking and place-inference requests to the oracle.
type Adapter struct {
	gen          Generator
	turnMaxChars int
}

// NewAdapter creates an adapter. History turns are cut to turnMaxChars
// runes; zero leaves them whole.
func NewAdapter(gen Generator, turnMaxChars int) *Adapter {
	return &Adapter{gen: gen, turnMaxChars: turnMaxChars}
}

// Rank asks the oracle to pick from req.Pool. The returned error is either
// the generator's error or a *ParseError; callers fall back on both.
func (a *Adapter) Rank(ctx context.Context, req RankRequest) (*Ranking, error) {
	raw, err := a.gen.GenerateJSON(ctx, rankingPrompt, a.rankPayload(req))
	if err != nil {
		return nil, fmt.Errorf("ranking call failed: %w", err)
	}

	parsed := ParseRanking(raw, req.Pool, req.MaxResults)
	if !parsed.OK() {
		return nil, parsed.Err
	}
	if parsed.Ranking.Dropped > 0 {
		logging.Ctx(ctx).Debug().
			Int("dropped", parsed.Ranking.Dropped).
			Int("kept", len(parsed.Ranking.Results)).
			Msg("Discarded oracle picks outside the pool")
	}
	return parsed.Ranking, nil
}

// InferPlace asks the oracle for one geocodable place name in query.
// Returns "" when the oracle finds none.
func (a *Adapter) InferPlace(ctx context.Context, query string) (string, error) {
	raw, err := a.gen.GenerateJSON(ctx, placePrompt, map[string]string{"query": query})
	if err != nil {
		return "", fmt.Errorf("place inference failed: %w", err)
	}
	return ParsePlace(raw)
}

func (a *Adapter) rankPayload(req RankRequest) rankPayload {
	p := rankPayload{
		Query:      req.Query,
		MaxResults: req.MaxResults,
		Genres:     req.Genres,
		Candidates: make([]poolPayload, 0, len(req.Pool)),
		History:    make([]turnPayload, 0, len(req.History)),
	}
	if p.Genres == nil {
		p.Genres = []string{}
	}
	if label := strings.TrimSpace(req.LocationLabel); label != "" {
		p.Location = &label
	}

	for i := range req.Pool {
		item := &req.Pool[i]
		c := poolPayload{
			PlaceID:      item.PlaceID,
			Name:         item.Name,
			Address:      item.Address,
			PrimaryGenre: item.PrimaryGenre,
			GenreTags:    item.GenreTags,
			SocialScore:  geo.Round(item.SocialScore, 2),
			ClosestK:     item.ClosestK,
		}
		if item.DistanceKm != nil {
			d := geo.Round(*item.DistanceKm, 1)
			c.DistanceKm = &d
		}
		if c.GenreTags == nil {
			c.GenreTags = []string{}
		}
		p.Candidates = append(p.Candidates, c)
	}

	for _, t := range req.History {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		if a.turnMaxChars > 0 {
			content = textnorm.Truncate(content, a.turnMaxChars)
		}
		p.History = append(p.History, turnPayload{Role: t.Role, Content: content})
	}
	return p
}
