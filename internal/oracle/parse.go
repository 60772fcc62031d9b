// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import (
	"bytes"
	"errors"
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kuchikomi/internal/models"
)

// ErrInvalidResponse matches every *ParseError via errors.Is.
var ErrInvalidResponse = errors.New("invalid oracle response")

// ParseError describes a reply that does not match the expected schema.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "invalid oracle response: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid oracle response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidResponse) true for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrInvalidResponse }

// Understood is the oracle's reading of the query.
type Understood struct {
	Summary       string   `json:"summary"`
	ExtractedTags []string `json:"extracted_tags"`
}

// Ranking is a validated oracle reply.
type Ranking struct {
	Understood       Understood
	AssistantMessage *string
	Results          []models.PickedResult

	// Dropped counts picks discarded for unknown, duplicate or incomplete
	// entries.
	Dropped int
}

// ParseResult is either a Ranking or a ParseError, never both.
type ParseResult struct {
	Ranking *Ranking
	Err     *ParseError
}

// OK reports whether parsing succeeded.
func (r ParseResult) OK() bool { return r.Err == nil }

type wireUnderstood struct {
	Summary       *string  `json:"summary"`
	ExtractedTags []string `json:"extracted_tags"`
}

type wireResult struct {
	PlaceID    *string  `json:"place_id"`
	Headline   *string  `json:"headline"`
	Subline    *string  `json:"subline"`
	Reason     *string  `json:"reason"`
	MatchScore *float64 `json:"match_score"`
}

type wireRanking struct {
	Understood       *wireUnderstood `json:"understood"`
	AssistantMessage *string         `json:"assistant_message"`
	Results          *[]wireResult   `json:"results"`
}

// ParseRanking validates raw against the ranking schema and the pool that
// was sent. Only pool members can appear in the result.
func ParseRanking(raw []byte, pool []models.PoolItem, maxResults int) ParseResult {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ParseResult{Err: &ParseError{Reason: "empty body"}}
	}
	if trimmed[0] != '{' {
		return ParseResult{Err: &ParseError{Reason: "body is not a JSON object"}}
	}

	var wire wireRanking
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return ParseResult{Err: &ParseError{Reason: "decode", Err: err}}
	}
	if wire.Results == nil {
		return ParseResult{Err: &ParseError{Reason: "missing results"}}
	}

	byID := make(map[string]*models.PoolItem, len(pool))
	for i := range pool {
		byID[pool[i].PlaceID] = &pool[i]
	}

	ranking := &Ranking{AssistantMessage: wire.AssistantMessage}
	if wire.Understood != nil {
		if wire.Understood.Summary != nil {
			ranking.Understood.Summary = *wire.Understood.Summary
		}
		ranking.Understood.ExtractedTags = wire.Understood.ExtractedTags
	}
	if ranking.Understood.ExtractedTags == nil {
		ranking.Understood.ExtractedTags = []string{}
	}

	seen := make(map[string]bool, len(*wire.Results))
	for _, r := range *wire.Results {
		if maxResults > 0 && len(ranking.Results) >= maxResults {
			break
		}
		if r.PlaceID == nil || r.MatchScore == nil || math.IsNaN(*r.MatchScore) {
			ranking.Dropped++
			continue
		}
		id := strings.TrimSpace(*r.PlaceID)
		item, ok := byID[id]
		if !ok || seen[id] {
			ranking.Dropped++
			continue
		}
		seen[id] = true

		ranking.Results = append(ranking.Results, models.PickedResult{
			PlaceID:    id,
			Headline:   textOr(r.Headline, item.Name),
			Subline:    textOr(r.Subline, item.Address),
			Reason:     textOr(r.Reason, ""),
			MatchScore: clampScore(*r.MatchScore),
		})
	}

	return ParseResult{Ranking: ranking}
}

// ParsePlace validates a place-inference reply of the form
// {"place": string|null}. A null or blank place yields "".
func ParsePlace(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", &ParseError{Reason: "body is not a JSON object"}
	}

	var wire struct {
		Place *string `json:"place"`
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return "", &ParseError{Reason: "decode", Err: err}
	}
	if wire.Place == nil {
		return "", nil
	}
	return strings.TrimSpace(*wire.Place), nil
}

func textOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return strings.TrimSpace(*s)
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
