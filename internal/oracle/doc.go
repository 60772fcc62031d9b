// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package oracle adapts the external ranking oracle, a Gemini model reached
through google.golang.org/genai, to the recommendation pipeline.

The package has three layers:

  - GeminiClient issues one JSON-mode GenerateContent call.
  - Client guards any Generator with a rate limiter, a per-call timeout and
    a circuit breaker.
  - Adapter builds the ranking and place-inference prompts and validates
    replies.

# Strict Parsing

Replies are decoded against a fixed schema. ParseRanking returns a tagged
ParseResult: either a Ranking or a *ParseError. Picks whose place_id is not
in the pool sent to the oracle are discarded, duplicates keep their first
occurrence, scores are clamped to [0, 100] and the list is truncated to
maxResults.

# Fallback

Any failure, network or parse, is handled the same way by the caller:
Fallback returns the nearest pool items with match score 45.

	ranking, err := adapter.Rank(ctx, req)
	if err != nil {
	    picks = oracle.Fallback(req.Pool, req.MaxResults)
	}
*/
package oracle
