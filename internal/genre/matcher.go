// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package genre extracts canonical genre tags from free text and narrows a
// candidate set by them without starving the pool.
package genre

import (
	"strings"

	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/textnorm"
)

// Floor constants for Filter
const (
	floorPerResult = 4
	minFloor       = 12
)

type entry struct {
	canonical string
	terms     []string // normalized canonical + synonyms
}

// Matcher holds a normalized synonym table. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	entries []entry
	index   map[string]int
	ac      *automaton
}

// NewMatcher builds a matcher from a synonym table.
func NewMatcher(table []Genre) *Matcher {
	m := &Matcher{
		entries: make([]entry, 0, len(table)),
		index:   make(map[string]int, len(table)),
	}
	for _, g := range table {
		e := entry{canonical: g.Canonical}
		seen := make(map[string]bool)
		for _, term := range append([]string{g.Canonical}, g.Synonyms...) {
			n := textnorm.Normalize(term)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			e.terms = append(e.terms, n)
		}
		m.index[g.Canonical] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	m.ac = newAutomaton(m.entries)
	return m
}

// Default returns a matcher over DefaultTable.
func Default() *Matcher {
	return NewMatcher(DefaultTable)
}

// Extract returns the canonical genres whose synonyms appear in text.
func (m *Matcher) Extract(text string) []string {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}
	found := m.ac.find(normalized)

	var genres []string
	for i, e := range m.entries {
		if found[i] {
			genres = append(genres, e.canonical)
		}
	}
	return genres
}

// Matches reports whether the venue's primary genre, tags or name match
// any of the canonical genres.
func (m *Matcher) Matches(v *models.Venue, genres []string) bool {
	fields := make([]string, 0, len(v.GenreTags)+2)
	if g := textnorm.Normalize(v.GenreText()); g != "" {
		fields = append(fields, g)
	}
	for _, tag := range v.GenreTags {
		if t := textnorm.Normalize(tag); t != "" {
			fields = append(fields, t)
		}
	}
	fields = append(fields, textnorm.Normalize(v.Name))

	wanted := make(map[int]bool, len(genres))
	for _, g := range genres {
		if i, ok := m.index[g]; ok {
			wanted[i] = true
		}
	}
	if len(wanted) == 0 {
		return false
	}

	for _, f := range fields {
		for i := range m.ac.find(f) {
			if wanted[i] {
				return true
			}
		}
	}
	return false
}

// IsTerm reports whether text is, after normalization, exactly a genre
// name or synonym.
func (m *Matcher) IsTerm(text string) bool {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return false
	}
	for _, e := range m.entries {
		for _, term := range e.terms {
			if term == normalized {
				return true
			}
		}
	}
	return false
}

// Floor is the minimum filtered size for maxResults.
func Floor(maxResults int) int {
	return max(floorPerResult*maxResults, minFloor)
}

// FilterResult is the outcome of a genre filter.
type FilterResult struct {
	Venues  []models.Venue
	Genres  []string
	Applied bool
}

// Filter narrows candidates to those matching the genres found in text.
//
// The filter is not applied when nothing matches, or when fewer than
// Floor(maxResults) match while the unfiltered set could have filled the
// floor. A set already smaller than the floor is filtered whenever at
// least one candidate matches.
func (m *Matcher) Filter(text string, candidates []models.Venue, maxResults int) FilterResult {
	genres := m.Extract(text)
	res := FilterResult{Venues: candidates, Genres: genres}
	if len(genres) == 0 || len(candidates) == 0 {
		return res
	}

	filtered := make([]models.Venue, 0, len(candidates))
	for i := range candidates {
		if m.Matches(&candidates[i], genres) {
			filtered = append(filtered, candidates[i])
		}
	}

	floor := Floor(maxResults)
	if len(filtered) == 0 || (len(filtered) < floor && len(candidates) >= floor) {
		return res
	}

	res.Venues = filtered
	res.Applied = true
	return res
}

// String renders genres for trace lines.
func String(genres []string) string {
	if len(genres) == 0 {
		return "-"
	}
	return strings.Join(genres, ",")
}
