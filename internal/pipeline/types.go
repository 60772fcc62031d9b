// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package pipeline

import (
	"context"
	"errors"

	"github.com/tomtom215/kuchikomi/internal/evidence"
	"github.com/tomtom215/kuchikomi/internal/location"
	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/oracle"
	"github.com/tomtom215/kuchikomi/internal/scope"
	"github.com/tomtom215/kuchikomi/internal/social"
)

// ErrDataStore marks a failed required read. The run is aborted.
var ErrDataStore = errors.New("data store error")

// Request limits
const (
	DefaultMaxResults = 4
	MaxMaxResults     = 10
)

// VenueStore reads candidate venues.
type VenueStore interface {
	ListVenues(ctx context.Context, limit int) ([]models.Venue, error)
	VenuesByIDs(ctx context.Context, ids []string) ([]models.Venue, error)
}

// Locator resolves the search center for a query.
type Locator interface {
	Resolve(ctx context.Context, query string) location.Resolution
}

// DistanceSource computes hop distances from a requester.
type DistanceSource interface {
	Distances(ctx context.Context, requesterID string) (models.SocialDistanceMap, social.Stats, error)
}

// Ranker asks the ranking oracle to pick from a pool.
type Ranker interface {
	Rank(ctx context.Context, req oracle.RankRequest) (*oracle.Ranking, error)
}

// HistoryStore persists conversation turns.
type HistoryStore interface {
	Append(ctx context.Context, turn models.Turn) error
	Recent(ctx context.Context, threadID, userID string, limit int) ([]models.Turn, error)
}

// Request is one recommendation request after authentication.
type Request struct {
	Query       string
	MaxResults  int
	RequesterID string
	ThreadID    string

	// Candidates replaces the store-backed set when non-empty. Entries with
	// a place_id but no name and no address are looked up by id.
	Candidates []models.Venue
}

// State is the accumulated output of the stages run so far.
type State struct {
	Request   Request
	NewThread bool

	Candidates       []models.Venue
	CandidateSource  string
	Genres           []string
	GenreApplied     bool
	Filtered         []models.Venue
	Location         location.Resolution
	Scope            scope.Result
	Distances        models.SocialDistanceMap
	Posts            []models.EvidencePost
	Evidence         evidence.Aggregate
	Pool             []models.PoolItem
	History          []models.Turn
	Understood       oracle.Understood
	AssistantMessage *string
	Picks            []models.PickedResult
	Fallback         bool
	Results          []models.FinalResult
	Response         *Response

	Trace []string
}

// Patch is a stage's contribution to the state.
type Patch struct {
	// Apply sets the fields the stage owns on a copy of the state.
	Apply func(*State)

	// Trace holds the key=value metrics for the stage's trace line.
	Trace string
}

// Response is the caller-facing result of a run.
type Response struct {
	OK               bool                 `json:"ok"`
	Understood       oracle.Understood    `json:"understood"`
	AssistantMessage *string              `json:"assistant_message"`
	Location         *LocationView        `json:"location"`
	Results          []models.FinalResult `json:"results"`
	Meta             Meta                 `json:"meta"`
}

// LocationView is the resolved location as returned to callers.
type LocationView struct {
	LocationText   string           `json:"location_text"`
	LocationReason string           `json:"location_reason"`
	Center         *location.Center `json:"center"`
	HardMaxKm      *float64         `json:"hard_max_km"`
	HardBasis      string           `json:"hard_basis"`
	ScopeRelaxed   bool             `json:"scope_relaxed"`
	GeocodeStatus  string           `json:"geocode_status"`
}

// Meta carries diagnostics about a run.
type Meta struct {
	MS                 int64    `json:"ms"`
	Trace              []string `json:"trace"`
	CandidatesCount    int      `json:"candidates_count"`
	PoolCount          int      `json:"pool_count"`
	GenresFromQuery    []string `json:"genres_from_query"`
	GenreFilterApplied bool     `json:"genre_filter_applied"`
	Fallback           bool     `json:"fallback"`
	ThreadID           string   `json:"thread_id"`
}
