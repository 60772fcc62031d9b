// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/evidence"
	"github.com/tomtom215/kuchikomi/internal/genre"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/scope"
)

// Defaults for Options fields left at zero.
const (
	DefaultPoolSize       = 30
	DefaultPostsPerVenue  = 20
	DefaultCandidateLimit = 5000
	DefaultHistoryTurns   = 6
	DefaultStoreTimeout   = 10 * time.Second
)

// Options bound the amount of data a single run touches.
type Options struct {
	PoolSize       int
	PostsPerVenue  int
	CandidateLimit int
	HistoryTurns   int
	StoreTimeout   time.Duration
}

// NewOptions builds Options from configuration, applying defaults.
func NewOptions(cfg config.PipelineConfig, historyTurns int) Options {
	o := Options{
		PoolSize:       cfg.PoolSize,
		PostsPerVenue:  cfg.PostsPerVenue,
		CandidateLimit: cfg.CandidateLimit,
		HistoryTurns:   historyTurns,
		StoreTimeout:   cfg.StoreTimeout,
	}
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.PostsPerVenue <= 0 {
		o.PostsPerVenue = DefaultPostsPerVenue
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = DefaultCandidateLimit
	}
	if o.HistoryTurns < 0 {
		o.HistoryTurns = DefaultHistoryTurns
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	return o
}

// Deps are the collaborators of a pipeline. History may be nil.
type Deps struct {
	Venues  VenueStore
	Posts   evidence.PostSource
	Graph   DistanceSource
	Locator Locator
	Genres  *genre.Matcher
	Scope   *scope.Builder
	Ranker  Ranker
	History HistoryStore
}

type stage struct {
	name string
	run  func(ctx context.Context, s State) (Patch, error)
}

// Pipeline is safe for concurrent use. Each Run owns its state.
type Pipeline struct {
	deps   Deps
	opts   Options
	stages []stage
	logger zerolog.Logger
}

// New wires a pipeline with the fixed stage order.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Genres == nil {
		deps.Genres = genre.Default()
	}
	if deps.Scope == nil {
		deps.Scope = scope.NewBuilder(scope.DefaultRelaxLimit)
	}

	p := &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logging.With().Str("component", "pipeline").Logger(),
	}
	p.stages = []stage{
		{"candidates", p.loadCandidates},
		{"genre", p.filterGenres},
		{"location", p.resolveLocation},
		{"scope", p.buildScope},
		{"social", p.gatherSocial},
		{"evidence", p.buildEvidence},
		{"pool", p.buildPool},
		{"history", p.readHistory},
		{"oracle", p.rank},
		{"merge", p.merge},
		{"respond", p.respond},
	}
	return p
}

// Run executes every stage in order and returns the assembled response.
// The only error is a failed required read, wrapping ErrDataStore.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	state := p.prepareRequest(req)
	logger := p.requestLogger(ctx, state.Request)
	logger.Debug().Msg("Processing recommendation request")

	for _, st := range p.stages {
		stageStart := time.Now()
		patch, err := st.run(ctx, state)
		metrics.RecordStage(st.name, time.Since(stageStart))
		if err != nil {
			metrics.RecordPipelineRun(err)
			logger.Error().Err(err).Str("stage", st.name).Msg("Pipeline aborted")
			return nil, fmt.Errorf("stage %s: %w", st.name, err)
		}
		state = state.apply(st.name, patch)
	}

	resp := state.Response
	resp.Meta.Trace = state.Trace
	resp.Meta.MS = time.Since(start).Milliseconds()
	metrics.RecordPipelineRun(nil)

	p.recordTurns(ctx, state)

	logger.Debug().
		Int("candidates", resp.Meta.CandidatesCount).
		Int("pool", resp.Meta.PoolCount).
		Int("returned", len(resp.Results)).
		Bool("fallback", resp.Meta.Fallback).
		Int64("latency_ms", resp.Meta.MS).
		Msg("Recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and assigns a thread id when missing.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (p *Pipeline) prepareRequest(req Request) State {
	req.Query = strings.TrimSpace(req.Query)
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.MaxResults > MaxMaxResults {
		req.MaxResults = MaxMaxResults
	}

	s := State{Request: req}
	if strings.TrimSpace(req.ThreadID) == "" {
		s.Request.ThreadID = uuid.NewString()
		s.NewThread = true
	}
	return s
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (p *Pipeline) requestLogger(ctx context.Context, req Request) zerolog.Logger {
	return p.logger.With().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Str("thread_id", req.ThreadID).
		Str("requester", req.RequesterID).
		Int("max_results", req.MaxResults).
		Logger()
}

// apply returns a copy of s with the patch applied and the trace extended.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func (s State) apply(name string, patch Patch) State {
	next := s
	if patch.Apply != nil {
		patch.Apply(&next)
	}
	line := name + ":"
	if patch.Trace != "" {
		line += " " + patch.Trace
	}
	next.Trace = append(slices.Clone(s.Trace), line)
	return next
}

// recordTurns appends the user and assistant turns. Failures are logged.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) recordTurns(ctx context.Context, s State) {
	if p.deps.History == nil || s.Request.RequesterID == "" {
		return
	}

	turns := []models.Turn{
		{ThreadID: s.Request.ThreadID, UserID: s.Request.RequesterID, Role: models.RoleUser, Content: s.Request.Query},
		{ThreadID: s.Request.ThreadID, UserID: s.Request.RequesterID, Role: models.RoleAssistant, Content: assistantTurn(s)},
	}
	for _, t := range turns {
		if err := p.deps.History.Append(ctx, t); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("thread_id", t.ThreadID).
				Str("role", t.Role).
				Msg("Failed to append conversation turn")
			return
		}
	}
}

// assistantTurn is the assistant message, or the result headlines when the
// oracle gave none.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func assistantTurn(s State) string {
	if s.AssistantMessage != nil && strings.TrimSpace(*s.AssistantMessage) != "" {
		return *s.AssistantMessage
	}
	headlines := make([]string, 0, len(s.Results))
	for i := range s.Results {
		headlines = append(headlines, s.Results[i].Headline)
	}
	return strings.Join(headlines, " / ")
}
