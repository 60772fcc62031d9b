// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/kuchikomi/internal/evidence"
	"github.com/tomtom215/kuchikomi/internal/genre"
	"github.com/tomtom215/kuchikomi/internal/geo"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/merge"
	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/oracle"
	"github.com/tomtom215/kuchikomi/internal/social"
)

// Candidate sources
const (
	sourceStore   = "store"
	sourceRequest = "request"
)

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) loadCandidates(ctx context.Context, s State) (Patch, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
	defer cancel()

	if len(s.Request.Candidates) == 0 {
		venues, err := p.deps.Venues.ListVenues(ctx, p.opts.CandidateLimit)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: list venues: %w", ErrDataStore, err)
		}
		// The store read is capped before any center is known, so a full
		// page may leave out nearby venues.
		limited := len(venues) >= p.opts.CandidateLimit
		if limited {
			logging.Ctx(ctx).Warn().Int("limit", p.opts.CandidateLimit).
				Msg("Candidate limit reached, venues past it are not considered")
		}
		return Patch{
			Apply: func(n *State) {
				n.Candidates = venues
				n.CandidateSource = sourceStore
			},
			Trace: fmt.Sprintf("source=%s count=%d limited=%t", sourceStore, len(venues), limited),
		}, nil
	}

	given := make([]models.Venue, 0, len(s.Request.Candidates))
	var refs []string
	for i := range s.Request.Candidates {
		c := &s.Request.Candidates[i]
		if isReference(c) {
			refs = append(refs, c.PlaceID)
			continue
		}
		given = append(given, *c)
	}

	if len(refs) > 0 {
		looked, err := p.deps.Venues.VenuesByIDs(ctx, refs)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: venues by id: %w", ErrDataStore, err)
		}
		given = append(given, looked...)
	}

	venues := dedupe(models.FilterEligible(given))
	dropped := len(s.Request.Candidates) - len(venues)
	return Patch{
		Apply: func(n *State) {
			n.Candidates = venues
			n.CandidateSource = sourceRequest
		},
		Trace: fmt.Sprintf("source=%s count=%d refs=%d dropped=%d", sourceRequest, len(venues), len(refs), dropped),
	}, nil
}

// isReference reports whether a request candidate only names a place_id.
func isReference(v *models.Venue) bool {
	return strings.TrimSpace(v.PlaceID) != "" &&
		strings.TrimSpace(v.Name) == "" &&
		strings.TrimSpace(v.Address) == ""
}

// dedupe keeps the first venue for each place_id.
func dedupe(venues []models.Venue) []models.Venue {
	seen := make(map[string]struct{}, len(venues))
	out := venues[:0:0]
	for i := range venues {
		if _, ok := seen[venues[i].PlaceID]; ok {
			continue
		}
		seen[venues[i].PlaceID] = struct{}{}
		out = append(out, venues[i])
	}
	return out
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) filterGenres(_ context.Context, s State) (Patch, error) {
	res := p.deps.Genres.Filter(s.Request.Query, s.Candidates, s.Request.MaxResults)
	return Patch{
		Apply: func(n *State) {
			n.Genres = res.Genres
			n.GenreApplied = res.Applied
			n.Filtered = res.Venues
		},
		Trace: fmt.Sprintf("genres=%s applied=%t kept=%d floor=%d",
			genre.String(res.Genres), res.Applied, len(res.Venues), genre.Floor(s.Request.MaxResults)),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) resolveLocation(ctx context.Context, s State) (Patch, error) {
	res := p.deps.Locator.Resolve(ctx, s.Request.Query)

	radius := "null"
	if res.HardMaxKm != nil {
		radius = fmt.Sprintf("%.1f", *res.HardMaxKm)
	}
	text := res.LocationText
	if text == "" {
		text = "-"
	}
	return Patch{
		Apply: func(n *State) { n.Location = res },
		Trace: fmt.Sprintf("text=%s reason=%s geocode=%s center=%t radius_km=%s basis=%s intent=%s",
			text, res.LocationReason, res.GeocodeStatus, res.Center != nil, radius, res.HardBasis, res.Intent),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) buildScope(_ context.Context, s State) (Patch, error) {
	var center *geo.Point
	if s.Location.Center != nil {
		pt := s.Location.Center.Point()
		center = &pt
	}

	res := p.deps.Scope.Build(s.Filtered, center, s.Location.HardMaxKm)
	if res.Relaxed {
		metrics.RecordFallback("scope_relax")
	}
	return Patch{
		Apply: func(n *State) { n.Scope = res },
		Trace: fmt.Sprintf("in_scope=%d relaxed=%t", len(res.Items), res.Relaxed),
	}, nil
}

// gatherSocial runs the follow-graph BFS and the raw post fetch
// concurrently. Both reads are optional; failures leave partial data.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) gatherSocial(ctx context.Context, s State) (Patch, error) {
	requester := s.Request.RequesterID
	ids := make([]string, len(s.Scope.Items))
	for i := range s.Scope.Items {
		ids[i] = s.Scope.Items[i].PlaceID
	}

	var (
		dist     models.SocialDistanceMap
		stats    social.Stats
		posts    []models.EvidencePost
		graphErr error
		postErr  error
	)

	// Neither goroutine returns an error so one failure never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		if requester == "" || p.deps.Graph == nil {
			return nil
		}
		gctx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
		defer cancel()
		dist, stats, graphErr = p.deps.Graph.Distances(gctx, requester)
		return nil
	})
	g.Go(func() error {
		if len(ids) == 0 || p.deps.Posts == nil {
			return nil
		}
		pctx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
		defer cancel()
		posts, postErr = p.deps.Posts.PostsByVenues(pctx, ids, requester, p.opts.PostsPerVenue)
		return nil
	})
	_ = g.Wait()

	logger := logging.Ctx(ctx)
	if graphErr != nil {
		metrics.RecordFallback("social_partial")
		logger.Warn().Err(graphErr).Int("reached", len(dist)).Msg("Follow graph read failed, using partial distances")
	}
	if postErr != nil {
		metrics.RecordFallback("posts_unavailable")
		logger.Warn().Err(postErr).Int("venues", len(ids)).Msg("Post read failed, continuing without evidence")
		posts = nil
	}
	if dist == nil {
		dist = models.SocialDistanceMap{}
	}

	return Patch{
		Apply: func(n *State) {
			n.Distances = dist
			n.Posts = posts
		},
		Trace: fmt.Sprintf("reachable=%d hops=%d queries=%d truncated=%t graph_error=%t posts=%d posts_error=%t",
			len(dist), stats.Hops, stats.Queries, stats.Truncated, graphErr != nil, len(posts), postErr != nil),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) buildEvidence(_ context.Context, s State) (Patch, error) {
	agg := evidence.Build(s.Posts, s.Distances, s.Request.RequesterID)
	return Patch{
		Apply: func(n *State) { n.Evidence = agg },
		Trace: fmt.Sprintf("posts=%d venues=%d", agg.Posts, len(agg.ByVenue)),
	}, nil
}

// buildPool keeps the first PoolSize scoped items. With a center the scope
// is already nearest-first. Without one, socially endorsed venues lead.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) buildPool(_ context.Context, s State) (Patch, error) {
	items := s.Evidence.Apply(s.Scope.Items)
	order := "distance"
	if s.Location.Center == nil {
		order = "social"
		slices.SortStableFunc(items, func(a, b models.PoolItem) int {
			return cmp.Compare(b.SocialScore, a.SocialScore)
		})
	}
	if len(items) > p.opts.PoolSize {
		items = items[:p.opts.PoolSize]
	}

	return Patch{
		Apply: func(n *State) { n.Pool = items },
		Trace: fmt.Sprintf("size=%d order=%s", len(items), order),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) readHistory(ctx context.Context, s State) (Patch, error) {
	if p.deps.History == nil || s.NewThread || s.Request.RequesterID == "" || p.opts.HistoryTurns == 0 {
		return Patch{Trace: "turns=0 skipped=true"}, nil
	}

	turns, err := p.deps.History.Recent(ctx, s.Request.ThreadID, s.Request.RequesterID, p.opts.HistoryTurns)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("thread_id", s.Request.ThreadID).Msg("Conversation history unavailable")
		return Patch{Trace: "turns=0 error=true"}, nil
	}
	return Patch{
		Apply: func(n *State) { n.History = turns },
		Trace: fmt.Sprintf("turns=%d", len(turns)),
	}, nil
}

// rank asks the oracle to pick from the pool. Any failure, including an
// unparseable reply, takes the nearest-first fallback.
//
//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) rank(ctx context.Context, s State) (Patch, error) {
	understood := oracle.Understood{Summary: s.Request.Query, ExtractedTags: s.Genres}
	if understood.ExtractedTags == nil {
		understood.ExtractedTags = []string{}
	}
	if len(s.Pool) == 0 {
		return Patch{
			Apply: func(n *State) {
				n.Understood = understood
				n.Picks = []models.PickedResult{}
			},
			Trace: "picks=0 skipped=empty_pool",
		}, nil
	}

	label := s.Location.LocationText
	if s.Location.Center != nil {
		label = s.Location.Center.Label
	}

	ranking, err := p.deps.Ranker.Rank(ctx, oracle.RankRequest{
		Query:         s.Request.Query,
		MaxResults:    s.Request.MaxResults,
		Genres:        s.Genres,
		LocationLabel: label,
		Pool:          s.Pool,
		History:       s.History,
	})
	if err != nil {
		metrics.RecordFallback("oracle")
		logging.Ctx(ctx).Warn().Err(err).Int("pool", len(s.Pool)).Msg("Ranking oracle failed, using nearest-first fallback")
		picks := oracle.Fallback(s.Pool, s.Request.MaxResults)
		return Patch{
			Apply: func(n *State) {
				n.Understood = understood
				n.Picks = picks
				n.Fallback = true
			},
			Trace: fmt.Sprintf("picks=%d fallback=true", len(picks)),
		}, nil
	}

	return Patch{
		Apply: func(n *State) {
			n.Understood = ranking.Understood
			n.AssistantMessage = ranking.AssistantMessage
			n.Picks = ranking.Results
		},
		Trace: fmt.Sprintf("picks=%d dropped=%d fallback=false", len(ranking.Results), ranking.Dropped),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) merge(_ context.Context, s State) (Patch, error) {
	results, stats := merge.Merge(s.Pool, s.Picks, s.Evidence, s.Request.MaxResults, s.Fallback)
	return Patch{
		Apply: func(n *State) { n.Results = results },
		Trace: fmt.Sprintf("results=%d picked=%d dropped=%d filled=%d proofs=%d",
			len(results), stats.Picked, stats.Dropped, stats.Filled, stats.Proofs),
	}, nil
}

//nolint:gocritic // hugeParam: s passed by value for immutability
func (p *Pipeline) respond(_ context.Context, s State) (Patch, error) {
	genres := s.Genres
	if genres == nil {
		genres = []string{}
	}

	resp := &Response{
		OK:               true,
		Understood:       s.Understood,
		AssistantMessage: s.AssistantMessage,
		Location: &LocationView{
			LocationText:   s.Location.LocationText,
			LocationReason: s.Location.LocationReason,
			Center:         s.Location.Center,
			HardMaxKm:      s.Location.HardMaxKm,
			HardBasis:      s.Location.HardBasis,
			ScopeRelaxed:   s.Scope.Relaxed,
			GeocodeStatus:  s.Location.GeocodeStatus,
		},
		Results: s.Results,
		Meta: Meta{
			CandidatesCount:    len(s.Candidates),
			PoolCount:          len(s.Pool),
			GenresFromQuery:    genres,
			GenreFilterApplied: s.GenreApplied,
			Fallback:           s.Fallback,
			ThreadID:           s.Request.ThreadID,
		},
	}
	return Patch{
		Apply: func(n *State) { n.Response = resp },
		Trace: fmt.Sprintf("ok=true results=%d", len(s.Results)),
	}, nil
}
