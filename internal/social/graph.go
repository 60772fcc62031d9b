// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package social computes hop distances from a requester over the accepted
// follow graph.
//
// The traversal is a bounded breadth-first search. Each hop builds a new
// frontier from the previous one and never revisits a recorded author, so a
// distance, once set, is the shortest. The map is built per request and is
// never shared.
package social

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// Traversal bounds
const (
	DefaultMaxHops  = 3
	MinMaxHops      = 1
	MaxMaxHops      = 6
	DefaultMaxNodes = 3000
	MinMaxNodes     = 200
	MaxMaxNodes     = 20000
	MaxBatchSize    = 1000

	// batchConcurrency bounds parallel edge queries within one hop.
	batchConcurrency = 4
)

// EdgeSource returns accepted follower->followee edges for a set of
// followers.
type EdgeSource interface {
	AcceptedFollowees(ctx context.Context, followerIDs []string) ([]models.FollowEdge, error)
}

// Options are clamped traversal bounds.
type Options struct {
	MaxHops   int
	MaxNodes  int
	BatchSize int
}

// NewOptions applies defaults and clamps cfg into the allowed ranges.
func NewOptions(cfg config.SocialConfig) Options {
	opts := Options{MaxHops: cfg.MaxHops, MaxNodes: cfg.MaxNodes, BatchSize: cfg.BatchSize}
	if opts.MaxHops == 0 {
		opts.MaxHops = DefaultMaxHops
	}
	if opts.MaxNodes == 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	opts.MaxHops = min(max(opts.MaxHops, MinMaxHops), MaxMaxHops)
	opts.MaxNodes = min(max(opts.MaxNodes, MinMaxNodes), MaxMaxNodes)
	if opts.BatchSize <= 0 || opts.BatchSize > MaxBatchSize {
		opts.BatchSize = MaxBatchSize
	}
	return opts
}

// Stats summarizes one traversal for trace lines.
type Stats struct {
	Hops      int
	Nodes     int
	Queries   int
	Truncated bool
}

// Graph runs traversals against an edge source.
type Graph struct {
	source EdgeSource
	opts   Options
}

// NewGraph creates a graph over source.
func NewGraph(source EdgeSource, opts Options) *Graph {
	return &Graph{source: source, opts: opts}
}

// Distances returns hop distances from requesterID. On an edge query
// failure the map built so far is returned together with the error.
func (g *Graph) Distances(ctx context.Context, requesterID string) (models.SocialDistanceMap, Stats, error) {
	dist := make(models.SocialDistanceMap)
	var stats Stats
	if requesterID == "" {
		return dist, stats, nil
	}

	frontier := []string{requesterID}
	for hop := 1; hop <= g.opts.MaxHops && len(frontier) > 0; hop++ {
		edges, queries, err := g.fetch(ctx, frontier)
		stats.Queries += queries
		if err != nil {
			stats.Nodes = len(dist)
			return dist, stats, fmt.Errorf("hop %d: %w", hop, err)
		}

		var full bool
		frontier, full = Expand(dist, edges, requesterID, hop, g.opts.MaxNodes)
		stats.Hops = hop
		if full {
			stats.Truncated = true
			break
		}
	}

	stats.Nodes = len(dist)
	return dist, stats, nil
}

// fetch queries edges for frontier in batches. Results keep batch order.
func (g *Graph) fetch(ctx context.Context, frontier []string) ([]models.FollowEdge, int, error) {
	batches := chunk(frontier, g.opts.BatchSize)
	results := make([][]models.FollowEdge, len(batches))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(batchConcurrency)
	for i, batch := range batches {
		eg.Go(func() error {
			edges, err := g.source.AcceptedFollowees(egCtx, batch)
			if err != nil {
				return err
			}
			results[i] = edges
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, len(batches), err
	}

	var all []models.FollowEdge
	for _, r := range results {
		all = append(all, r...)
	}
	return all, len(batches), nil
}

// Expand records every followee in edges not yet in dist at distance hop
// and returns them as the next frontier. The requester is never recorded.
// full reports that maxNodes was reached; the returned frontier then holds
// only what was recorded before the limit.
func Expand(dist models.SocialDistanceMap, edges []models.FollowEdge, requesterID string, hop, maxNodes int) (next []string, full bool) {
	for _, e := range edges {
		if len(dist) >= maxNodes {
			return next, true
		}
		id := e.FolloweeID
		if id == "" || id == requesterID {
			continue
		}
		if _, seen := dist[id]; seen {
			continue
		}
		dist[id] = hop
		next = append(next, id)
	}
	return next, len(dist) >= maxNodes
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
