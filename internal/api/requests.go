// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/pipeline"
)

// maxBodyBytes bounds request bodies. Inline candidate lists dominate.
const maxBodyBytes = 2 << 20

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Query      string         `json:"query" validate:"required,notblank,max=500"`
	MaxResults *int           `json:"maxResults" validate:"omitempty,gte=1,lte=10"`
	ThreadID   string         `json:"threadId" validate:"omitempty,max=128"`
	Candidates []models.Venue `json:"candidates" validate:"omitempty,max=5000,dive"`
}

// ToPipeline converts the body into a pipeline request for requesterID.
func (req *RecommendRequest) ToPipeline(requesterID string) pipeline.Request {
	out := pipeline.Request{
		Query:       req.Query,
		RequesterID: requesterID,
		ThreadID:    req.ThreadID,
		Candidates:  req.Candidates,
	}
	if req.MaxResults != nil {
		out.MaxResults = *req.MaxResults
	}
	return out
}

// decodeJSON reads a single JSON document from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
