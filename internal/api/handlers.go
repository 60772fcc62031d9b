// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kuchikomi/internal/auth"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/models"
	"github.com/tomtom215/kuchikomi/internal/pipeline"
	"github.com/tomtom215/kuchikomi/internal/validation"
)

// Default and maximum turns returned by GET /api/v1/threads/{id}.
const (
	defaultThreadLimit = 20
	maxThreadLimit     = 50
)

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// ThreadReader reads conversation turns.
type ThreadReader interface {
	Recent(ctx context.Context, threadID, userID string, limit int) ([]models.Turn, error)
}

// Pinger is a store with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes an upstream circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

// HandlerDeps are the handler collaborators. Threads and HistoryStore are
// nil when conversation history is disabled.
type HandlerDeps struct {
	Recommender  Recommender
	Threads      ThreadReader
	VenueStore   Pinger
	HistoryStore Pinger
	Breakers     map[string]BreakerReporter

	// RequestTimeout bounds one pipeline run. Zero means no extra bound.
	RequestTimeout time.Duration
	Version        string
}

// Handler serves the API endpoints.
type Handler struct {
	deps      HandlerDeps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{deps: deps, startTime: time.Now()}
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	requesterID := auth.RequesterID(r.Context())
	if requesterID == "" {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	var body RecommendRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	ctx := r.Context()
	if h.deps.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deps.RequestTimeout)
		defer cancel()
	}

	resp, err := h.deps.Recommender.Run(ctx, body.ToPipeline(requesterID))
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		if errors.Is(err, pipeline.ErrDataStore) {
			respondError(w, r, http.StatusInternalServerError, ErrCodeDataStore, "Failed to load candidate venues", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate recommendations", nil)
		return
	}

	respondData(w, r, http.StatusOK, resp)
}

// ThreadResponse is the body of GET /api/v1/threads/{id}.
type ThreadResponse struct {
	ThreadID string        `json:"thread_id"`
	Turns    []models.Turn `json:"turns"`
}

// Thread handles GET /api/v1/threads/{id}, returning the requester's turns
// oldest first.
func (h *Handler) Thread(w http.ResponseWriter, r *http.Request) {
	if h.deps.Threads == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Conversation history is disabled", nil)
		return
	}
	requesterID := auth.RequesterID(r.Context())
	if requesterID == "" {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	threadID := strings.TrimSpace(chi.URLParam(r, "id"))
	if threadID == "" || len(threadID) > 128 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "thread id must be 1 to 128 characters", nil)
		return
	}

	limit := defaultThreadLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxThreadLimit {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
				"limit must be between 1 and "+strconv.Itoa(maxThreadLimit),
				map[string]any{"field": "limit"})
			return
		}
		limit = n
	}

	turns, err := h.deps.Threads.Recent(r.Context(), threadID, requesterID, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("thread_id", threadID).Msg("Failed to read thread")
		respondError(w, r, http.StatusInternalServerError, ErrCodeDataStore, "Failed to read conversation history", nil)
		return
	}
	if len(turns) == 0 {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Thread not found", nil)
		return
	}

	respondData(w, r, http.StatusOK, &ThreadResponse{ThreadID: threadID, Turns: turns})
}

// AuthErrorWriter renders authentication failures as 401 envelopes.
func AuthErrorWriter(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid or expired token"
	if errors.Is(err, auth.ErrNoCredentials) {
		message = "Missing bearer token"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="kuchikomi"`)
	respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}
