// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package validation validates decoded API requests with
// go-playground/validator v10.
//
// A single validator instance is shared across requests; it caches struct
// metadata after the first use. Errors name fields by their json tag and
// convert to the API's VALIDATION_ERROR body:
//
//	type RecommendRequest struct {
//	    Query      string `json:"query" validate:"required,notblank,max=500"`
//	    MaxResults *int   `json:"maxResults" validate:"omitempty,min=1,max=10"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Custom rules:
//
//	notblank  string is not empty after trimming whitespace
package validation
