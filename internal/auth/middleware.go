// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/kuchikomi/internal/logging"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates requests.
type Middleware struct {
	jwt         *JWTManager
	mode        AuthMode
	anonymousID string
	onError     ErrorWriter
}

// NewMiddleware creates the middleware. jwtManager may be nil in
// AuthModeNone, where every request runs as anonymousID. A nil onError
// writes a plain-text 401.
func NewMiddleware(jwtManager *JWTManager, mode AuthMode, anonymousID string, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{jwt: jwtManager, mode: mode, anonymousID: anonymousID, onError: onError}
}

// Authenticate stores the AuthSubject in the request context, or rejects the
// request through the ErrorWriter.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if err != nil {
			outcome := outcomeInvalid
			if errors.Is(err, ErrNoCredentials) {
				outcome = outcomeMissing
			}
			recordAttempt(m.mode, outcome)
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			m.onError(w, r, err)
			return
		}

		recordAttempt(m.mode, outcomeSuccess)
		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithRequester(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	if m.mode == AuthModeNone {
		if m.anonymousID == "" {
			return nil, ErrNoCredentials
		}
		return &AuthSubject{ID: m.anonymousID, AuthMethod: AuthModeNone}, nil
	}
	if m.jwt == nil {
		return nil, ErrInvalidToken
	}

	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return SubjectFromClaims(claims), nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
