// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package auth

import (
	"context"
	"errors"
	"strings"
)

// AuthMode is the authentication strategy.
type AuthMode string

const (
	// AuthModeNone runs every request as the anonymous requester.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires an HS256 bearer token.
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a configuration value to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jwt", "":
		return AuthModeJWT, nil
	case "none":
		return AuthModeNone, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// Authentication errors
var (
	// ErrNoCredentials means the request carried no bearer token.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidToken covers malformed, tampered, expired, and wrongly
	// issued tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthSubject is the authenticated requester.
type AuthSubject struct {
	// ID is the requester id used for the follow graph and history.
	ID string `json:"id"`

	// Name is the display name from the token, when present.
	Name string `json:"name,omitempty"`

	AuthMethod AuthMode `json:"auth_method"`
	ExpiresAt  int64    `json:"expires_at,omitempty"`
}

// SubjectFromClaims builds a subject from validated claims.
func SubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}
	s := &AuthSubject{
		ID:         claims.Subject,
		Name:       claims.Name,
		AuthMethod: AuthModeJWT,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return s
}

type subjectKey struct{}

// ContextWithSubject stores the subject.
func ContextWithSubject(ctx context.Context, s *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFromContext returns the subject stored by the middleware.
func SubjectFromContext(ctx context.Context) (*AuthSubject, bool) {
	s, ok := ctx.Value(subjectKey{}).(*AuthSubject)
	return s, ok && s != nil
}

// RequesterID returns the subject's id, or "" when unauthenticated.
func RequesterID(ctx context.Context) string {
	if s, ok := SubjectFromContext(ctx); ok {
		return s.ID
	}
	return ""
}
