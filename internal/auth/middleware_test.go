// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/kuchikomi/internal/logging"
)

func echoRequester() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if logging.RequesterFromContext(r.Context()) != subject.ID {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(subject.ID))
	})
}

func TestAuthenticate_JWT(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateToken("user-7", "Kenta")
	if err != nil {
		t.Fatal(err)
	}

	var gotErr error
	mw := NewMiddleware(m, AuthModeJWT, "", func(w http.ResponseWriter, _ *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	})
	handler := mw.Authenticate(echoRequester())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantErr    error
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK, "user-7", nil},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "user-7", nil},
		{"missing header", "", http.StatusUnauthorized, "", ErrNoCredentials},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "", ErrInvalidToken},
		{"empty token", "Bearer ", http.StatusUnauthorized, "", ErrInvalidToken},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized, "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr = nil
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantErr != nil && !errors.Is(gotErr, tt.wantErr) {
				t.Errorf("error = %v, want %v", gotErr, tt.wantErr)
			}
		})
	}
}

func TestAuthenticate_None(t *testing.T) {
	handler := NewMiddleware(nil, AuthModeNone, "demo-user", nil).Authenticate(echoRequester())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "demo-user" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthenticate_DefaultErrorWriter(t *testing.T) {
	handler := NewMiddleware(newTestManager(t), AuthModeJWT, "", nil).Authenticate(echoRequester())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticate_Metrics(t *testing.T) {
	handler := NewMiddleware(newTestManager(t), AuthModeJWT, "", nil).Authenticate(echoRequester())
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues("jwt", outcomeMissing))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := testutil.ToFloat64(AuthAttempts.WithLabelValues("jwt", outcomeMissing)); got != before+1 {
		t.Errorf("missing attempts = %v, want %v", got, before+1)
	}
}

func TestRequesterID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequesterID(req.Context()) != "" {
		t.Error("expected empty requester")
	}
	ctx := ContextWithSubject(req.Context(), &AuthSubject{ID: "u1"})
	if RequesterID(ctx) != "u1" {
		t.Error("expected u1")
	}
}
