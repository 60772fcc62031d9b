// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/kuchikomi/internal/auth"
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/database"
	"github.com/tomtom215/kuchikomi/internal/geocode"
	"github.com/tomtom215/kuchikomi/internal/oracle"
)

func TestInitAuth(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SecurityConfig
		wantErr bool
	}{
		{"none", config.SecurityConfig{AuthMode: "none"}, false},
		{"jwt", config.SecurityConfig{AuthMode: "jwt", JWTSecret: "0123456789abcdef0123456789abcdef"}, false},
		{"jwt short secret", config.SecurityConfig{AuthMode: "jwt", JWTSecret: "short"}, true},
		{"unknown mode", config.SecurityConfig{AuthMode: "basic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := initAuth(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && mw == nil {
				t.Fatal("nil middleware")
			}
		})
	}
}

func TestInitAuth_NoneUsesDemoRequester(t *testing.T) {
	mw, err := initAuth(&config.SecurityConfig{AuthMode: "none"})
	if err != nil {
		t.Fatal(err)
	}
	var got string
	mw.Authenticate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = auth.RequesterID(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != database.DemoUserID {
		t.Errorf("requester = %q, want %q", got, database.DemoUserID)
	}
}

func TestInitGeocoder_Disabled(t *testing.T) {
	provider, err := initGeocoder(&config.GeocodeConfig{Enabled: false, CacheSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := provider.Geocode(context.Background(), "Shibuya"); !errors.Is(err, geocode.ErrDisabled) {
		t.Errorf("Geocode() error = %v, want ErrDisabled", err)
	}
}

func TestInitOracle_Disabled(t *testing.T) {
	client, adapter, err := initOracle(context.Background(), &config.OracleConfig{Enabled: false, TurnMaxChars: 400})
	if err != nil {
		t.Fatal(err)
	}
	if client.BreakerState() != "closed" {
		t.Errorf("breaker = %s, want closed", client.BreakerState())
	}
	if _, err := adapter.InferPlace(context.Background(), "ramen"); !errors.Is(err, oracle.ErrDisabled) {
		t.Errorf("InferPlace() error = %v, want ErrDisabled", err)
	}
}

func TestInitHistory_Disabled(t *testing.T) {
	store, err := initHistory(context.Background(), &config.HistoryConfig{Enabled: false})
	if err != nil || store != nil {
		t.Errorf("initHistory() = %v, %v; want nil, nil", store, err)
	}
}

func TestMintToken(t *testing.T) {
	cfg := &config.SecurityConfig{AuthMode: "jwt", JWTSecret: "0123456789abcdef0123456789abcdef"}
	var out strings.Builder
	if err := mintToken(cfg, "user-a", &out); err != nil {
		t.Fatal(err)
	}

	jwtManager, err := auth.NewJWTManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := jwtManager.ValidateToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "user-a" {
		t.Errorf("subject = %q, want user-a", claims.Subject)
	}
}

func TestMintToken_ShortSecret(t *testing.T) {
	var out strings.Builder
	if err := mintToken(&config.SecurityConfig{JWTSecret: "short"}, "user-a", &out); err == nil {
		t.Error("expected error for short secret")
	}
}
