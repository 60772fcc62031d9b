// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/kuchikomi/internal/auth"
	"github.com/tomtom215/kuchikomi/internal/api"
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/database"
	"github.com/tomtom215/kuchikomi/internal/geocode"
	"github.com/tomtom215/kuchikomi/internal/history"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/oracle"
)

// initHistory opens the Postgres history store, or returns nil when history
// is disabled.
func initHistory(ctx context.Context, cfg *config.HistoryConfig) (*history.Store, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Conversation history disabled (HISTORY_ENABLED=false)")
		return nil, nil
	}
	store, err := history.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize history store: %w", err)
	}
	return store, nil
}

// initGeocoder builds the single process-wide geocode provider. When
// geocoding is disabled every lookup fails fast with geocode.ErrDisabled and
// the resolver reports geocode_status "error".
func initGeocoder(cfg *config.GeocodeConfig) (*geocode.Provider, error) {
	var upstream geocode.Geocoder = geocode.Disabled()
	if cfg.Enabled {
		upstream = geocode.NewGoogleClient(cfg)
	} else {
		logging.Warn().Msg("Geocoding disabled (GEOCODE_ENABLED=false)")
	}
	provider, err := geocode.NewProvider(upstream, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize geocoder: %w", err)
	}
	return provider, nil
}

// initOracle builds the guarded oracle client and the adapter the pipeline
// and the location resolver share. When the oracle is disabled every call
// fails with oracle.ErrDisabled and the pipeline takes its fallbacks.
func initOracle(ctx context.Context, cfg *config.OracleConfig) (*oracle.Client, *oracle.Adapter, error) {
	gen := oracle.Disabled()
	if cfg.Enabled {
		gemini, err := oracle.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize oracle: %w", err)
		}
		logging.Info().Str("model", gemini.Name()).Msg("Ranking oracle configured")
		gen = gemini
	} else {
		logging.Warn().Msg("Ranking oracle disabled (ORACLE_ENABLED=false)")
	}
	client := oracle.NewClient(gen, cfg)
	return client, oracle.NewAdapter(client, cfg.TurnMaxChars), nil
}

// initAuth builds the request authenticator. AUTH_MODE=none runs every
// request as the demo requester so the seeded follow graph applies.
func initAuth(cfg *config.SecurityConfig) (*auth.Middleware, error) {
	mode, err := auth.ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	if mode == auth.AuthModeNone {
		logging.Warn().Str("requester", database.DemoUserID).Msg("Authentication disabled (AUTH_MODE=none)")
		return auth.NewMiddleware(nil, mode, database.DemoUserID, api.AuthErrorWriter), nil
	}

	jwtManager, err := auth.NewJWTManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize JWT: %w", err)
	}
	return auth.NewMiddleware(jwtManager, mode, "", api.AuthErrorWriter), nil
}

// mintToken writes a signed bearer token for subject to w. Local
// development only; it needs the same JWT_SECRET as the server.
func mintToken(cfg *config.SecurityConfig, subject string, w io.Writer) error {
	jwtManager, err := auth.NewJWTManager(cfg)
	if err != nil {
		return err
	}
	token, err := jwtManager.GenerateToken(subject, subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
