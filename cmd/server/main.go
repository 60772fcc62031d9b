// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/kuchikomi/internal/api"
	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/database"
	"github.com/tomtom215/kuchikomi/internal/genre"
	"github.com/tomtom215/kuchikomi/internal/location"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/pipeline"
	"github.com/tomtom215/kuchikomi/internal/scope"
	"github.com/tomtom215/kuchikomi/internal/social"
	"github.com/tomtom215/kuchikomi/internal/supervisor"
	"github.com/tomtom215/kuchikomi/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if len(os.Args) == 3 && os.Args[1] == "token" {
		if err := mintToken(&cfg.Security, os.Args[2], os.Stdout); err != nil {
			logging.Fatal().Err(err).Msg("Failed to mint token")
		}
		return
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("geocode_enabled", cfg.Geocode.Enabled).
		Bool("oracle_enabled", cfg.Oracle.Enabled).
		Bool("history_enabled", cfg.History.Enabled).
		Msg("Starting Kuchikomi")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedDemoData {
		seeded, err := db.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logging.Info().Bool("seeded", seeded).Msg("Demo data check complete")
	}

	hist, err := initHistory(ctx, &cfg.History)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close()
	}

	geocoder, err := initGeocoder(&cfg.Geocode)
	if err != nil {
		return err
	}
	oracleClient, adapter, err := initOracle(ctx, &cfg.Oracle)
	if err != nil {
		return err
	}

	genres := genre.Default()
	deps := pipeline.Deps{
		Venues:  db,
		Posts:   db,
		Graph:   social.NewGraph(db, social.NewOptions(cfg.Social)),
		Locator: location.NewResolver(cfg.Location, geocoder, adapter, genres),
		Genres:  genres,
		Scope:   scope.NewBuilder(cfg.Pipeline.RelaxLimit),
		Ranker:  adapter,
	}
	handlerDeps := api.HandlerDeps{
		VenueStore: db,
		Breakers: map[string]api.BreakerReporter{
			"geocode": geocoder,
			"oracle":  oracleClient,
		},
		RequestTimeout: cfg.Server.Timeout,
		Version:        version,
	}
	monitored := map[string]services.Pinger{"venue_store": db}
	// Assigned only when enabled so the interfaces stay nil otherwise.
	if hist != nil {
		deps.History = hist
		handlerDeps.Threads = hist
		handlerDeps.HistoryStore = hist
		monitored["history_store"] = hist
	}
	handlerDeps.Recommender = pipeline.New(deps, pipeline.NewOptions(cfg.Pipeline, cfg.Oracle.HistoryTurns))

	authn, err := initAuth(&cfg.Security)
	if err != nil {
		return err
	}
	router := api.NewRouter(api.NewHandler(handlerDeps), authn, api.RouterOptions{
		Middleware: api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewStoreMonitorService(monitored, services.DefaultMonitorInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	return nil
}
