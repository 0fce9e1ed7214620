// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Command server runs the Tribe personalization engine: the interaction
// store, preference aggregator, relevance scorer, and notification curator
// behind one HTTP API, with live pushes over WebSocket.
//
// Configuration comes from defaults, an optional YAML file (CONFIG_PATH),
// and environment variables, in that order. See internal/config.
//
//	HTTP_PORT=8370 BADGER_PATH=/data/tribe/preferences \
//	DUCKDB_PATH=/data/tribe/events.duckdb SEED_DEMO_DATA=true server
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/liebefeld/tribe-engine/internal/api"
	"github.com/liebefeld/tribe-engine/internal/bus"
	"github.com/liebefeld/tribe-engine/internal/config"
	"github.com/liebefeld/tribe-engine/internal/engine"
	"github.com/liebefeld/tribe-engine/internal/kv"
	"github.com/liebefeld/tribe-engine/internal/logging"
	"github.com/liebefeld/tribe-engine/internal/notify"
	"github.com/liebefeld/tribe-engine/internal/signals"
	"github.com/liebefeld/tribe-engine/internal/supervisor"
	ws "github.com/liebefeld/tribe-engine/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("badger_path", cfg.Storage.Path).
		Str("duckdb_path", cfg.Events.Path).
		Msg("Starting tribe-engine")

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Engine exited with error")
	}
	logging.Info().Msg("Engine stopped")
}

func run(cfg *config.Config) error {
	// Durable preference store. Interaction logs, aggregate tables, and
	// onboarding buckets all live here.
	badgerDB, err := kv.OpenBadger(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preference store")
		}
	}()

	// Events database feeding the notification curator.
	eventsDB, err := signals.Open(signals.Config{
		Path:         cfg.Events.Path,
		MaxMemory:    cfg.Events.MaxMemory,
		Threads:      cfg.Events.Threads,
		SeedDemoData: cfg.Events.SeedDemoData,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := eventsDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing events database")
		}
	}()

	eng := engine.New(kv.NewBadgerStore(badgerDB))

	// Interaction and preference updates fan out through the in-process bus
	// to WebSocket subscribers.
	b := bus.New()
	defer func() {
		if err := b.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing bus")
		}
	}()
	eng.SetPublisher(b)

	hub := ws.NewHub()
	forwarder := bus.NewForwarder(b, hub)

	curator := notify.NewCurator(eventsDB, eng.Scorer(), notify.Config{
		NewEventLookback: cfg.Curation.NewEventLookback,
		ActivityWindow:   cfg.Curation.ActivityWindow,
		MemberLookback:   cfg.Curation.MemberLookback,
		SourceTimeout:    cfg.Curation.SourceTimeout,
		BreakerTimeout:   cfg.Curation.BreakerTimeout,
	})

	handler := api.NewHandler(eng, curator)
	router := api.NewRouter(&cfg.Server, handler, hub)
	server := api.NewServer(&cfg.Server, router)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(kv.NewGCService(badgerDB, cfg.Storage.GCInterval))
	tree.AddPushService(hub)
	tree.AddPushService(forwarder)
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service missed shutdown timeout")
		}
	}
	return err
}
