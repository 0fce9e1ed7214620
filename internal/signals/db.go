// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package signals provides the read-only query surface over the community
// events database that feeds the notification curator. It is backed by an
// embedded DuckDB instance; the engine itself never writes events, activity,
// or profiles — those are produced by the surrounding platform.
package signals

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/liebefeld/tribe-engine/internal/logging"
)

// Config tunes the embedded events database.
type Config struct {
	// Path is the DuckDB file location. ":memory:" gives an ephemeral store.
	Path string

	// MaxMemory caps DuckDB's memory usage, e.g. "256MB".
	MaxMemory string

	// Threads is the DuckDB worker thread count; <=0 uses all CPUs.
	Threads int

	// SeedDemoData loads a small set of Liebefeld demo rows on startup.
	SeedDemoData bool
}

// DB wraps the DuckDB connection holding event, activity and profile rows.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the events database and bootstraps its schema.
func Open(cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "256MB"
	}

	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Auto-install/auto-load disabled: no extensions are needed and leaving
	// them on can hang startup in restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open events database: %w", err)
	}
	conn.SetMaxOpenConns(threads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		if cerr := conn.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("failed to close events database after init error")
		}
		return nil, fmt.Errorf("failed to initialize events schema: %w", err)
	}

	if cfg.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("failed to seed demo data")
		}
	}

	logging.Info().Str("path", cfg.Path).Msg("events database ready")
	return db, nil
}

// Close flushes the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("failed to checkpoint events database before close")
	}
	return db.conn.Close()
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("events database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			category VARCHAR DEFAULT '',
			location VARCHAR DEFAULT '',
			city VARCHAR DEFAULT '',
			event_date DATE NOT NULL,
			event_time VARCHAR DEFAULT '',
			popularity INTEGER DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			username VARCHAR NOT NULL,
			action VARCHAR NOT NULL,
			event_id VARCHAR DEFAULT '',
			event_title VARCHAR DEFAULT '',
			avatar_url VARCHAR DEFAULT '',
			occurred_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			username VARCHAR PRIMARY KEY,
			avatar_url VARCHAR DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
