// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package config defines the engine configuration and loads it from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Events   EventsConfig   `koanf:"events"`
	Curation CurationConfig `koanf:"curation"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	Environment     string        `koanf:"environment"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// StorageConfig configures the durable key-value store holding interaction
// logs, preference tables, and onboarding buckets.
type StorageConfig struct {
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// EventsConfig configures the embedded events database feeding the
// notification curator.
type EventsConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// CurationConfig configures the notification curation windows.
type CurationConfig struct {
	NewEventLookback time.Duration `koanf:"new_event_lookback"`
	ActivityWindow   time.Duration `koanf:"activity_window"`
	MemberLookback   time.Duration `koanf:"member_lookback"`
	SourceTimeout    time.Duration `koanf:"source_timeout"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, overridden by file and env.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8370,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			Environment:     "development",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Path:       "/data/tribe/preferences",
			GCInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			Path:         "/data/tribe/events.duckdb",
			MaxMemory:    "256MB",
			Threads:      0, // 0 = use runtime.NumCPU()
			SeedDemoData: false,
		},
		Curation: CurationConfig{
			NewEventLookback: 24 * time.Hour,
			ActivityWindow:   2 * time.Hour,
			MemberLookback:   24 * time.Hour,
			SourceTimeout:    5 * time.Second,
			BreakerTimeout:   30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that would break startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1,65535]", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be at least 1, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive, got %s", c.Server.RateLimitWindow)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	if c.Events.Path == "" {
		return fmt.Errorf("events.path must not be empty")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not one of json, console", c.Logging.Format)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"curation.new_event_lookback", c.Curation.NewEventLookback},
		{"curation.activity_window", c.Curation.ActivityWindow},
		{"curation.member_lookback", c.Curation.MemberLookback},
		{"curation.source_timeout", c.Curation.SourceTimeout},
		{"curation.breaker_timeout", c.Curation.BreakerTimeout},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
