// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package kv provides the durable key-value persistence port used by the
// personalization engine for its interaction logs and preference tables.
//
// The port is deliberately narrow: string values by string key. Unreadable or
// absent values are reported as absent, never as errors - the engine treats
// missing or corrupt data as empty.
package kv

// Store is the persistence port. Production wiring binds it to BadgerDB;
// tests use the in-memory implementation.
type Store interface {
	// Get returns the stored value for key, or ok=false if the key is
	// absent or the stored value could not be read.
	Get(key string) (value string, ok bool)

	// Set durably stores value under key, replacing any previous value.
	Set(key, value string) error
}
