// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/kv"
	"github.com/liebefeld/tribe-engine/internal/logging"
	"github.com/liebefeld/tribe-engine/internal/metrics"
)

// tablesKey is the storage key for the persisted preference tables.
const tablesKey = "preferences:tables"

// Aggregator derives the six preference tables from the interaction logs.
//
// Tables are always rebuilt from scratch by replaying the full logs - no
// incremental patching. At personal-interaction-history scale a full replay
// is cheap, and it keeps the tables trivially consistent with the logs.
// The recomputed tables are persisted so the read path never replays.
type Aggregator struct {
	store kv.Store

	mu     sync.RWMutex
	tables *PreferenceTables
}

// NewAggregator creates an aggregator and loads any previously persisted
// tables. Corrupt or missing persisted tables start empty.
func NewAggregator(store kv.Store) *Aggregator {
	a := &Aggregator{
		store:  store,
		tables: NewPreferenceTables(),
	}

	raw, ok := store.Get(tablesKey)
	if !ok || raw == "" {
		return a
	}

	loaded := NewPreferenceTables()
	if err := json.Unmarshal([]byte(raw), loaded); err != nil {
		logging.Warn().Err(err).Msg("corrupt preference tables, starting empty")
		metrics.StorageReadFailures.WithLabelValues(tablesKey).Inc()
		return a
	}
	ensureTables(loaded)
	a.tables = loaded
	return a
}

// ensureTables re-initializes any nil maps after deserialization.
func ensureTables(t *PreferenceTables) {
	empty := NewPreferenceTables()
	if t.LikedCategories == nil {
		t.LikedCategories = empty.LikedCategories
	}
	if t.DislikedCategories == nil {
		t.DislikedCategories = empty.DislikedCategories
	}
	if t.LikedLocations == nil {
		t.LikedLocations = empty.LikedLocations
	}
	if t.DislikedLocations == nil {
		t.DislikedLocations = empty.DislikedLocations
	}
	if t.LikedKeywords == nil {
		t.LikedKeywords = empty.LikedKeywords
	}
	if t.DislikedKeywords == nil {
		t.DislikedKeywords = empty.DislikedKeywords
	}
	if t.LikedTimeSlots == nil {
		t.LikedTimeSlots = empty.LikedTimeSlots
	}
	if t.DislikedTimeSlots == nil {
		t.DislikedTimeSlots = empty.DislikedTimeSlots
	}
}

// Recompute rebuilds all six tables by replaying the full logs, persists the
// result, and makes it the current snapshot. It always succeeds on the
// in-memory side; persistence failures are returned but the fresh tables
// remain active.
func (a *Aggregator) Recompute(likes, dislikes []InteractionRecord) error {
	start := time.Now()

	tables := NewPreferenceTables()
	for _, rec := range likes {
		applyRecord(rec, tables.LikedCategories, tables.LikedLocations, tables.LikedKeywords, tables.LikedTimeSlots)
	}
	for _, rec := range dislikes {
		applyRecord(rec, tables.DislikedCategories, tables.DislikedLocations, tables.DislikedKeywords, tables.DislikedTimeSlots)
	}

	a.mu.Lock()
	a.tables = tables
	a.mu.Unlock()

	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	updateTableMetrics(tables)

	data, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("marshal preference tables: %w", err)
	}
	if err := a.store.Set(tablesKey, string(data)); err != nil {
		return fmt.Errorf("persist preference tables: %w", err)
	}
	return nil
}

// applyRecord folds one record into the given table set.
func applyRecord(rec InteractionRecord, categories, locations, keywords map[string]int, slots map[TimeSlot]int) {
	if rec.Category != "" {
		categories[rec.Category]++
	}
	if rec.Location != "" {
		locations[rec.Location]++
	}
	if rec.TimeSlot != "" {
		slots[rec.TimeSlot]++
	}
	for _, tok := range Tokenize(rec.Title) {
		keywords[tok]++
	}
}

// Tables returns a deep copy of the current tables snapshot.
func (a *Aggregator) Tables() *PreferenceTables {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tables.Clone()
}

func updateTableMetrics(t *PreferenceTables) {
	metrics.PreferenceTableEntries.WithLabelValues("liked_categories").Set(float64(len(t.LikedCategories)))
	metrics.PreferenceTableEntries.WithLabelValues("disliked_categories").Set(float64(len(t.DislikedCategories)))
	metrics.PreferenceTableEntries.WithLabelValues("liked_locations").Set(float64(len(t.LikedLocations)))
	metrics.PreferenceTableEntries.WithLabelValues("disliked_locations").Set(float64(len(t.DislikedLocations)))
	metrics.PreferenceTableEntries.WithLabelValues("liked_keywords").Set(float64(len(t.LikedKeywords)))
	metrics.PreferenceTableEntries.WithLabelValues("disliked_keywords").Set(float64(len(t.DislikedKeywords)))
	metrics.PreferenceTableEntries.WithLabelValues("liked_time_slots").Set(float64(len(t.LikedTimeSlots)))
	metrics.PreferenceTableEntries.WithLabelValues("disliked_time_slots").Set(float64(len(t.DislikedTimeSlots)))
}
