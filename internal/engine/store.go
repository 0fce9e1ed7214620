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

// Storage keys for the two interaction logs.
const (
	likesKey    = "interactions:likes"
	dislikesKey = "interactions:dislikes"
)

// InteractionStore durably records every like/dislike action with enough
// attribute context to re-derive preferences later, without depending on the
// event continuing to exist.
//
// Both logs are held in memory and written through to the kv port on every
// append. Corrupt or missing persisted data is treated as an empty log.
type InteractionStore struct {
	store kv.Store

	mu       sync.RWMutex
	likes    []InteractionRecord
	dislikes []InteractionRecord

	// now is injectable for tests.
	now func() time.Time
}

// NewInteractionStore creates a store backed by the given kv port and loads
// any previously persisted logs.
func NewInteractionStore(store kv.Store) *InteractionStore {
	s := &InteractionStore{
		store: store,
		now:   time.Now,
	}
	s.likes = loadLog(store, likesKey)
	s.dislikes = loadLog(store, dislikesKey)
	s.updateLogMetrics()
	return s
}

// loadLog reads a persisted log, returning an empty slice on absence or
// corruption. Corruption is never a fatal error.
func loadLog(store kv.Store, key string) []InteractionRecord {
	raw, ok := store.Get(key)
	if !ok || raw == "" {
		return nil
	}

	var records []InteractionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("corrupt interaction log, starting empty")
		metrics.StorageReadFailures.WithLabelValues(key).Inc()
		return nil
	}
	return records
}

// RecordLike appends a like interaction for the given event.
func (s *InteractionStore) RecordLike(ev Event) (InteractionRecord, error) {
	return s.record(ev, true)
}

// RecordDislike appends a dislike interaction for the given event.
func (s *InteractionStore) RecordDislike(ev Event) (InteractionRecord, error) {
	return s.record(ev, false)
}

func (s *InteractionStore) record(ev Event, liked bool) (InteractionRecord, error) {
	rec := InteractionRecord{
		ItemID:    ev.ID,
		Category:  ev.Category,
		Location:  ev.Location,
		Title:     ev.Title,
		Timestamp: s.now(),
		EventTime: ev.Time,
	}
	if slot, ok := SlotForTime(ev.Time); ok {
		rec.TimeSlot = slot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := likesKey
	log := &s.likes
	action := "like"
	if !liked {
		key = dislikesKey
		log = &s.dislikes
		action = "dislike"
	}

	*log = append(*log, rec)
	if err := s.persist(key, *log); err != nil {
		// Roll back the in-memory append so memory and disk stay consistent.
		*log = (*log)[:len(*log)-1]
		return InteractionRecord{}, err
	}

	metrics.InteractionsRecorded.WithLabelValues(action).Inc()
	s.updateLogMetricsLocked()
	return rec, nil
}

func (s *InteractionStore) persist(key string, log []InteractionRecord) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal interaction log: %w", err)
	}
	if err := s.store.Set(key, string(data)); err != nil {
		return fmt.Errorf("persist interaction log: %w", err)
	}
	return nil
}

// Likes returns a copy of the full ordered like log.
func (s *InteractionStore) Likes() []InteractionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]InteractionRecord(nil), s.likes...)
}

// Dislikes returns a copy of the full ordered dislike log.
func (s *InteractionStore) Dislikes() []InteractionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]InteractionRecord(nil), s.dislikes...)
}

func (s *InteractionStore) updateLogMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.updateLogMetricsLocked()
}

func (s *InteractionStore) updateLogMetricsLocked() {
	metrics.InteractionLogSize.WithLabelValues("likes").Set(float64(len(s.likes)))
	metrics.InteractionLogSize.WithLabelValues("dislikes").Set(float64(len(s.dislikes)))
}
