// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/kv"
	"github.com/liebefeld/tribe-engine/internal/logging"
	"github.com/liebefeld/tribe-engine/internal/metrics"
)

// bucketsKey is the storage key for the onboarding-selected category buckets.
const bucketsKey = "onboarding:buckets"

// Scoring constants. The score starts neutral and is pushed by three
// proportional terms (category, location, keywords) plus a flat bonus for
// onboarding-selected buckets, then clamped to [0,100].
const (
	scoreBaseline = 50.0

	bucketBonus = 15.0

	categoryWeight = 5.0
	categoryCap    = 20.0

	locationWeight = 4.0
	locationCap    = 15.0

	keywordWeight   = 2.0
	keywordCountCap = 3
	keywordCap      = 15.0
)

// bucketKeywords maps an onboarding bucket to the category keywords that
// identify it. Matching is case-insensitive substring against the candidate's
// category. Fixed table, not configurable.
var bucketKeywords = map[string][]string{
	"ausgehen":    {"ausgehen", "bar", "club", "nightlife", "sonstiges"},
	"sport":       {"sport", "fitness", "outdoor", "bewegung", "lauf"},
	"kultur":      {"kultur", "konzert", "ausstellung", "theater", "kino", "musik"},
	"kreativität": {"kreativität", "workshop", "kunst", "diy"},
}

// Scorer computes bounded [0,100] affinity scores for candidate events.
//
// Two distinct preference tracks feed the score: the onboarding-selected
// category buckets (flat +15 bonus) and the interaction-derived frequency
// tables (proportional terms). The tracks are intentionally kept separate.
type Scorer struct {
	agg   *Aggregator
	store kv.Store

	mu      sync.RWMutex
	buckets []string
}

// NewScorer creates a scorer reading tables from the given aggregator and
// the onboarding bucket list from the kv port.
func NewScorer(agg *Aggregator, store kv.Store) *Scorer {
	s := &Scorer{agg: agg, store: store}

	raw, ok := store.Get(bucketsKey)
	if !ok || raw == "" {
		return s
	}
	var buckets []string
	if err := json.Unmarshal([]byte(raw), &buckets); err != nil {
		logging.Warn().Err(err).Msg("corrupt onboarding buckets, starting empty")
		metrics.StorageReadFailures.WithLabelValues(bucketsKey).Inc()
		return s
	}
	s.buckets = buckets
	return s
}

// SelectedBuckets returns the onboarding-selected category buckets.
func (s *Scorer) SelectedBuckets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.buckets...)
}

// SetSelectedBuckets replaces and persists the onboarding bucket list.
// The onboarding flow owns this list; the scorer only reads it.
func (s *Scorer) SetSelectedBuckets(buckets []string) error {
	data, err := json.Marshal(buckets)
	if err != nil {
		return err
	}
	if err := s.store.Set(bucketsKey, string(data)); err != nil {
		return err
	}

	s.mu.Lock()
	s.buckets = append([]string(nil), buckets...)
	s.mu.Unlock()
	return nil
}

// MatchesPreferredCategories reports whether the event's category contains
// any keyword belonging to an onboarding-selected bucket.
func (s *Scorer) MatchesPreferredCategories(ev Event) bool {
	if ev.Category == "" {
		return false
	}
	category := strings.ToLower(ev.Category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bucket := range s.buckets {
		for _, kw := range bucketKeywords[strings.ToLower(bucket)] {
			if strings.Contains(category, kw) {
				return true
			}
		}
	}
	return false
}

// Score computes the affinity score for a candidate event. It is a pure
// function of the current preference tables and the event: missing optional
// fields simply skip their term, and the result is always in [0,100].
func (s *Scorer) Score(ev Event) int {
	tables := s.agg.Tables()
	score := scoreBaseline

	if s.MatchesPreferredCategories(ev) {
		score += bucketBonus
	}

	if ev.Category != "" {
		score += math.Min(float64(tables.LikedCategories[ev.Category])*categoryWeight, categoryCap)
		score -= math.Min(float64(tables.DislikedCategories[ev.Category])*categoryWeight, categoryCap)
	}

	if ev.Location != "" {
		score += math.Min(float64(tables.LikedLocations[ev.Location])*locationWeight, locationCap)
		score -= math.Min(float64(tables.DislikedLocations[ev.Location])*locationWeight, locationCap)
	}

	var likedBonus, dislikedPenalty float64
	for _, tok := range Tokenize(ev.Title) {
		likedBonus += float64(min(tables.LikedKeywords[tok], keywordCountCap)) * keywordWeight
		dislikedPenalty += float64(min(tables.DislikedKeywords[tok], keywordCountCap)) * keywordWeight
	}
	score += math.Min(likedBonus, keywordCap)
	score -= math.Min(dislikedPenalty, keywordCap)

	result := int(math.Round(math.Max(0, math.Min(100, score))))
	metrics.RecordScore(result)
	return result
}

// PreferredTimeSlots returns the time slots with a positive liked count,
// sorted by count descending. Ties keep the fixed declaration order
// (morning, midday, afternoon, evening, night).
func (s *Scorer) PreferredTimeSlots() []TimeSlot {
	tables := s.agg.Tables()

	slots := make([]TimeSlot, 0, len(TimeSlotOrder))
	for _, slot := range TimeSlotOrder {
		if tables.LikedTimeSlots[slot] > 0 {
			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return tables.LikedTimeSlots[slots[i]] > tables.LikedTimeSlots[slots[j]]
	})
	return slots
}
