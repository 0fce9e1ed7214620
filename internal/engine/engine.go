// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"github.com/liebefeld/tribe-engine/internal/kv"
	"github.com/liebefeld/tribe-engine/internal/logging"
)

// InteractionPublisher receives every recorded interaction after the
// preference tables have been recomputed. Satisfied by the event bus;
// kept as an interface so the engine does not depend on transport.
type InteractionPublisher interface {
	PublishInteraction(action string, rec InteractionRecord, tables *PreferenceTables)
}

// Engine ties the interaction store, aggregator, and scorer together and
// enforces the recompute-on-every-append contract: each recorded interaction
// triggers a full preference recomputation before the call returns.
type Engine struct {
	store     *InteractionStore
	agg       *Aggregator
	scorer    *Scorer
	publisher InteractionPublisher
}

// New creates an engine over the given kv port. Previously persisted logs,
// tables, and onboarding buckets are loaded; corrupt state starts empty.
func New(store kv.Store) *Engine {
	interactions := NewInteractionStore(store)
	agg := NewAggregator(store)
	return &Engine{
		store:  interactions,
		agg:    agg,
		scorer: NewScorer(agg, store),
	}
}

// SetPublisher installs the post-recompute interaction publisher.
func (e *Engine) SetPublisher(p InteractionPublisher) {
	e.publisher = p
}

// RecordLike records a like for the event and recomputes the tables.
func (e *Engine) RecordLike(ev Event) (InteractionRecord, error) {
	return e.record(ev, "like")
}

// RecordDislike records a dislike for the event and recomputes the tables.
func (e *Engine) RecordDislike(ev Event) (InteractionRecord, error) {
	return e.record(ev, "dislike")
}

func (e *Engine) record(ev Event, action string) (InteractionRecord, error) {
	var (
		rec InteractionRecord
		err error
	)
	if action == "like" {
		rec, err = e.store.RecordLike(ev)
	} else {
		rec, err = e.store.RecordDislike(ev)
	}
	if err != nil {
		return InteractionRecord{}, err
	}

	if err := e.agg.Recompute(e.store.Likes(), e.store.Dislikes()); err != nil {
		// The in-memory tables are already fresh; only persistence failed.
		logging.Warn().Err(err).Msg("preference table persistence failed")
	}

	if e.publisher != nil {
		e.publisher.PublishInteraction(action, rec, e.agg.Tables())
	}
	return rec, nil
}

// Likes returns the full ordered like log.
func (e *Engine) Likes() []InteractionRecord { return e.store.Likes() }

// Dislikes returns the full ordered dislike log.
func (e *Engine) Dislikes() []InteractionRecord { return e.store.Dislikes() }

// Tables returns a copy of the current preference tables.
func (e *Engine) Tables() *PreferenceTables { return e.agg.Tables() }

// Scorer returns the relevance scorer.
func (e *Engine) Scorer() *Scorer { return e.scorer }
