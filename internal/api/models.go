// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package api provides the HTTP surface of the Tribe engine: recording
// interactions, reading preference state, scoring candidate events, and
// running notification curation passes.
package api

import (
	"time"

	"github.com/liebefeld/tribe-engine/internal/engine"
)

// APIResponse is the uniform envelope for every JSON response.
type APIResponse struct {
	Status   string    `json:"status"` // "success" or "error"
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InteractionRequest is the body for POST /interactions/{likes,dislikes}.
type InteractionRequest struct {
	ID       string `json:"id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
	Time     string `json:"time,omitempty"`
}

// Event converts the request into an engine event.
func (r InteractionRequest) Event() engine.Event {
	return engine.Event{
		ID:       r.ID,
		Category: r.Category,
		Location: r.Location,
		Title:    r.Title,
		Time:     r.Time,
	}
}

// ScoreRequest is the body for POST /score: candidate events to rank.
type ScoreRequest struct {
	Events []InteractionRequest `json:"events" validate:"required,min=1,max=500,dive"`
}

// ScoredEvent pairs a candidate with its relevance score.
type ScoredEvent struct {
	Event          engine.Event `json:"event"`
	Score          int          `json:"score"`
	MatchesBuckets bool         `json:"matches_buckets"`
}

// BucketsRequest is the body for PUT /preferences/buckets.
type BucketsRequest struct {
	Buckets []string `json:"buckets" validate:"max=10,dive,required"`
}

// PreferencesResponse bundles the learned preference state.
type PreferencesResponse struct {
	Tables          *engine.PreferenceTables `json:"tables"`
	SelectedBuckets []string                 `json:"selected_buckets"`
}
