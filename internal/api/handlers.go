// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/liebefeld/tribe-engine/internal/engine"
	"github.com/liebefeld/tribe-engine/internal/notify"
)

// Curator is the slice of the notification curator the API needs.
type Curator interface {
	Curate(ctx context.Context, user notify.UserContext) []notify.Notification
}

// Handler holds the engine collaborators behind the HTTP surface.
type Handler struct {
	engine  *engine.Engine
	curator Curator
	started time.Time
}

// NewHandler wires the handlers.
func NewHandler(eng *engine.Engine, curator Curator) *Handler {
	return &Handler{
		engine:  eng,
		curator: curator,
		started: time.Now(),
	}
}

// Health reports liveness and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// RecordLike appends a like interaction and recomputes preferences.
func (h *Handler) RecordLike(w http.ResponseWriter, r *http.Request) {
	h.recordInteraction(w, r, h.engine.RecordLike)
}

// RecordDislike appends a dislike interaction and recomputes preferences.
func (h *Handler) RecordDislike(w http.ResponseWriter, r *http.Request) {
	h.recordInteraction(w, r, h.engine.RecordDislike)
}

func (h *Handler) recordInteraction(w http.ResponseWriter, r *http.Request, record func(engine.Event) (engine.InteractionRecord, error)) {
	var req InteractionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := record(req.Event())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "failed to persist interaction", err)
		return
	}
	respondJSON(w, r, http.StatusCreated, rec)
}

// Likes returns the append-only like log in insertion order.
func (h *Handler) Likes(w http.ResponseWriter, r *http.Request) {
	likes := h.engine.Likes()
	respondList(w, r, likes, len(likes))
}

// Dislikes returns the append-only dislike log in insertion order.
func (h *Handler) Dislikes(w http.ResponseWriter, r *http.Request) {
	dislikes := h.engine.Dislikes()
	respondList(w, r, dislikes, len(dislikes))
}

func respondList(w http.ResponseWriter, r *http.Request, data any, count int) {
	respond(w, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
			Count:     count,
		},
	}, http.StatusOK)
}

// Preferences returns the learned tables and the onboarding buckets.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, PreferencesResponse{
		Tables:          h.engine.Tables(),
		SelectedBuckets: h.engine.Scorer().SelectedBuckets(),
	})
}

// TimeSlots returns liked time slots ordered by preference strength.
func (h *Handler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	slots := h.engine.Scorer().PreferredTimeSlots()
	respondList(w, r, slots, len(slots))
}

// Buckets returns the user's onboarding interest buckets.
func (h *Handler) Buckets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"buckets": h.engine.Scorer().SelectedBuckets(),
	})
}

// SetBuckets replaces the onboarding interest buckets.
func (h *Handler) SetBuckets(w http.ResponseWriter, r *http.Request) {
	var req BucketsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.engine.Scorer().SetSelectedBuckets(req.Buckets); err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "failed to persist buckets", err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"buckets": req.Buckets})
}

// Score ranks candidate events against the current preference profile.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	scorer := h.engine.Scorer()
	scored := make([]ScoredEvent, 0, len(req.Events))
	for _, candidate := range req.Events {
		ev := candidate.Event()
		scored = append(scored, ScoredEvent{
			Event:          ev,
			Score:          scorer.Score(ev),
			MatchesBuckets: scorer.MatchesPreferredCategories(ev),
		})
	}
	respondList(w, r, scored, len(scored))
}

// Notifications runs a curation pass for the user described by the query
// parameters: username (required), city, interests, liked_ids, attending_ids
// (the latter three comma-separated).
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "username query parameter is required", nil)
		return
	}

	user := notify.UserContext{
		Username:          username,
		City:              r.URL.Query().Get("city"),
		Interests:         csvParam(r, "interests"),
		LikedEventIDs:     csvParam(r, "liked_ids"),
		AttendingEventIDs: csvParam(r, "attending_ids"),
	}

	notifications := h.curator.Curate(r.Context(), user)
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	respondList(w, r, notifications, len(notifications))
}

func csvParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
