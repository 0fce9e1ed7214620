// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package notify implements the notification curator: a stateless curation
// pass that merges four independently fetched signal sources into a bounded,
// deduplicated list of user-facing notifications.
//
// Each source is queried behind its own circuit breaker; a failing source
// contributes nothing to that pass and never aborts the pass as a whole.
// Notification ids are derived deterministically from the source type and a
// stable entity key, so repeated passes over the same signals produce the
// same ids and a stateful UI can overwrite instead of duplicating.
package notify

import (
	"context"
	"time"
)

// Type classifies a notification.
type Type string

const (
	TypeNewEvent            Type = "new_event"
	TypeCommunityActivity   Type = "community_activity"
	TypeNewMember           Type = "new_member"
	TypeDailyRecommendation Type = "daily_recommendation"
	TypeEventReminder       Type = "event_reminder"
	TypeLikeEvent           Type = "like_event"
)

// Notification is one curated, user-facing message. The engine constructs
// notifications fresh on each pass and never persists them; display ordering
// and seen-state are owned by the UI layer.
type Notification struct {
	// ID is unique per logical event and deterministic across passes.
	ID string `json:"id"`

	// Type is the notification taxonomy entry.
	Type Type `json:"type"`

	// Text is the rendered message.
	Text string `json:"text"`

	// AvatarURL is an optional avatar for the originating user.
	AvatarURL string `json:"avatar_url,omitempty"`

	// ActionLabel/ActionType/ActionPayload describe what the UI should do
	// if the user acts on the notification. All optional.
	ActionLabel   string `json:"action_label,omitempty"`
	ActionType    string `json:"action_type,omitempty"`
	ActionPayload string `json:"action_payload,omitempty"`

	// Seen starts false; the UI layer owns the false->true transition.
	Seen bool `json:"seen"`

	// CreatedAt is when this pass constructed the notification.
	CreatedAt time.Time `json:"created_at"`
}

// UserContext identifies the user a curation pass runs for.
type UserContext struct {
	Username          string   `json:"username"`
	City              string   `json:"city,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	FavoriteLocations []string `json:"favorite_locations,omitempty"`
	LikedEventIDs     []string `json:"liked_event_ids,omitempty"`
	AttendingEventIDs []string `json:"attending_event_ids,omitempty"`
}

// EventSignal is an event row as returned by the signal queries.
type EventSignal struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category,omitempty"`
	Location   string    `json:"location,omitempty"`
	City       string    `json:"city,omitempty"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time,omitempty"`
	Popularity int       `json:"popularity"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivitySignal is one activity-log entry from the community feed.
type ActivitySignal struct {
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	EventID    string    `json:"event_id,omitempty"`
	EventTitle string    `json:"event_title,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MemberSignal is a recently created community profile.
type MemberSignal struct {
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// SignalProvider is the read-only query surface the curator consumes.
// Implemented by the signals package against the events database; tests use
// in-memory fakes. Absence of results is a valid, non-error response.
type SignalProvider interface {
	// NewEvents returns events created after since, optionally scoped to a city.
	NewEvents(ctx context.Context, since time.Time, city string) ([]EventSignal, error)

	// RecentActivity returns activity entries after cutoff, excluding the
	// given username and guest-prefixed usernames.
	RecentActivity(ctx context.Context, cutoff time.Time, excludeUsername string) ([]ActivitySignal, error)

	// NewMembers returns profiles created after since.
	NewMembers(ctx context.Context, since time.Time) ([]MemberSignal, error)

	// TrendingEvents returns events ordered by existing popularity, best first.
	TrendingEvents(ctx context.Context, limit int) ([]EventSignal, error)

	// EventsByID returns the given events filtered to a [from,to] date window.
	EventsByID(ctx context.Context, ids []string, from, to time.Time) ([]EventSignal, error)
}
