// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package engine implements the personalization core: the append-only
// interaction store, the preference aggregator, and the relevance scorer.
//
// A like or dislike on a community event appends an immutable record to a
// durable log; the six preference tables are rebuilt from scratch by replaying
// both logs after every append. The scorer turns the tables into a bounded
// [0,100] affinity score for any candidate event. The tables are a cache over
// the logs, never a second source of truth.
package engine

import "time"

// TimeSlot is one of five fixed day buckets derived from an event's clock time.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotMidday    TimeSlot = "midday"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

// TimeSlotOrder is the fixed declaration order used for tie-breaking.
var TimeSlotOrder = []TimeSlot{SlotMorning, SlotMidday, SlotAfternoon, SlotEvening, SlotNight}

// Event is a candidate item as seen by the engine: an event-like object with
// an opaque id and a handful of semantic attributes. Category, Location, and
// Time are optional; the engine never mutates an Event.
type Event struct {
	// ID is the opaque event identifier.
	ID string `json:"id"`

	// Category is the event category (e.g., "Sport", "Konzert"). Optional.
	Category string `json:"category,omitempty"`

	// Location is the venue or address. Optional.
	Location string `json:"location,omitempty"`

	// Title is the event title.
	Title string `json:"title"`

	// Time is the event's clock time as a string (e.g., "19:00"). Optional.
	Time string `json:"time,omitempty"`
}

// InteractionRecord captures one like/dislike action and the interacted
// event's attributes at that time. Records are immutable once created and
// never deleted; the two logs (likes, dislikes) are append-only.
type InteractionRecord struct {
	// ItemID is the id of the interacted event.
	ItemID string `json:"item_id"`

	// Category is the event category at interaction time. Optional.
	Category string `json:"category,omitempty"`

	// Location is the event location at interaction time. Optional.
	Location string `json:"location,omitempty"`

	// Title is the event title at interaction time.
	Title string `json:"title"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`

	// EventTime is the event's clock time string, if any.
	EventTime string `json:"event_time,omitempty"`

	// TimeSlot is derived once from EventTime and stored with the record.
	// It is never recomputed later, so historical records keep their slot
	// even if the boundary rules change.
	TimeSlot TimeSlot `json:"time_slot,omitempty"`
}

// PreferenceTables holds the six derived frequency tables. Every table is
// fully reconstructible by replaying the interaction logs.
type PreferenceTables struct {
	LikedCategories    map[string]int `json:"liked_categories"`
	DislikedCategories map[string]int `json:"disliked_categories"`

	LikedLocations    map[string]int `json:"liked_locations"`
	DislikedLocations map[string]int `json:"disliked_locations"`

	LikedKeywords    map[string]int `json:"liked_keywords"`
	DislikedKeywords map[string]int `json:"disliked_keywords"`

	LikedTimeSlots    map[TimeSlot]int `json:"liked_time_slots"`
	DislikedTimeSlots map[TimeSlot]int `json:"disliked_time_slots"`
}

// NewPreferenceTables returns empty tables with all maps initialized.
func NewPreferenceTables() *PreferenceTables {
	return &PreferenceTables{
		LikedCategories:    make(map[string]int),
		DislikedCategories: make(map[string]int),
		LikedLocations:     make(map[string]int),
		DislikedLocations:  make(map[string]int),
		LikedKeywords:      make(map[string]int),
		DislikedKeywords:   make(map[string]int),
		LikedTimeSlots:     make(map[TimeSlot]int),
		DislikedTimeSlots:  make(map[TimeSlot]int),
	}
}

// Clone returns a deep copy of the tables.
func (t *PreferenceTables) Clone() *PreferenceTables {
	c := NewPreferenceTables()
	for k, v := range t.LikedCategories {
		c.LikedCategories[k] = v
	}
	for k, v := range t.DislikedCategories {
		c.DislikedCategories[k] = v
	}
	for k, v := range t.LikedLocations {
		c.LikedLocations[k] = v
	}
	for k, v := range t.DislikedLocations {
		c.DislikedLocations[k] = v
	}
	for k, v := range t.LikedKeywords {
		c.LikedKeywords[k] = v
	}
	for k, v := range t.DislikedKeywords {
		c.DislikedKeywords[k] = v
	}
	for k, v := range t.LikedTimeSlots {
		c.LikedTimeSlots[k] = v
	}
	for k, v := range t.DislikedTimeSlots {
		c.DislikedTimeSlots[k] = v
	}
	return c
}
