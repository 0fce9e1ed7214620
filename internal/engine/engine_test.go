// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package engine

import (
	"testing"

	"github.com/liebefeld/tribe-engine/internal/kv"
)

// capturingPublisher records interactions published by the engine.
type capturingPublisher struct {
	actions []string
	records []InteractionRecord
}

func (p *capturingPublisher) PublishInteraction(action string, rec InteractionRecord, _ *PreferenceTables) {
	p.actions = append(p.actions, action)
	p.records = append(p.records, rec)
}

func TestEngineRecordTriggersRecompute(t *testing.T) {
	e := New(kv.NewMemoryStore())

	if _, err := e.RecordLike(Event{ID: "ev-1", Category: "Sport", Location: "Parkweg", Title: "Abendlauf im Park", Time: "18:00"}); err != nil {
		t.Fatalf("RecordLike failed: %v", err)
	}

	// Tables must reflect the interaction without an explicit recompute call.
	tables := e.Tables()
	if tables.LikedCategories["Sport"] != 1 {
		t.Errorf("LikedCategories[Sport] = %d, want 1", tables.LikedCategories["Sport"])
	}
	if tables.LikedTimeSlots[SlotEvening] != 1 {
		t.Errorf("LikedTimeSlots[evening] = %d, want 1", tables.LikedTimeSlots[SlotEvening])
	}
}

func TestEngineScoreReflectsInteractions(t *testing.T) {
	e := New(kv.NewMemoryStore())

	candidate := Event{ID: "x", Category: "Sport", Location: "Parkweg", Title: "Abendlauf"}
	if got := e.Scorer().Score(candidate); got != 50 {
		t.Fatalf("score before interactions = %d, want 50", got)
	}

	if _, err := e.RecordLike(Event{ID: "ev-1", Category: "Sport", Location: "Parkweg", Title: "Abendlauf im Park", Time: "18:00"}); err != nil {
		t.Fatal(err)
	}

	if got := e.Scorer().Score(candidate); got != 61 {
		t.Errorf("score after like = %d, want 61", got)
	}
}

func TestEngineSurvivesRestart(t *testing.T) {
	mem := kv.NewMemoryStore()

	e := New(mem)
	if _, err := e.RecordLike(Event{ID: "ev-1", Category: "Sport", Title: "Lauftreff", Time: "18:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RecordDislike(Event{ID: "ev-2", Category: "Technoparty", Title: "Lange Nacht"}); err != nil {
		t.Fatal(err)
	}

	restarted := New(mem)
	if got := len(restarted.Likes()); got != 1 {
		t.Errorf("likes after restart = %d, want 1", got)
	}
	if got := len(restarted.Dislikes()); got != 1 {
		t.Errorf("dislikes after restart = %d, want 1", got)
	}
	if restarted.Tables().LikedCategories["Sport"] != 1 {
		t.Error("tables not restored after restart")
	}
}

func TestEnginePublishesAfterRecompute(t *testing.T) {
	e := New(kv.NewMemoryStore())
	pub := &capturingPublisher{}
	e.SetPublisher(pub)

	if _, err := e.RecordLike(Event{ID: "ev-1", Title: "Kiezfest"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RecordDislike(Event{ID: "ev-2", Title: "Karaoke"}); err != nil {
		t.Fatal(err)
	}

	if len(pub.actions) != 2 || pub.actions[0] != "like" || pub.actions[1] != "dislike" {
		t.Errorf("published actions = %v, want [like dislike]", pub.actions)
	}
	if pub.records[0].ItemID != "ev-1" {
		t.Errorf("published record = %+v, want ev-1", pub.records[0])
	}
}
