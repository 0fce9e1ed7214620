// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/engine"
)

func TestPublishInteractionReachesBothTopics(t *testing.T) {
	b := New()
	defer func() {
		if err := b.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	interactions, err := b.Subscribe(ctx, TopicInteractions)
	if err != nil {
		t.Fatalf("Subscribe interactions failed: %v", err)
	}
	preferences, err := b.Subscribe(ctx, TopicPreferences)
	if err != nil {
		t.Fatalf("Subscribe preferences failed: %v", err)
	}

	tables := engine.NewPreferenceTables()
	tables.LikedCategories["Sport"] = 1
	b.PublishInteraction("like", engine.InteractionRecord{ItemID: "ev-1", Title: "Lauftreff"}, tables)

	select {
	case msg := <-interactions:
		var ev InteractionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("unmarshal interaction event: %v", err)
		}
		if ev.Action != "like" || ev.Record.ItemID != "ev-1" {
			t.Errorf("interaction event = %+v, want like/ev-1", ev)
		}
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for interaction message")
	}

	select {
	case msg := <-preferences:
		var ev PreferencesEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("unmarshal preferences event: %v", err)
		}
		if ev.Tables == nil || ev.Tables.LikedCategories["Sport"] != 1 {
			t.Errorf("preferences event = %+v, want LikedCategories[Sport]=1", ev)
		}
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for preferences message")
	}
}

// collectingSink records broadcast frames.
type collectingSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *collectingSink) Broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, data)
}

func (s *collectingSink) snapshot() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func TestForwarderBroadcastsEnvelopes(t *testing.T) {
	b := New()
	defer func() {
		if err := b.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	sink := &collectingSink{}
	fwd := NewForwarder(b, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fwd.Serve(ctx) }()

	// Give the forwarder a moment to establish its subscriptions.
	time.Sleep(50 * time.Millisecond)

	b.PublishInteraction("dislike", engine.InteractionRecord{ItemID: "ev-2"}, engine.NewPreferenceTables())

	deadline := time.After(5 * time.Second)
	for {
		if len(sink.snapshot()) >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("forwarder broadcast %d frames, want 2", len(sink.snapshot()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	types := make(map[string]bool)
	for _, frame := range sink.snapshot() {
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		types[env.Type] = true
	}
	if !types["interaction"] || !types["preferences"] {
		t.Errorf("envelope types = %v, want interaction and preferences", types)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not stop on context cancel")
	}
}
