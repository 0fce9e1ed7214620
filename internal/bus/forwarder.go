// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/logging"
)

// Broadcaster is the push sink the forwarder feeds, implemented by the
// websocket hub.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Envelope is the wire frame pushed to websocket clients.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Forwarder subscribes to the bus and rebroadcasts every message to the
// websocket hub, wrapped in a typed envelope. It runs as a supervised
// service and stops when its context is cancelled.
type Forwarder struct {
	bus  *Bus
	sink Broadcaster
}

// NewForwarder wires a forwarder between the bus and a broadcast sink.
func NewForwarder(b *Bus, sink Broadcaster) *Forwarder {
	return &Forwarder{bus: b, sink: sink}
}

// Serve consumes both engine topics until the context is cancelled.
func (f *Forwarder) Serve(ctx context.Context) error {
	interactions, err := f.bus.Subscribe(ctx, TopicInteractions)
	if err != nil {
		return err
	}
	preferences, err := f.bus.Subscribe(ctx, TopicPreferences)
	if err != nil {
		return err
	}

	logging.Info().Msg("bus forwarder started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-interactions:
			if !ok {
				return nil
			}
			f.forward("interaction", msg)
		case msg, ok := <-preferences:
			if !ok {
				return nil
			}
			f.forward("preferences", msg)
		}
	}
}

func (f *Forwarder) forward(kind string, msg *message.Message) {
	defer msg.Ack()

	frame, err := json.Marshal(Envelope{Type: kind, Payload: json.RawMessage(msg.Payload)})
	if err != nil {
		logging.Error().Err(err).Str("kind", kind).Msg("failed to marshal push envelope")
		return
	}
	f.sink.Broadcast(frame)
}

// String names the service in the supervision tree.
func (f *Forwarder) String() string { return "bus-forwarder" }
