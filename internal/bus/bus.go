// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package bus provides the in-process message bus connecting the engine to
// push consumers. Interaction appends and preference recomputes are published
// as JSON messages on dedicated topics; the websocket layer subscribes and
// fans the messages out to connected clients.
package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/liebefeld/tribe-engine/internal/engine"
	"github.com/liebefeld/tribe-engine/internal/logging"
)

// Topics carried by the bus.
const (
	TopicInteractions = "interactions.recorded"
	TopicPreferences  = "preferences.updated"
)

// InteractionEvent is the payload published for every recorded interaction.
type InteractionEvent struct {
	Action string                   `json:"action"`
	Record engine.InteractionRecord `json:"record"`
}

// PreferencesEvent carries the freshly recomputed preference tables.
type PreferencesEvent struct {
	Tables *engine.PreferenceTables `json:"tables"`
}

// Bus wraps a Watermill go-channel pub/sub. All delivery is in-process;
// subscribers joining later do not see earlier messages.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New creates the in-process bus.
func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, newLoggerAdapter()),
	}
}

// PublishInteraction satisfies the engine's publisher hook: it emits the
// interaction on TopicInteractions and the new tables on TopicPreferences.
// Publish failures are logged, never propagated — push delivery is best
// effort and must not fail the recording path.
func (b *Bus) PublishInteraction(action string, rec engine.InteractionRecord, tables *engine.PreferenceTables) {
	b.publishJSON(TopicInteractions, InteractionEvent{Action: action, Record: rec})
	b.publishJSON(TopicPreferences, PreferencesEvent{Tables: tables})
}

func (b *Bus) publishJSON(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Str("topic", topic).Msg("failed to marshal bus payload")
		return
	}
	msg := message.NewMessage(uuid.NewString(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		logging.Error().Err(err).Str("topic", topic).Msg("failed to publish bus message")
	}
}

// Subscribe returns a channel of messages for the given topic.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down; pending subscribers are unblocked.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// newLoggerAdapter bridges Watermill's logging onto the engine logger.
func newLoggerAdapter() watermill.LoggerAdapter {
	return &loggerAdapter{}
}

type loggerAdapter struct {
	fields watermill.LogFields
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	logging.Error().Err(err).Fields(map[string]any(a.fields.Add(fields))).Msg(msg)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(a.fields.Add(fields))).Msg(msg)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(a.fields.Add(fields))).Msg(msg)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(a.fields.Add(fields))).Msg(msg)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{fields: a.fields.Add(fields)}
}
