// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

// Package metrics provides Prometheus instrumentation for the Tribe engine:
// interaction recording, preference recomputation, relevance scoring,
// notification curation, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Interaction Store metrics
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribe_interactions_recorded_total",
			Help: "Total number of like/dislike interactions recorded",
		},
		[]string{"action"}, // "like", "dislike"
	)

	InteractionLogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tribe_interaction_log_entries",
			Help: "Current number of entries in each interaction log",
		},
		[]string{"log"}, // "likes", "dislikes"
	)

	// Preference Aggregator metrics
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tribe_preference_recompute_duration_seconds",
			Help:    "Duration of full preference table recomputation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	PreferenceTableEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tribe_preference_table_entries",
			Help: "Number of distinct keys per preference table",
		},
		[]string{"table"},
	)

	// Relevance Scorer metrics
	ScoresComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tribe_scores_computed_total",
			Help: "Total number of relevance scores computed",
		},
	)

	ScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tribe_score_value",
			Help:    "Distribution of computed relevance scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// Notification Curator metrics
	CurationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tribe_curation_duration_seconds",
			Help:    "Duration of a full notification curation pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	CurationSourceOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribe_curation_source_outcomes_total",
			Help: "Per-source fetch outcomes during curation passes",
		},
		[]string{"source", "outcome"}, // outcome: "success", "empty", "failure"
	)

	NotificationsCurated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribe_notifications_curated_total",
			Help: "Total notifications produced by curation passes",
		},
		[]string{"type"},
	)

	// Storage metrics
	StorageReadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribe_storage_read_failures_total",
			Help: "Persisted values that were unreadable and treated as empty",
		},
		[]string{"key"},
	)

	// API Endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribe_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tribe_websocket_connections",
			Help: "Current number of connected websocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tribe_websocket_messages_sent_total",
			Help: "Total messages broadcast to websocket clients",
		},
	)
)

// RecordAPIRequest records an API request with its outcome and duration.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordScore records a computed relevance score.
func RecordScore(score int) {
	ScoresComputed.Inc()
	ScoreDistribution.Observe(float64(score))
}
