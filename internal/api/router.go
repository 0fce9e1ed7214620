// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liebefeld/tribe-engine/internal/config"
	"github.com/liebefeld/tribe-engine/internal/websocket"
)

// NewRouter builds the full HTTP surface.
func NewRouter(cfg *config.ServerConfig, handler *Handler, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(Instrument)

		r.Get("/health", handler.Health)

		r.Route("/interactions", func(r chi.Router) {
			r.Post("/likes", handler.RecordLike)
			r.Post("/dislikes", handler.RecordDislike)
			r.Get("/likes", handler.Likes)
			r.Get("/dislikes", handler.Dislikes)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", handler.Preferences)
			r.Get("/time-slots", handler.TimeSlots)
			r.Get("/buckets", handler.Buckets)
			r.Put("/buckets", handler.SetBuckets)
		})

		r.Post("/score", handler.Score)
		r.Get("/notifications", handler.Notifications)

		r.Get("/ws", websocket.Handler(hub))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
