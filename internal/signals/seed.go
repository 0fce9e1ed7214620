// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/liebefeld/tribe-engine/internal/logging"
)

// SeedDemoData loads a small, fixed set of Liebefeld community rows for
// demos and local development. Inserts are idempotent per primary key; the
// append-only activity log is only seeded when empty.
func (db *DB) SeedDemoData(ctx context.Context) error {
	logging.Info().Msg("seeding events database with demo data")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	events := []struct {
		id         string
		title      string
		category   string
		location   string
		date       time.Time
		eventTime  string
		popularity int
	}{
		{"ev-lauftreff", "Lauftreff am Könizbergwald", "Sport", "Könizbergwald", today, "18:30", 12},
		{"ev-jazzabend", "Jazzabend im Kulturkeller", "Konzert", "Kulturkeller", today.AddDate(0, 0, 1), "20:00", 25},
		{"ev-flohmarkt", "Flohmarkt auf dem Dorfplatz", "Markt", "Dorfplatz", today.AddDate(0, 0, 2), "09:00", 18},
		{"ev-yoga", "Morgenyoga im Park", "Sport", "Liebefeld Park", today.AddDate(0, 0, 1), "07:30", 8},
		{"ev-spieleabend", "Offener Spieleabend", "Treffen", "Quartierzentrum", today.AddDate(0, 0, 3), "19:00", 15},
		{"ev-workshop", "Siebdruck Workshop", "Workshop", "Atelier West", today.AddDate(0, 0, 4), "14:00", 10},
	}
	for _, ev := range events {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO events (id, title, category, location, city, event_date, event_time, popularity, created_at)
			VALUES (?, ?, ?, ?, 'Liebefeld', ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			ev.id, ev.title, ev.category, ev.location, ev.date, ev.eventTime, ev.popularity, now)
		if err != nil {
			return fmt.Errorf("failed to seed event %s: %w", ev.id, err)
		}
	}

	members := []struct {
		username string
		avatar   string
	}{
		{"lena", "/avatars/lena.png"},
		{"jonas", "/avatars/jonas.png"},
		{"mira", "/avatars/mira.png"},
	}
	for _, m := range members {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO user_profiles (username, avatar_url, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (username) DO NOTHING`,
			m.username, m.avatar, now)
		if err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", m.username, err)
		}
	}

	var activityCount int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&activityCount); err != nil {
		return fmt.Errorf("failed to count activity log: %w", err)
	}
	if activityCount == 0 {
		activity := []struct {
			username   string
			action     string
			eventID    string
			eventTitle string
		}{
			{"lena", "like_event", "ev-jazzabend", "Jazzabend im Kulturkeller"},
			{"jonas", "attend_event", "ev-lauftreff", "Lauftreff am Könizbergwald"},
		}
		for _, a := range activity {
			_, err := db.conn.ExecContext(ctx,
				`INSERT INTO activity_log (username, action, event_id, event_title, avatar_url, occurred_at)
				VALUES (?, ?, ?, ?, '', ?)`,
				a.username, a.action, a.eventID, a.eventTitle, now)
			if err != nil {
				return fmt.Errorf("failed to seed activity for %s: %w", a.username, err)
			}
		}
	}

	logging.Info().Int("events", len(events)).Int("profiles", len(members)).Msg("demo data seeded")
	return nil
}
