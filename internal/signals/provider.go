// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package signals

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/liebefeld/tribe-engine/internal/logging"
	"github.com/liebefeld/tribe-engine/internal/notify"
)

// guestPrefix marks throwaway accounts that never appear in community feeds.
const guestPrefix = "Gast"

// NewEvents returns events created after since, newest first. A non-empty
// city restricts the result to that city.
func (db *DB) NewEvents(ctx context.Context, since time.Time, city string) ([]notify.EventSignal, error) {
	query := `SELECT id, title, category, location, city, event_date, event_time, popularity, created_at
		FROM events WHERE created_at > ?`
	args := []any{since}
	if city != "" {
		query += ` AND city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("new events query failed: %w", err)
	}
	return scanEvents(rows)
}

// RecentActivity returns activity entries after cutoff, newest first. The
// given username and guest accounts are excluded: a user's own actions and
// anonymous visitors are not notification-worthy.
func (db *DB) RecentActivity(ctx context.Context, cutoff time.Time, excludeUsername string) ([]notify.ActivitySignal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, action, event_id, event_title, avatar_url, occurred_at
		FROM activity_log
		WHERE occurred_at > ? AND username <> ? AND username NOT LIKE ?
		ORDER BY occurred_at DESC`,
		cutoff, excludeUsername, guestPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("recent activity query failed: %w", err)
	}
	defer closeRows(rows)

	var out []notify.ActivitySignal
	for rows.Next() {
		var a notify.ActivitySignal
		if err := rows.Scan(&a.Username, &a.Action, &a.EventID, &a.EventTitle, &a.AvatarURL, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("activity row scan failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NewMembers returns profiles created after since, newest first. Guest
// accounts are excluded.
func (db *DB) NewMembers(ctx context.Context, since time.Time) ([]notify.MemberSignal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, avatar_url, created_at
		FROM user_profiles
		WHERE created_at > ? AND username NOT LIKE ?
		ORDER BY created_at DESC`,
		since, guestPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("new members query failed: %w", err)
	}
	defer closeRows(rows)

	var out []notify.MemberSignal
	for rows.Next() {
		var m notify.MemberSignal
		if err := rows.Scan(&m.Username, &m.AvatarURL, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("member row scan failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TrendingEvents returns upcoming events ordered by popularity, best first.
func (db *DB) TrendingEvents(ctx context.Context, limit int) ([]notify.EventSignal, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, category, location, city, event_date, event_time, popularity, created_at
		FROM events
		WHERE event_date >= CURRENT_DATE
		ORDER BY popularity DESC, event_date ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("trending events query failed: %w", err)
	}
	return scanEvents(rows)
}

// EventsByID returns the given events restricted to a [from,to] date window.
func (db *DB) EventsByID(ctx context.Context, ids []string, from, to time.Time) ([]notify.EventSignal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+2)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, from, to)

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, category, location, city, event_date, event_time, popularity, created_at
			FROM events
			WHERE id IN (%s) AND event_date >= ? AND event_date <= ?
			ORDER BY event_date ASC`, placeholders),
		args...)
	if err != nil {
		return nil, fmt.Errorf("events by id query failed: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]notify.EventSignal, error) {
	defer closeRows(rows)

	var out []notify.EventSignal
	for rows.Next() {
		var ev notify.EventSignal
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Category, &ev.Location, &ev.City,
			&ev.Date, &ev.Time, &ev.Popularity, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("event row scan failed: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close result rows")
	}
}
