// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package signals

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "events.db")})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

func insertEvent(t *testing.T, db *DB, id, title, category, city string, date, createdAt time.Time, popularity int) {
	t.Helper()
	_, err := db.conn.Exec(
		`INSERT INTO events (id, title, category, location, city, event_date, event_time, popularity, created_at)
		VALUES (?, ?, ?, '', ?, ?, '', ?, ?)`,
		id, title, category, city, date, popularity, createdAt)
	if err != nil {
		t.Fatalf("insert event %s: %v", id, err)
	}
}

func insertActivity(t *testing.T, db *DB, username, action string, occurredAt time.Time) {
	t.Helper()
	_, err := db.conn.Exec(
		`INSERT INTO activity_log (username, action, event_id, event_title, avatar_url, occurred_at)
		VALUES (?, ?, 'ev-1', 'Kiezfest', '', ?)`,
		username, action, occurredAt)
	if err != nil {
		t.Fatalf("insert activity for %s: %v", username, err)
	}
}

func TestNewEventsFiltersBySinceAndCity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	now := time.Now()
	day := now.AddDate(0, 0, 3)
	insertEvent(t, db, "old", "Altes Event", "Treffen", "Liebefeld", day, now.Add(-48*time.Hour), 0)
	insertEvent(t, db, "fresh", "Neues Event", "Treffen", "Liebefeld", day, now.Add(-time.Hour), 0)
	insertEvent(t, db, "elsewhere", "Anderswo", "Treffen", "Bern", day, now.Add(-time.Hour), 0)

	got, err := db.NewEvents(ctx, now.Add(-24*time.Hour), "Liebefeld")
	if err != nil {
		t.Fatalf("NewEvents failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("NewEvents = %+v, want single event fresh", got)
	}

	// Without a city filter both recent events qualify.
	all, err := db.NewEvents(ctx, now.Add(-24*time.Hour), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("NewEvents without city = %d events, want 2", len(all))
	}
}

func TestNewEventsEmptyResultIsNotAnError(t *testing.T) {
	db := openTestDB(t)

	got, err := db.NewEvents(context.Background(), time.Now(), "")
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d events, want 0", len(got))
	}
}

func TestRecentActivityExcludesSelfAndGuests(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	insertActivity(t, db, "lena", "like_event", now.Add(-10*time.Minute))
	insertActivity(t, db, "mira", "like_event", now.Add(-10*time.Minute))
	insertActivity(t, db, "Gast1234", "like_event", now.Add(-10*time.Minute))
	insertActivity(t, db, "jonas", "attend_event", now.Add(-3*time.Hour))

	got, err := db.RecentActivity(context.Background(), now.Add(-2*time.Hour), "mira")
	if err != nil {
		t.Fatalf("RecentActivity failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("RecentActivity = %d entries, want 1", len(got))
	}
	if got[0].Username != "lena" {
		t.Errorf("username = %q, want lena", got[0].Username)
	}
}

func TestNewMembersExcludesGuests(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	rows := []struct {
		username string
		created  time.Time
	}{
		{"neuling", now.Add(-time.Hour)},
		{"Gast987", now.Add(-time.Hour)},
		{"veteran", now.Add(-100 * time.Hour)},
	}
	for _, r := range rows {
		if _, err := db.conn.Exec(
			`INSERT INTO user_profiles (username, avatar_url, created_at) VALUES (?, '', ?)`,
			r.username, r.created); err != nil {
			t.Fatalf("insert profile %s: %v", r.username, err)
		}
	}

	got, err := db.NewMembers(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("NewMembers failed: %v", err)
	}
	if len(got) != 1 || got[0].Username != "neuling" {
		t.Errorf("NewMembers = %+v, want single member neuling", got)
	}
}

func TestTrendingEventsOrderedByPopularity(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	future := now.AddDate(0, 0, 2)

	insertEvent(t, db, "mid", "Mittel", "Treffen", "Liebefeld", future, now, 10)
	insertEvent(t, db, "top", "Beliebt", "Konzert", "Liebefeld", future, now, 30)
	insertEvent(t, db, "low", "Selten", "Markt", "Liebefeld", future, now, 2)
	// Past events never trend.
	insertEvent(t, db, "past", "Vorbei", "Konzert", "Liebefeld", now.AddDate(0, 0, -2), now, 99)

	got, err := db.TrendingEvents(context.Background(), 2)
	if err != nil {
		t.Fatalf("TrendingEvents failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TrendingEvents = %d events, want 2", len(got))
	}
	if got[0].ID != "top" || got[1].ID != "mid" {
		t.Errorf("trending order = [%s %s], want [top mid]", got[0].ID, got[1].ID)
	}
}

func TestEventsByIDWindow(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	insertEvent(t, db, "today", "Heute", "Sport", "Liebefeld", today, now, 0)
	insertEvent(t, db, "tomorrow", "Morgen", "Sport", "Liebefeld", today.AddDate(0, 0, 1), now, 0)
	insertEvent(t, db, "later", "Später", "Sport", "Liebefeld", today.AddDate(0, 0, 5), now, 0)

	got, err := db.EventsByID(context.Background(),
		[]string{"today", "tomorrow", "later", "missing"},
		today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("EventsByID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("EventsByID = %d events, want 2", len(got))
	}
	if got[0].ID != "today" || got[1].ID != "tomorrow" {
		t.Errorf("window result = [%s %s], want [today tomorrow]", got[0].ID, got[1].ID)
	}
}

func TestEventsByIDEmptyInput(t *testing.T) {
	db := openTestDB(t)

	got, err := db.EventsByID(context.Background(), nil, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("EventsByID with no ids failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d events, want 0", len(got))
	}
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var events, profiles int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events); err != nil {
		t.Fatal(err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM user_profiles`).Scan(&profiles); err != nil {
		t.Fatal(err)
	}
	if events != 6 {
		t.Errorf("events after double seed = %d, want 6", events)
	}
	if profiles != 3 {
		t.Errorf("profiles after double seed = %d, want 3", profiles)
	}
}
