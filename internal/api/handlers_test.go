// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/config"
	"github.com/liebefeld/tribe-engine/internal/engine"
	"github.com/liebefeld/tribe-engine/internal/kv"
	"github.com/liebefeld/tribe-engine/internal/notify"
	"github.com/liebefeld/tribe-engine/internal/websocket"
)

// fakeCurator returns a canned notification list and records the user it saw.
type fakeCurator struct {
	notifications []notify.Notification
	lastUser      notify.UserContext
}

func (f *fakeCurator) Curate(_ context.Context, user notify.UserContext) []notify.Notification {
	f.lastUser = user
	return f.notifications
}

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine, *fakeCurator) {
	t.Helper()
	eng := engine.New(kv.NewMemoryStore())
	curator := &fakeCurator{}
	cfg := &config.ServerConfig{
		Port:            8370,
		Host:            "127.0.0.1",
		Timeout:         10 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}
	router := NewRouter(cfg, NewHandler(eng, curator), websocket.NewHub())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, eng, curator
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, APIResponse) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("close body: %v", err)
		}
	}()

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, envelope
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q, want success", envelope.Status)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRecordLikeAndReadBack(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	body := `{"id":"ev-1","title":"Abendlauf im Park","category":"Sport","location":"Parkweg","time":"18:00"}`
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/interactions/likes", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	if got := len(eng.Likes()); got != 1 {
		t.Errorf("likes recorded = %d, want 1", got)
	}
	if eng.Tables().LikedCategories["Sport"] != 1 {
		t.Error("recompute did not run after liking via the API")
	}

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/interactions/likes", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Metadata.Count != 1 {
		t.Errorf("count = %d, want 1", envelope.Metadata.Count)
	}
}

func TestRecordInteractionValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{nope"},
		{"missing id", `{"title":"Ohne ID"}`},
		{"missing title", `{"id":"ev-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/interactions/dislikes", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if envelope.Error == nil {
				t.Error("expected error payload")
			}
		})
	}
}

func TestBucketsRoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/preferences/buckets", `{"buckets":["sport","kultur"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/preferences/buckets", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T, want object", envelope.Data)
	}
	buckets, ok := data["buckets"].([]any)
	if !ok || len(buckets) != 2 {
		t.Errorf("buckets = %v, want [sport kultur]", data["buckets"])
	}
}

func TestScoreEndpoint(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	if _, err := eng.RecordLike(engine.Event{ID: "ev-1", Category: "Sport", Location: "Parkweg", Title: "Abendlauf im Park", Time: "18:00"}); err != nil {
		t.Fatal(err)
	}

	body := `{"events":[
		{"id":"match","title":"Abendlauf","category":"Sport","location":"Parkweg"},
		{"id":"neutral","title":"Unbekanntes Event"}
	]}`
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatal(err)
	}
	var scored []ScoredEvent
	if err := json.Unmarshal(raw, &scored); err != nil {
		t.Fatalf("decode scored events: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("scored = %d events, want 2", len(scored))
	}
	if scored[0].Score != 61 {
		t.Errorf("matching event score = %d, want 61", scored[0].Score)
	}
	if scored[1].Score != 50 {
		t.Errorf("neutral event score = %d, want 50", scored[1].Score)
	}
}

func TestScoreValidationRejectsEmptyList(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", `{"events":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	srv, _, curator := newTestServer(t)
	curator.notifications = []notify.Notification{
		{ID: "new-event-ev-1", Type: notify.TypeNewEvent, Text: "Neues Event: Kiezfest"},
	}

	url := srv.URL + "/api/v1/notifications?username=mira&city=Liebefeld&interests=sport,kultur&liked_ids=ev-1,ev-2"
	resp, envelope := doJSON(t, http.MethodGet, url, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Metadata.Count != 1 {
		t.Errorf("count = %d, want 1", envelope.Metadata.Count)
	}

	if curator.lastUser.Username != "mira" || curator.lastUser.City != "Liebefeld" {
		t.Errorf("user context = %+v, want mira/Liebefeld", curator.lastUser)
	}
	if len(curator.lastUser.Interests) != 2 || curator.lastUser.Interests[0] != "sport" {
		t.Errorf("interests = %v, want [sport kultur]", curator.lastUser.Interests)
	}
	if len(curator.lastUser.LikedEventIDs) != 2 {
		t.Errorf("liked ids = %v, want 2 entries", curator.lastUser.LikedEventIDs)
	}
}

func TestNotificationsRequiresUsername(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/notifications", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPreferencesEndpoint(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	if _, err := eng.RecordLike(engine.Event{ID: "ev-1", Category: "Sport", Title: "Lauftreff", Time: "18:00"}); err != nil {
		t.Fatal(err)
	}

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/preferences/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatal(err)
	}
	var prefs PreferencesResponse
	if err := json.Unmarshal(raw, &prefs); err != nil {
		t.Fatal(err)
	}
	if prefs.Tables == nil || prefs.Tables.LikedCategories["Sport"] != 1 {
		t.Errorf("preferences tables = %+v, want LikedCategories[Sport]=1", prefs.Tables)
	}
}

func TestTimeSlotsEndpoint(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	if _, err := eng.RecordLike(engine.Event{ID: "a", Title: "Abendessen", Time: "19:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RecordLike(engine.Event{ID: "b", Title: "Morgenlauf", Time: "07:00"}); err != nil {
		t.Fatal(err)
	}

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/preferences/time-slots", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Metadata.Count != 2 {
		t.Errorf("count = %d, want 2", envelope.Metadata.Count)
	}
}
