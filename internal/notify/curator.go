// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/liebefeld/tribe-engine/internal/engine"
	"github.com/liebefeld/tribe-engine/internal/logging"
	"github.com/liebefeld/tribe-engine/internal/metrics"
)

// Per-source bounds. Keeping these small prevents notification flooding:
// a single pass can never produce more than maxNewEvents+maxPeers+
// maxRecommendations+maxReminders notifications.
const (
	maxNewEvents       = 2
	maxPeers           = 2
	maxRecommendations = 1
	maxReminders       = 3

	// minRelevanceScore gates new-event candidates: only events scoring at
	// or above the neutral baseline are worth interrupting the user for.
	minRelevanceScore = 50
)

// RelevanceScorer is the slice of the scoring engine the curator needs.
type RelevanceScorer interface {
	Score(ev engine.Event) int
	MatchesPreferredCategories(ev engine.Event) bool
}

// Config controls the curation lookback windows and breaker behaviour.
type Config struct {
	// NewEventLookback bounds how far back "new" events reach.
	NewEventLookback time.Duration

	// ActivityWindow bounds the peer-activity feed.
	ActivityWindow time.Duration

	// MemberLookback bounds the new-member feed.
	MemberLookback time.Duration

	// SourceTimeout caps each individual signal fetch.
	SourceTimeout time.Duration

	// BreakerTimeout is how long an open breaker waits before probing again.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the production curation windows.
func DefaultConfig() Config {
	return Config{
		NewEventLookback: 24 * time.Hour,
		ActivityWindow:   2 * time.Hour,
		MemberLookback:   24 * time.Hour,
		SourceTimeout:    5 * time.Second,
		BreakerTimeout:   30 * time.Second,
	}
}

// Curator assembles a bounded, deduplicated notification list from four
// independent signal sources. Each pass is stateless given its inputs; a
// failing source contributes nothing and never aborts the pass.
type Curator struct {
	provider SignalProvider
	scorer   RelevanceScorer
	cfg      Config

	newEventsCB *gobreaker.CircuitBreaker[[]EventSignal]
	activityCB  *gobreaker.CircuitBreaker[[]ActivitySignal]
	membersCB   *gobreaker.CircuitBreaker[[]MemberSignal]
	trendingCB  *gobreaker.CircuitBreaker[[]EventSignal]
	remindersCB *gobreaker.CircuitBreaker[[]EventSignal]

	now func() time.Time
}

// NewCurator wires a curator over a signal provider and a relevance scorer.
func NewCurator(provider SignalProvider, scorer RelevanceScorer, cfg Config) *Curator {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 5 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	return &Curator{
		provider:    provider,
		scorer:      scorer,
		cfg:         cfg,
		newEventsCB: newSourceBreaker[[]EventSignal]("new-events", cfg.BreakerTimeout),
		activityCB:  newSourceBreaker[[]ActivitySignal]("peer-activity", cfg.BreakerTimeout),
		membersCB:   newSourceBreaker[[]MemberSignal]("new-members", cfg.BreakerTimeout),
		trendingCB:  newSourceBreaker[[]EventSignal]("trending", cfg.BreakerTimeout),
		remindersCB: newSourceBreaker[[]EventSignal]("reminders", cfg.BreakerTimeout),
		now:         time.Now,
	}
}

// newSourceBreaker builds a per-source circuit breaker. Sources are cheap
// database queries, so the breaker trips on a short run of consecutive
// failures rather than a failure-rate window.
func newSourceBreaker[T any](name string, timeout time.Duration) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("signal source breaker state change")
		},
	})
}

// sourceResult carries one source's fetch outcome into the join step. The
// three variants (failure, empty, success) are explicit so the join never
// has to guess whether an empty slice means "nothing new" or "fetch broke".
type sourceResult[T any] struct {
	items []T
	err   error
}

func (r sourceResult[T]) outcome() string {
	switch {
	case r.err != nil:
		return "failure"
	case len(r.items) == 0:
		return "empty"
	default:
		return "success"
	}
}

// Curate runs one curation pass for the given user. The returned list is
// unordered; presentation ordering and seen-state belong to the UI layer.
// Curate never fails as a whole: each source error is logged, counted, and
// replaced by an empty contribution.
func (c *Curator) Curate(ctx context.Context, user UserContext) []Notification {
	start := c.now()
	since := start.Add(-c.cfg.NewEventLookback)
	activityCutoff := start.Add(-c.cfg.ActivityWindow)
	memberSince := start.Add(-c.cfg.MemberLookback)

	var (
		wg        sync.WaitGroup
		newEvents sourceResult[EventSignal]
		activity  sourceResult[ActivitySignal]
		members   sourceResult[MemberSignal]
		trending  sourceResult[EventSignal]
		reminders sourceResult[EventSignal]
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		newEvents.items, newEvents.err = fetch(ctx, c.cfg.SourceTimeout, c.newEventsCB, func(ctx context.Context) ([]EventSignal, error) {
			return c.provider.NewEvents(ctx, since, user.City)
		})
	}()
	go func() {
		defer wg.Done()
		// Peers and new members share one notification budget, so they
		// share a fan-out slot as well.
		activity.items, activity.err = fetch(ctx, c.cfg.SourceTimeout, c.activityCB, func(ctx context.Context) ([]ActivitySignal, error) {
			return c.provider.RecentActivity(ctx, activityCutoff, user.Username)
		})
		members.items, members.err = fetch(ctx, c.cfg.SourceTimeout, c.membersCB, func(ctx context.Context) ([]MemberSignal, error) {
			return c.provider.NewMembers(ctx, memberSince)
		})
	}()
	go func() {
		defer wg.Done()
		trending.items, trending.err = fetch(ctx, c.cfg.SourceTimeout, c.trendingCB, func(ctx context.Context) ([]EventSignal, error) {
			return c.provider.TrendingEvents(ctx, 10)
		})
	}()
	go func() {
		defer wg.Done()
		ids := uniqueIDs(user.LikedEventIDs, user.AttendingEventIDs)
		if len(ids) == 0 {
			return
		}
		today := startOfDay(start)
		reminders.items, reminders.err = fetch(ctx, c.cfg.SourceTimeout, c.remindersCB, func(ctx context.Context) ([]EventSignal, error) {
			return c.provider.EventsByID(ctx, ids, today, today.AddDate(0, 0, 1))
		})
	}()
	wg.Wait()

	recordSource("new-events", newEvents)
	recordSource("peer-activity", activity)
	recordSource("new-members", members)
	recordSource("trending", trending)
	recordSource("reminders", reminders)

	seen := make(map[string]struct{})
	var out []Notification
	add := func(n Notification) {
		if _, dup := seen[n.ID]; dup {
			return
		}
		seen[n.ID] = struct{}{}
		n.CreatedAt = start
		metrics.NotificationsCurated.WithLabelValues(string(n.Type)).Inc()
		out = append(out, n)
	}

	c.curateNewEvents(newEvents.items, add)
	c.curatePeers(activity.items, members.items, add)
	c.curateTrending(trending.items, user.Interests, add)
	c.curateReminders(reminders.items, start, add)

	metrics.CurationDuration.Observe(time.Since(start).Seconds())
	logging.Debug().
		Str("username", user.Username).
		Int("notifications", len(out)).
		Msg("curation pass complete")
	return out
}

// fetch runs one source query behind its breaker with a per-source timeout.
func fetch[T any](ctx context.Context, timeout time.Duration, cb *gobreaker.CircuitBreaker[T], query func(context.Context) (T, error)) (T, error) {
	return cb.Execute(func() (T, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return query(ctx)
	})
}

func recordSource[T any](name string, r sourceResult[T]) {
	outcome := r.outcome()
	metrics.CurationSourceOutcomes.WithLabelValues(name, outcome).Inc()
	if r.err != nil {
		logging.Warn().Err(r.err).Str("source", name).Msg("signal source failed, contributing nothing this pass")
	}
}

// curateNewEvents keeps the highest-scoring recent events at or above the
// neutral baseline.
func (c *Curator) curateNewEvents(events []EventSignal, add func(Notification)) {
	type scored struct {
		ev    EventSignal
		score int
	}
	candidates := make([]scored, 0, len(events))
	for _, ev := range events {
		score := c.scorer.Score(engine.Event{
			ID:       ev.ID,
			Category: ev.Category,
			Location: ev.Location,
			Title:    ev.Title,
			Time:     ev.Time,
		})
		if score >= minRelevanceScore {
			candidates = append(candidates, scored{ev: ev, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	for i, cand := range candidates {
		if i >= maxNewEvents {
			break
		}
		add(Notification{
			ID:            "new-event-" + cand.ev.ID,
			Type:          TypeNewEvent,
			Text:          fmt.Sprintf("Neues Event: %s", cand.ev.Title),
			ActionLabel:   "Ansehen",
			ActionType:    "open_event",
			ActionPayload: cand.ev.ID,
		})
	}
}

// curatePeers merges peer activity and new members under one shared budget,
// activity first since it is the more timely signal.
func (c *Curator) curatePeers(activity []ActivitySignal, members []MemberSignal, add func(Notification)) {
	budget := maxPeers
	for _, act := range activity {
		if budget == 0 {
			return
		}
		n := Notification{
			AvatarURL:     act.AvatarURL,
			ActionLabel:   "Ansehen",
			ActionType:    "open_event",
			ActionPayload: act.EventID,
		}
		if act.Action == "like_event" {
			n.ID = "like-event-" + act.Username
			n.Type = TypeLikeEvent
			n.Text = fmt.Sprintf("%s gefällt \"%s\"", act.Username, act.EventTitle)
		} else {
			n.ID = "community-activity-" + act.Username
			n.Type = TypeCommunityActivity
			n.Text = fmt.Sprintf("%s nimmt an \"%s\" teil", act.Username, act.EventTitle)
		}
		add(n)
		budget--
	}
	for _, m := range members {
		if budget == 0 {
			return
		}
		add(Notification{
			ID:            "new-member-" + m.Username,
			Type:          TypeNewMember,
			Text:          fmt.Sprintf("%s ist der Community beigetreten", m.Username),
			AvatarURL:     m.AvatarURL,
			ActionLabel:   "Begrüßen",
			ActionType:    "open_profile",
			ActionPayload: m.Username,
		})
		budget--
	}
}

// curateTrending recommends the top trending event, filtered by the user's
// interests when any are set. Trending order comes from the provider.
func (c *Curator) curateTrending(events []EventSignal, interests []string, add func(Notification)) {
	count := 0
	for _, ev := range events {
		if count >= maxRecommendations {
			return
		}
		if !matchesInterests(ev.Category, interests) {
			continue
		}
		add(Notification{
			ID:            "daily-recommendation-" + ev.ID,
			Type:          TypeDailyRecommendation,
			Text:          fmt.Sprintf("Heute angesagt: %s", ev.Title),
			ActionLabel:   "Ansehen",
			ActionType:    "open_event",
			ActionPayload: ev.ID,
		})
		count++
	}
}

// matchesInterests reports whether the category contains any interest as a
// case-insensitive substring. No interests means everything matches.
func matchesInterests(category string, interests []string) bool {
	if len(interests) == 0 {
		return true
	}
	lower := strings.ToLower(category)
	for _, interest := range interests {
		if interest == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(interest)) {
			return true
		}
	}
	return false
}

// curateReminders renders today/tomorrow reminders for events the user has
// liked or is attending. The provider already windowed the events to
// [today, tomorrow]; classification here picks the message template.
func (c *Curator) curateReminders(events []EventSignal, now time.Time, add func(Notification)) {
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	count := 0
	for _, ev := range events {
		if count >= maxReminders {
			return
		}
		day := startOfDay(ev.Date)
		var text string
		switch {
		case day.Equal(today):
			text = fmt.Sprintf("Erinnerung: \"%s\" findet heute statt!", ev.Title)
		case day.Equal(tomorrow):
			text = fmt.Sprintf("Erinnerung: \"%s\" findet morgen statt", ev.Title)
		default:
			continue
		}
		add(Notification{
			ID:            "event-reminder-" + ev.ID,
			Type:          TypeEventReminder,
			Text:          text,
			ActionLabel:   "Details",
			ActionType:    "open_event",
			ActionPayload: ev.ID,
		})
		count++
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// uniqueIDs merges id lists preserving first-seen order.
func uniqueIDs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
