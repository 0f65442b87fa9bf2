package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/mastery"
	"github.com/at-ishikawa/studytrack/internal/review"
	"github.com/at-ishikawa/studytrack/internal/scheduling"
	"github.com/at-ishikawa/studytrack/internal/store"
	"github.com/at-ishikawa/studytrack/internal/testutil"
)

type fixture struct {
	service   *review.Service
	decisions *[]mastery.DecisionNeeded
}

func newService(t *testing.T, gw store.Gateway) fixture {
	t.Helper()
	scheduler := scheduling.NewScheduler(nil)
	bus := events.NewBus[mastery.DecisionNeeded]()
	var decisions []mastery.DecisionNeeded
	bus.Subscribe(func(e mastery.DecisionNeeded) { decisions = append(decisions, e) })
	machine := mastery.NewMachine(mastery.DefaultThreshold, scheduler, bus)
	engine := gamification.NewEngine(gw, scheduler, nil, gamification.DefaultConfig())
	return fixture{
		service:   review.NewService(gw, scheduler, machine, engine),
		decisions: &decisions,
	}
}

func TestService_Review_FirstReview(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	gateways := map[string]func(t *testing.T) store.Gateway{
		"memory": func(*testing.T) store.Gateway { return store.NewMemory() },
		"sqlite": func(t *testing.T) store.Gateway { return testutil.NewSQLiteGateway(t) },
	}
	for name, newGateway := range gateways {
		t.Run(name, func(t *testing.T) {
			gw := newGateway(t)
			f := newService(t, gw)
			topic := testutil.CreateTopic(t, gw, "topic-1", testutil.WithTopicMode(learning.ModeSteady))
			testutil.CreateItem(t, gw, topic, "item-1")

			got, err := f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now.Add(300 * time.Millisecond)})
			require.NoError(t, err)

			assert.Equal(t, 1, got.Item.ReviewCount)
			assert.Equal(t, 2.5, got.Item.EaseFactor)
			assert.Equal(t, 3.0, got.Item.IntervalDays)
			require.NotNil(t, got.Item.NextReviewAt)
			assert.True(t, now.AddDate(0, 0, 3).Equal(*got.Item.NextReviewAt))
			assert.Equal(t, learning.StatusActive, got.Item.MasteryStatus)
			assert.False(t, got.Transition.DecisionNeeded)

			assert.Equal(t, 12, got.Points.TotalPoints)
			assert.Equal(t, 22, got.Result.PointsEarned, "first_review is unlocked")
			assert.Equal(t, now, got.Session.ReviewedAt, "timestamps are truncated to seconds")
			assert.Equal(t, 1.0, got.Session.TimingBonus)

			stored, err := gw.FindItem(ctx, "user-1", "item-1")
			require.NoError(t, err)
			assert.Equal(t, 1, stored.ReviewCount)
			sessions, err := gw.FindReviewSessions(ctx, learning.SessionFilter{UserID: "user-1", ItemID: "item-1"})
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.Equal(t, got.Session.ID, sessions[0].ID)
			stats, err := gw.FindStats(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, 22, stats.TotalPoints)
		})
	}
}

func TestService_Review_ReachesMastery(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gw := store.NewMemory()
	f := newService(t, gw)
	topic := testutil.CreateTopic(t, gw, "topic-1")
	testutil.CreateItem(t, gw, topic, "item-1", testutil.WithReviewCount(4), testutil.WithSchedule(now, 14))

	got, err := f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Item.ReviewCount)
	assert.Equal(t, learning.StatusMastered, got.Item.MasteryStatus)
	assert.True(t, got.Transition.DecisionNeeded)
	assert.True(t, got.Points.IsPerfectTiming)
	require.Len(t, *f.decisions, 1)
	assert.Equal(t, "item-1", (*f.decisions)[0].ItemID)

	_, err = f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now.AddDate(0, 0, 30)})
	require.NoError(t, err)
	assert.Len(t, *f.decisions, 1, "the decision is asked once")
}

func TestService_Review_Maintenance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gw := store.NewMemory()
	f := newService(t, gw)
	topic := testutil.CreateTopic(t, gw, "topic-1", testutil.WithTopicMode(learning.ModeCram))
	item := testutil.CreateItem(t, gw, topic, "item-1", testutil.WithStatus(learning.StatusMaintenance), testutil.WithReviewCount(6), testutil.WithSchedule(now, 30))
	thirty := 30.0
	item.MaintenanceIntervalDays = &thirty
	require.NoError(t, gw.SaveItem(ctx, &item))

	got, err := f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now})
	require.NoError(t, err)
	assert.Equal(t, learning.StatusMaintenance, got.Item.MasteryStatus)
	assert.Equal(t, 60.0, got.Item.IntervalDays)
	require.NotNil(t, got.Item.MaintenanceIntervalDays)
	assert.Equal(t, 60.0, *got.Item.MaintenanceIntervalDays)
	assert.True(t, now.AddDate(0, 0, 60).Equal(*got.Item.NextReviewAt))

	got, err = f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now.AddDate(0, 0, 60)})
	require.NoError(t, err)
	assert.Equal(t, 90.0, *got.Item.MaintenanceIntervalDays, "capped for cram")
}

func TestService_Review_Errors(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       review.Request
		setup     func(t *testing.T, gw *store.Memory)
		wantField string
		wantErr   func(t *testing.T, err error)
	}{
		{
			name:      "unknown difficulty",
			req:       review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: "perfect"},
			wantField: "difficulty",
		},
		{
			name:      "missing user",
			req:       review.Request{ItemID: "item-1", Difficulty: learning.DifficultyGood},
			wantField: "user_id",
		},
		{
			name:      "missing item",
			req:       review.Request{UserID: "user-1", ItemID: "item-2", Difficulty: learning.DifficultyGood},
			wantField: "item_id",
		},
		{
			name: "archived item",
			req:  review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood},
			setup: func(t *testing.T, gw *store.Memory) {
				item, err := gw.FindItem(ctx, "user-1", "item-1")
				require.NoError(t, err)
				item.MasteryStatus = learning.StatusArchived
				require.NoError(t, gw.SaveItem(ctx, item))
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, review.ErrArchived)
			},
		},
		{
			name: "store failure",
			req:  review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood},
			setup: func(_ *testing.T, gw *store.Memory) {
				gw.Fail(errors.New("database is locked"))
			},
			wantErr: func(t *testing.T, err error) {
				assert.True(t, store.IsPersistenceError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := store.NewMemory()
			f := newService(t, gw)
			topic := testutil.CreateTopic(t, gw, "topic-1")
			testutil.CreateItem(t, gw, topic, "item-1")
			if tt.setup != nil {
				tt.setup(t, gw)
			}

			tt.req.ReviewedAt = now
			got, err := f.service.Review(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, got)
			if tt.wantField != "" {
				var validationErr *learning.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, tt.wantField, validationErr.Field)
			}
			if tt.wantErr != nil {
				tt.wantErr(t, err)
			}

			gw.Fail(nil)
			sessions, err := gw.FindReviewSessions(ctx, learning.SessionFilter{UserID: "user-1"})
			require.NoError(t, err)
			assert.Empty(t, sessions, "a rejected review writes nothing")
			stats, err := gw.FindStats(ctx, "user-1")
			require.NoError(t, err)
			assert.Nil(t, stats)
		})
	}
}

// statsFailingGateway fails every SaveStats call.
type statsFailingGateway struct {
	*store.Memory
}

func (g statsFailingGateway) SaveStats(context.Context, *gamification.Stats) error {
	return database.Wrap("http.Post(SaveStats)", errors.New("connection refused"))
}

func TestService_Review_PointsFailureKeepsTheReview(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	memory := store.NewMemory()
	f := newService(t, statsFailingGateway{Memory: memory})
	topic := testutil.CreateTopic(t, memory, "topic-1")
	testutil.CreateItem(t, memory, topic, "item-1")

	got, err := f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, store.IsPersistenceError(err))
	assert.Contains(t, err.Error(), "RecordReview()")

	item, err := memory.FindItem(ctx, "user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.ReviewCount, "the item is rescheduled before the points are recorded")
	sessions, err := memory.FindReviewSessions(ctx, learning.SessionFilter{UserID: "user-1", ItemID: "item-1"})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	stats, err := memory.FindStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestService_Decide(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("mastered counts for gamification", func(t *testing.T) {
		gw := store.NewMemory()
		f := newService(t, gw)
		topic := testutil.CreateTopic(t, gw, "topic-1")
		testutil.CreateItem(t, gw, topic, "item-1", testutil.WithStatus(learning.StatusMastered), testutil.WithReviewCount(5))

		got, err := f.service.Decide(ctx, "user-1", "item-1", mastery.DecisionMastered, nil, now)
		require.NoError(t, err)
		assert.Equal(t, learning.StatusMastered, got.Item.MasteryStatus)
		require.NotNil(t, got.Result)
		require.Len(t, got.Result.NewAchievements, 1)
		assert.Equal(t, "mastered_1", got.Result.NewAchievements[0].AchievementID)
		assert.Equal(t, 1, got.Result.Daily.ItemsMastered)
	})

	t.Run("mastered is counted once per item", func(t *testing.T) {
		gw := store.NewMemory()
		f := newService(t, gw)
		topic := testutil.CreateTopic(t, gw, "topic-1")
		testutil.CreateItem(t, gw, topic, "item-1", testutil.WithStatus(learning.StatusMastered), testutil.WithReviewCount(5))

		_, err := f.service.Decide(ctx, "user-1", "item-1", mastery.DecisionMastered, nil, now)
		require.NoError(t, err)
		_, err = f.service.Decide(ctx, "user-1", "item-1", mastery.DecisionMastered, nil, now.Add(time.Minute))
		var validationErr *learning.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "decision", validationErr.Field)

		daily, err := gw.FindDailyStats(ctx, "user-1", "2025-06-01")
		require.NoError(t, err)
		require.NotNil(t, daily)
		assert.Equal(t, 1, daily.ItemsMastered)
		achievements, err := gw.FindAchievements(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, achievements, 1)
		assert.Equal(t, "mastered_1", achievements[0].AchievementID)

		stored, err := gw.FindItem(ctx, "user-1", "item-1")
		require.NoError(t, err)
		require.NotNil(t, stored.MasteredAt)
		assert.True(t, now.Equal(*stored.MasteredAt))
	})

	t.Run("maintenance schedules the item", func(t *testing.T) {
		gw := store.NewMemory()
		f := newService(t, gw)
		topic := testutil.CreateTopic(t, gw, "topic-1", testutil.WithTopicMode(learning.ModeCram))
		testutil.CreateItem(t, gw, topic, "item-1", testutil.WithStatus(learning.StatusMastered), testutil.WithReviewCount(5), testutil.WithSchedule(now, 14))

		days := 120.0
		got, err := f.service.Decide(ctx, "user-1", "item-1", mastery.DecisionMaintenance, &days, now)
		require.NoError(t, err)
		assert.Nil(t, got.Result)
		assert.Equal(t, learning.StatusMaintenance, got.Item.MasteryStatus)
		assert.Equal(t, 90.0, *got.Item.MaintenanceIntervalDays)

		stored, err := gw.FindItem(ctx, "user-1", "item-1")
		require.NoError(t, err)
		assert.Equal(t, learning.StatusMaintenance, stored.MasteryStatus)
		assert.True(t, now.AddDate(0, 0, 90).Equal(*stored.NextReviewAt))
	})

	t.Run("active items have nothing to decide", func(t *testing.T) {
		gw := store.NewMemory()
		f := newService(t, gw)
		topic := testutil.CreateTopic(t, gw, "topic-1")
		testutil.CreateItem(t, gw, topic, "item-1")

		_, err := f.service.Decide(ctx, "user-1", "item-1", mastery.DecisionArchived, nil, now)
		var validationErr *learning.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "decision", validationErr.Field)
	})
}

func TestService_TopicsAndItems(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gw := store.NewMemory()
	f := newService(t, gw)

	topic, err := f.service.CreateTopic(ctx, "user-1", "Biology", "cells", learning.ModeCram, 7, now)
	require.NoError(t, err)
	assert.Equal(t, "cells", topic.Description)

	_, err = f.service.CreateTopic(ctx, "user-1", "", "", learning.ModeCram, 7, now)
	assert.Error(t, err)

	inherited, err := f.service.AddItem(ctx, "user-1", topic.ID, "mitosis", now)
	require.NoError(t, err)
	assert.Equal(t, learning.ModeCram, inherited.LearningMode)
	assert.Equal(t, 7, inherited.Priority)

	overridden, err := f.service.AddItem(ctx, "user-1", topic.ID, "meiosis", now, learning.WithPriority(2))
	require.NoError(t, err)
	assert.Equal(t, 2, overridden.Priority)

	_, err = f.service.AddItem(ctx, "user-1", "missing", "osmosis", now)
	var validationErr *learning.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "topic_id", validationErr.Field)

	_, err = f.service.Review(ctx, review.Request{UserID: "user-1", ItemID: overridden.ID, Difficulty: learning.DifficultyGood, ReviewedAt: now})
	require.NoError(t, err)

	due, err := f.service.DueItems(ctx, "user-1", "", now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, inherited.ID, due[0].ID)

	due, err = f.service.DueItems(ctx, "user-1", topic.ID, now.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, due, 2)
}
