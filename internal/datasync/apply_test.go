package datasync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

func TestApplyTo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gw := store.NewMemory()

	topic := learning.Topic{ID: "topic-1", UserID: "user-1", Name: "Biology", LearningMode: learning.ModeCram, Priority: 5, CreatedAt: now, UpdatedAt: now}
	item := learning.Item{ID: "item-1", UserID: "user-1", TopicID: "topic-1", Content: "mitosis", Priority: 5,
		LearningMode: learning.ModeCram, EaseFactor: 2.5, MasteryStatus: learning.StatusActive, CreatedAt: now, UpdatedAt: now}
	ops := []struct {
		entity   Entity
		entityID string
		kind     Kind
		value    any
	}{
		{EntityTopic, topic.ID, KindUpsert, topic},
		{EntityItem, item.ID, KindUpsert, item},
		{EntityReviewSession, "session-1", KindCreate, learning.ReviewSession{ID: "session-1", UserID: "user-1", ItemID: "item-1", Difficulty: learning.DifficultyGood, ReviewedAt: now, TimingBonus: 1}},
		{EntityStats, "user-1", KindUpsert, gamification.Stats{UserID: "user-1", TotalPoints: 12, CurrentLevel: 1}},
		{EntityAchievement, "first_review", KindCreate, gamification.Achievement{UserID: "user-1", AchievementID: "first_review", UnlockedAt: now, PointsAwarded: 10}},
		{EntityDailyStats, "2025-06-01", KindUpsert, gamification.DailyStats{UserID: "user-1", Date: "2025-06-01", PointsEarned: 22, ReviewsCompleted: 1}},
	}
	for _, tt := range ops {
		op, err := NewOperation("user-1", tt.entity, tt.entityID, tt.kind, tt.value, now)
		require.NoError(t, err)
		require.NoError(t, ApplyTo(ctx, gw, op), tt.entity)
	}

	gotItem, err := gw.FindItem(ctx, "user-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, item, *gotItem)
	sessions, err := gw.FindReviewSessions(ctx, learning.SessionFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	stats, err := gw.FindStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalPoints)
	daily, err := gw.FindDailyStats(ctx, "user-1", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 22, daily.PointsEarned)

	deleteItem, err := NewOperation("user-1", EntityItem, "item-1", KindDelete, nil, now)
	require.NoError(t, err)
	require.NoError(t, ApplyTo(ctx, gw, deleteItem))
	gotItem, err = gw.FindItem(ctx, "user-1", "item-1")
	require.NoError(t, err)
	assert.Nil(t, gotItem)

	t.Run("invalid operations", func(t *testing.T) {
		deleteSession, err := NewOperation("user-1", EntityReviewSession, "session-1", KindDelete, nil, now)
		require.NoError(t, err)
		assert.Error(t, ApplyTo(ctx, gw, deleteSession))

		unknown, err := NewOperation("user-1", "notes", "note-1", KindUpsert, map[string]string{}, now)
		require.NoError(t, err)
		assert.EqualError(t, ApplyTo(ctx, gw, unknown), `unknown entity "notes" of operation `+unknown.ID)

		broken := PendingOperation{ID: "op", UserID: "user-1", Entity: EntityItem, EntityID: "item-1", Kind: KindUpsert, Payload: []byte("{")}
		assert.Error(t, ApplyTo(ctx, gw, broken))
	})
}
