package store

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/timing"
	"github.com/at-ishikawa/studytrack/schemas"
)

func newSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "studytrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db, schemas.Migrations, "migrations")
	require.NoError(t, err)
	return NewDB(db)
}

func TestBuildTimingQuery(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    TimingQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:  "user only",
			query: TimingQuery{UserID: "user-1"},
			wantSQL: "SELECT s.item_id AS item_id, DATE(s.reviewed_at) AS day, " +
				"CASE WHEN s.timing_bonus >= 2 THEN 'perfect' WHEN s.timing_bonus >= 1.2 THEN 'on_time' ELSE 'late' END AS bucket, " +
				"COUNT(*) AS sessions FROM review_sessions s WHERE s.user_id = ? " +
				"GROUP BY s.item_id, DATE(s.reviewed_at), bucket ORDER BY day, item_id, bucket",
			wantArgs: []any{"user-1"},
		},
		{
			name:  "topic and range",
			query: TimingQuery{UserID: "user-1", TopicID: "topic-1", From: &from},
			wantSQL: "SELECT s.item_id AS item_id, DATE(s.reviewed_at) AS day, " +
				"CASE WHEN s.timing_bonus >= 2 THEN 'perfect' WHEN s.timing_bonus >= 1.2 THEN 'on_time' ELSE 'late' END AS bucket, " +
				"COUNT(*) AS sessions FROM review_sessions s JOIN learning_items i ON i.id = s.item_id AND i.user_id = s.user_id " +
				"WHERE s.user_id = ? AND i.topic_id = ? AND s.reviewed_at >= ? " +
				"GROUP BY s.item_id, DATE(s.reviewed_at), bucket ORDER BY day, item_id, bucket",
			wantArgs: []any{"user-1", "topic-1", from},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := buildTimingQuery(tt.query)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func TestDB_AggregateTiming_MySQLDates(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewDB(sqlx.NewDb(sqlDB, "mysql"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.item_id AS item_id")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "day", "bucket", "sessions"}).
			AddRow("item-1", "2025-01-01T00:00:00Z", "perfect", 2).
			AddRow("item-1", "2025-01-02", "late", 1))

	got, err := db.AggregateTiming(context.Background(), TimingQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, []TimingCount{
		{ItemID: "item-1", Day: "2025-01-01", Bucket: timing.BucketPerfect, Sessions: 2},
		{ItemID: "item-1", Day: "2025-01-02", Bucket: timing.BucketLate, Sessions: 1},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Ping(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewDB(sqlx.NewDb(sqlDB, "mysql"))

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))
	err = db.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
}

func TestDB_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 3)
	maintenance := 30.0

	require.NoError(t, db.Ping(ctx))

	topic := &learning.Topic{ID: "topic-1", UserID: "user-1", Name: "Biology", LearningMode: learning.ModeSteady, Priority: 6, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.SaveTopic(ctx, topic))
	gotTopic, err := db.FindTopic(ctx, "user-1", "topic-1")
	require.NoError(t, err)
	require.NotNil(t, gotTopic)
	assert.Equal(t, "Biology", gotTopic.Name)
	assert.Equal(t, learning.ModeSteady, gotTopic.LearningMode)
	assert.WithinDuration(t, now, gotTopic.CreatedAt, 0)

	item := &learning.Item{
		ID: "item-1", UserID: "user-1", TopicID: "topic-1", Content: "mitosis", Priority: 6,
		LearningMode: learning.ModeSteady, ReviewCount: 1, LastReviewedAt: &now, NextReviewAt: &next,
		EaseFactor: 2.5, IntervalDays: 3, MasteryStatus: learning.StatusActive,
		MaintenanceIntervalDays: &maintenance, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, db.SaveItem(ctx, item))
	item.ReviewCount = 2
	require.NoError(t, db.SaveItem(ctx, item))

	gotItem, err := db.FindItem(ctx, "user-1", "item-1")
	require.NoError(t, err)
	require.NotNil(t, gotItem)
	assert.Equal(t, 2, gotItem.ReviewCount)
	assert.True(t, next.Equal(*gotItem.NextReviewAt))
	assert.Equal(t, 30.0, *gotItem.MaintenanceIntervalDays)

	dueBefore := now.AddDate(0, 0, 1)
	due, err := db.FindItems(ctx, learning.ItemFilter{UserID: "user-1", DueBefore: &dueBefore})
	require.NoError(t, err)
	assert.Empty(t, due)
	dueBefore = now.AddDate(0, 0, 3)
	due, err = db.FindItems(ctx, learning.ItemFilter{UserID: "user-1", DueBefore: &dueBefore, Statuses: []learning.MasteryStatus{learning.StatusActive}})
	require.NoError(t, err)
	assert.Len(t, due, 1)

	missing, err := db.FindItem(ctx, "user-2", "item-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for i, bonus := range []float64{2.0, 1.5, 1.0, 2.0} {
		require.NoError(t, db.CreateReviewSession(ctx, &learning.ReviewSession{
			ID: fmt.Sprintf("session-%d", i), UserID: "user-1", ItemID: "item-1",
			Difficulty: learning.DifficultyGood, ReviewedAt: now.Add(time.Duration(i) * 24 * time.Hour),
			IntervalDays: 1, TimingBonus: bonus,
		}))
	}
	from := now.Add(24 * time.Hour)
	sessions, err := db.FindReviewSessions(ctx, learning.SessionFilter{UserID: "user-1", ItemID: "item-1", From: &from})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "session-1", sessions[0].ID)

	counts, err := db.AggregateTiming(ctx, TimingQuery{UserID: "user-1", TopicID: "topic-1"})
	require.NoError(t, err)
	assert.Equal(t, []TimingCount{
		{ItemID: "item-1", Day: "2025-06-01", Bucket: timing.BucketPerfect, Sessions: 1},
		{ItemID: "item-1", Day: "2025-06-02", Bucket: timing.BucketOnTime, Sessions: 1},
		{ItemID: "item-1", Day: "2025-06-03", Bucket: timing.BucketLate, Sessions: 1},
		{ItemID: "item-1", Day: "2025-06-04", Bucket: timing.BucketPerfect, Sessions: 1},
	}, counts)

	stats := &gamification.Stats{UserID: "user-1", TotalPoints: 120, CurrentLevel: 1, CurrentStreak: 2, LongestStreak: 4, LastReviewDate: "2025-06-01", UpdatedAt: now}
	require.NoError(t, db.SaveStats(ctx, stats))
	gotStats, err := db.FindStats(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, gotStats)
	assert.Equal(t, 120, gotStats.TotalPoints)
	assert.Equal(t, 4, gotStats.LongestStreak)
	assert.Equal(t, "2025-06-01", gotStats.LastReviewDate)

	achievement := &gamification.Achievement{UserID: "user-1", AchievementID: "first_review", UnlockedAt: now, PointsAwarded: 10}
	require.NoError(t, db.CreateAchievement(ctx, achievement))
	require.NoError(t, db.CreateAchievement(ctx, &gamification.Achievement{UserID: "user-1", AchievementID: "first_review", UnlockedAt: next, PointsAwarded: 99}))
	achievements, err := db.FindAchievements(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, 10, achievements[0].PointsAwarded)
	assert.WithinDuration(t, now, achievements[0].UnlockedAt, 0)

	for _, date := range []string{"2025-06-01", "2025-06-02", "2025-06-05"} {
		require.NoError(t, db.SaveDailyStats(ctx, &gamification.DailyStats{UserID: "user-1", Date: date, PointsEarned: 10, ReviewsCompleted: 1}))
	}
	days, err := db.FindDailyStatsRange(ctx, "user-1", "2025-06-02", "")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-06-02", days[0].Date)

	require.NoError(t, db.DeleteItem(ctx, "user-1", "item-1"))
	require.NoError(t, db.DeleteTopic(ctx, "user-1", "topic-1"))
	topics, err := db.FindTopics(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, topics)
}
