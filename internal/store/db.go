package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

// DB is the Gateway over a MySQL or SQLite database.
type DB struct {
	*learning.DBTopicRepository
	*learning.DBItemRepository
	*learning.DBReviewSessionRepository
	*gamification.DBStatsRepository
	*gamification.DBAchievementRepository
	*gamification.DBDailyStatsRepository

	db *sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{
		DBTopicRepository:         learning.NewDBTopicRepository(db),
		DBItemRepository:          learning.NewDBItemRepository(db),
		DBReviewSessionRepository: learning.NewDBReviewSessionRepository(db),
		DBStatsRepository:         gamification.NewDBStatsRepository(db),
		DBAchievementRepository:   gamification.NewDBAchievementRepository(db),
		DBDailyStatsRepository:    gamification.NewDBDailyStatsRepository(db),
		db:                        db,
	}
}

func (d *DB) Ping(ctx context.Context) error {
	return database.Wrap("db.PingContext", d.db.PingContext(ctx))
}

var bucketExpression = fmt.Sprintf(
	"CASE WHEN s.timing_bonus >= %g THEN '%s' WHEN s.timing_bonus >= %g THEN '%s' ELSE '%s' END",
	timing.PerfectThreshold, timing.BucketPerfect,
	timing.OnTimeThreshold, timing.BucketOnTime,
	timing.BucketLate,
)

func buildTimingQuery(query TimingQuery) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT s.item_id AS item_id, DATE(s.reviewed_at) AS day, ")
	b.WriteString(bucketExpression)
	b.WriteString(" AS bucket, COUNT(*) AS sessions FROM review_sessions s")
	if query.TopicID != "" {
		b.WriteString(" JOIN learning_items i ON i.id = s.item_id AND i.user_id = s.user_id")
	}

	conditions := []string{"s.user_id = ?"}
	args := []any{query.UserID}
	if query.TopicID != "" {
		conditions = append(conditions, "i.topic_id = ?")
		args = append(args, query.TopicID)
	}
	if query.ItemID != "" {
		conditions = append(conditions, "s.item_id = ?")
		args = append(args, query.ItemID)
	}
	if query.From != nil {
		conditions = append(conditions, "s.reviewed_at >= ?")
		args = append(args, *query.From)
	}
	if query.To != nil {
		conditions = append(conditions, "s.reviewed_at < ?")
		args = append(args, *query.To)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conditions, " AND "))
	b.WriteString(" GROUP BY s.item_id, DATE(s.reviewed_at), bucket ORDER BY day, item_id, bucket")
	return b.String(), args
}

// AggregateTiming counts sessions per item, UTC day and timing bucket in a single query.
func (d *DB) AggregateTiming(ctx context.Context, query TimingQuery) ([]TimingCount, error) {
	sqlQuery, args := buildTimingQuery(query)
	var counts []TimingCount
	if err := d.db.SelectContext(ctx, &counts, sqlQuery, args...); err != nil {
		return nil, database.Wrap("db.SelectContext(timing aggregation)", err)
	}
	for i := range counts {
		// MySQL returns DATE columns as timestamps
		if len(counts[i].Day) > len(gamification.DateLayout) {
			counts[i].Day = counts[i].Day[:len(gamification.DateLayout)]
		}
	}
	return counts, nil
}
