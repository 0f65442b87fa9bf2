// Package store defines the persistence gateway of the learning engine and its implementations.
package store

import (
	"context"
	"time"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

// PersistenceError is returned by every Gateway when the backing store or transport fails.
type PersistenceError = database.PersistenceError

// IsPersistenceError reports whether err comes from a failed gateway call.
func IsPersistenceError(err error) bool {
	return database.IsPersistenceError(err)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Gateway is row-level CRUD over every table of the engine, keyed by user id and entity id.
type Gateway interface {
	learning.TopicRepository
	learning.ItemRepository
	learning.ReviewSessionRepository
	gamification.StatsRepository
	gamification.AchievementRepository
	gamification.DailyStatsRepository
	Pinger
}

// TimingQuery selects the review sessions of a timing aggregation.
type TimingQuery struct {
	UserID  string
	TopicID string
	ItemID  string
	From    *time.Time
	To      *time.Time
}

// TimingCount is the number of sessions of one item, day and bucket.
type TimingCount struct {
	ItemID   string        `db:"item_id"`
	Day      string        `db:"day"`
	Bucket   timing.Bucket `db:"bucket"`
	Sessions int           `db:"sessions"`
}

// TimingAggregator is implemented by gateways that can classify sessions in the database.
type TimingAggregator interface {
	AggregateTiming(ctx context.Context, query TimingQuery) ([]TimingCount, error)
}

var (
	_ Gateway          = (*DB)(nil)
	_ Gateway          = (*Memory)(nil)
	_ TimingAggregator = (*DB)(nil)
)
